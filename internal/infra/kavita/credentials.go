// internal/infra/kavita/credentials.go
package kavita

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kavita_notification_bot/internal/domain/catalog"
)

// TokenFetcher issues a bearer credential for a logical source name.
// *vault.Client satisfies this.
type TokenFetcher interface {
	FetchToken(ctx context.Context, source string) (string, error)
}

// CredentialProvider caches the catalog bearer token for the process
// lifetime. The token carries no expiry the client can see; expiry is
// discovered reactively when a catalog call comes back 401, at which point
// the caller invalidates and re-fetches.
type CredentialProvider struct {
	fetcher TokenFetcher
	source  string

	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

func NewCredentialProvider(fetcher TokenFetcher, source string) *CredentialProvider {
	return &CredentialProvider{fetcher: fetcher, source: source}
}

// Token returns the cached credential, fetching a fresh one only when the
// cache is empty. Authentication failure is not retried here; the caller
// decides (the catalog client retries exactly once after Invalidate).
func (p *CredentialProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		return p.token, nil
	}
	token, err := p.fetcher.FetchToken(ctx, p.source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", catalog.ErrAuth, err)
	}
	p.token = token
	p.issuedAt = time.Now()
	return token, nil
}

// Invalidate clears the cached credential so the next Token call
// re-authenticates.
func (p *CredentialProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.issuedAt = time.Time{}
}
