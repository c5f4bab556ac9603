// internal/domain/catalog/client.go
package catalog

import (
	"context"
	"errors"
)

// Errors surfaced by catalog client implementations. Callers check them with
// errors.Is; the detection loop treats both as "skip this collection".
var (
	// ErrAuth means a credential could not be obtained or re-obtained.
	ErrAuth = errors.New("catalog authentication failed")
	// ErrUpstream covers every non-auth failure talking to the catalog:
	// timeouts, server errors, malformed bodies.
	ErrUpstream = errors.New("catalog upstream error")
)

// Client defines the catalog queries the notification pipeline needs.
// This decouples the detection logic from the Kavita HTTP wrapper.
type Client interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	ListItems(ctx context.Context, collectionID string) ([]Item, error)
}
