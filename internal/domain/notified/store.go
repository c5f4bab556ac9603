// internal/domain/notified/store.go
package notified

import "context"

// Store persists the notified set between process runs. The payload is always
// the entire set, which makes every write idempotent and safe to repeat.
//
// Implementations degrade instead of failing the caller: Load returns an
// empty set when the backing store is unreachable (duplicate notifications
// are preferable to never notifying again), and Save reports false so the
// caller can keep operating on the in-memory set and retry on a later cycle.
type Store interface {
	Load(ctx context.Context) *Set
	Save(ctx context.Context, set *Set) bool
}
