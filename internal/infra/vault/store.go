// internal/infra/vault/store.go
package vault

import (
	"context"
	"time"

	"kavita_notification_bot/internal/domain/notified"

	"github.com/sirupsen/logrus"
)

const (
	healthWaitTimeout  = 10 * time.Second
	healthPollInterval = 500 * time.Millisecond
)

// NotifiedStore persists the notified set in the vault service, keyed by a
// fixed logical source name. Both operations first wait (bounded) for the
// vault to report healthy; when it never does, Load degrades to an empty set
// and Save reports false, so a vault outage costs at worst a duplicate
// announcement, never the pipeline itself.
type NotifiedStore struct {
	client       *Client
	source       string
	logger       *logrus.Logger
	waitTimeout  time.Duration
	pollInterval time.Duration
}

func NewNotifiedStore(client *Client, source string, logger *logrus.Logger) *NotifiedStore {
	return &NotifiedStore{
		client:       client,
		source:       source,
		logger:       logger,
		waitTimeout:  healthWaitTimeout,
		pollInterval: healthPollInterval,
	}
}

// Load fetches the durable notified-id list. Fail-open: any degradation
// yields an empty set rather than an error.
func (s *NotifiedStore) Load(ctx context.Context) *notified.Set {
	if !s.waitHealthy(ctx) {
		s.logger.Warnf("Vault did not become healthy within %s; starting with an empty notified set for source %q", s.waitTimeout, s.source)
		return notified.NewSet()
	}
	ids, err := s.client.GetNotifiedList(ctx, s.source)
	if err != nil {
		s.logger.Warnf("Failed to load notified list for source %q: %v. Starting with an empty set.", s.source, err)
		return notified.NewSet()
	}
	s.logger.Infof("Loaded %d notified ids for source %q from vault", len(ids), s.source)
	return notified.NewSet(ids...)
}

// Save writes the entire current set. Returns false on any failure; the
// caller keeps the in-memory set and the next successful save catches up.
func (s *NotifiedStore) Save(ctx context.Context, set *notified.Set) bool {
	if !s.waitHealthy(ctx) {
		s.logger.Warnf("Vault did not become healthy within %s; notified set for source %q not persisted this cycle", s.waitTimeout, s.source)
		return false
	}
	if err := s.client.PutNotifiedList(ctx, s.source, set.IDs()); err != nil {
		s.logger.Warnf("Failed to persist notified list for source %q: %v", s.source, err)
		return false
	}
	s.logger.Debugf("Persisted %d notified ids for source %q to vault", set.Len(), s.source)
	return true
}

// waitHealthy polls GET /health until the vault reports online or the
// bounded wait expires.
func (s *NotifiedStore) waitHealthy(ctx context.Context) bool {
	deadline := time.Now().Add(s.waitTimeout)
	for {
		status, err := s.client.Health(ctx)
		if err == nil && status.Online() {
			return true
		}
		if err != nil {
			s.logger.Debugf("Vault health check failed: %v", err)
		}
		if time.Now().Add(s.pollInterval).After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.pollInterval):
		}
	}
}
