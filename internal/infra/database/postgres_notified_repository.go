// internal/infra/database/postgres_notified_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"kavita_notification_bot/internal/domain/notified"

	"github.com/lib/pq" // For pq.Array and driver registration
	"github.com/sirupsen/logrus"
)

// PostgresNotifiedRepository is the alternate durable backend for the
// notified set (NOTIFIED_BACKEND=postgres). The whole id list is stored as a
// single row per source, so a save is one idempotent upsert — the same
// whole-payload contract the vault store has.
type PostgresNotifiedRepository struct {
	db     *sql.DB
	source string
	logger *logrus.Logger
}

func NewPostgresNotifiedRepository(db *sql.DB, source string, logger *logrus.Logger) *PostgresNotifiedRepository {
	return &PostgresNotifiedRepository{db: db, source: source, logger: logger}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (r *PostgresNotifiedRepository) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS notified_items (
               source TEXT PRIMARY KEY,
               item_ids TEXT[] NOT NULL DEFAULT '{}',
               updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
             )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error ensuring notified_items schema: %w", err)
	}
	return nil
}

// Load reads the notified-id list for the configured source. Fail-open: a
// missing row or a query error both yield an empty set.
func (r *PostgresNotifiedRepository) Load(ctx context.Context) *notified.Set {
	query := `SELECT item_ids FROM notified_items WHERE source = $1`
	var ids []string
	err := r.db.QueryRowContext(ctx, query, r.source).Scan(pq.Array(&ids))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Infof("No notified list stored yet for source %q; starting empty", r.source)
		} else {
			r.logger.Warnf("Failed to load notified list for source %q: %v. Starting with an empty set.", r.source, err)
		}
		return notified.NewSet()
	}
	r.logger.Infof("Loaded %d notified ids for source %q from postgres", len(ids), r.source)
	return notified.NewSet(ids...)
}

// Save upserts the entire current set. Returns false on failure so the caller
// can retry on a later cycle.
func (r *PostgresNotifiedRepository) Save(ctx context.Context, set *notified.Set) bool {
	query := `INSERT INTO notified_items (source, item_ids, updated_at)
               VALUES ($1, $2, NOW())
               ON CONFLICT (source)
               DO UPDATE SET item_ids = EXCLUDED.item_ids, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, r.source, pq.Array(set.IDs())); err != nil {
		r.logger.Warnf("Failed to persist notified list for source %q: %v", r.source, err)
		return false
	}
	r.logger.Debugf("Persisted %d notified ids for source %q to postgres", set.Len(), r.source)
	return true
}
