package postgres

import (
	"context"
	"time"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// StateRepository stores state records in the app_storage table.
type StateRepository struct {
	db  Querier
	now func() time.Time
}

// NewStateRepository creates a StateRepository over conn, or over any
// Querier such as a pgx.Tx.
func NewStateRepository(db Querier) *StateRepository {
	return &StateRepository{db: db, now: time.Now}
}

const (
	queryGetItem = `SELECT value FROM app_storage WHERE key = $1`

	queryUpsertItem = `
INSERT INTO app_storage (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	queryRemoveItem = `DELETE FROM app_storage WHERE key = $1`
)

// GetItem returns the stored record or an error matching shared.ErrNotFound.
func (r *StateRepository) GetItem(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := r.db.QueryRow(ctx, queryGetItem, key).Scan(&value); err != nil {
		if IsNoRows(err) {
			return nil, shared.WrapError("storage", "GetItem", shared.ErrNotFound, "no record for "+key, err)
		}
		return nil, shared.WrapError("storage", "GetItem", shared.ErrServiceUnavailable, "postgres read failed", err)
	}
	return value, nil
}

// SetItem inserts or overwrites the record.
func (r *StateRepository) SetItem(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.Exec(ctx, queryUpsertItem, key, value, r.now().UTC()); err != nil {
		return shared.WrapError("storage", "SetItem", shared.ErrServiceUnavailable, "postgres write failed", err)
	}
	return nil
}

// RemoveItem deletes the record. Removing a missing key is not an error.
func (r *StateRepository) RemoveItem(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, queryRemoveItem, key); err != nil {
		return shared.WrapError("storage", "RemoveItem", shared.ErrServiceUnavailable, "postgres delete failed", err)
	}
	return nil
}
