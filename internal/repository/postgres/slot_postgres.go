package postgres

import (
	"context"
	"database/sql"
	"errors"

	"portfolioapi/internal/storage"
)

// SlotPostgres is a PostgreSQL implementation of storage.BlobStore.
// Each key is one row of portfolio_slots; Put is a single upsert statement.
type SlotPostgres struct {
	db *sql.DB
}

// NewSlotPostgres creates a new SlotPostgres repository.
func NewSlotPostgres(db *sql.DB) *SlotPostgres {
	return &SlotPostgres{db: db}
}

var _ storage.BlobStore = (*SlotPostgres)(nil)

// Get fetches the payload stored under key.
func (r *SlotPostgres) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
		SELECT payload
		FROM portfolio_slots
		WHERE key = $1
	`
	var payload string
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

// Put inserts or replaces the payload under key.
func (r *SlotPostgres) Put(ctx context.Context, key string, data []byte) error {
	const q = `
		INSERT INTO portfolio_slots (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q, key, string(data))
	return err
}

// Delete removes the row for key. It does not return an error if the row does not exist.
func (r *SlotPostgres) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM portfolio_slots WHERE key = $1`
	_, err := r.db.ExecContext(ctx, q, key)
	return err
}

// Ping checks database connectivity.
func (r *SlotPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
