package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"portfolioapi/internal/config"
	"portfolioapi/internal/database/migration"
)

// The slot table holds one row per key and every request touches at most that row,
// so a small pool is enough unless the operator asks for more.
const (
	slotMaxOpenConns = 4
	slotMaxIdleConns = 2
)

// slotPool fills in the pool limits the portfolio slot runs with.
// Idle connections never exceed open ones.
func slotPool(c config.DatabaseConfig) config.DatabaseConfig {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = slotMaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = slotMaxIdleConns
	}
	c.MaxIdleConns = min(c.MaxIdleConns, c.MaxOpenConns)
	return c
}

// OpenSlotDB connects to PostgreSQL with the slot pool limits and makes sure the
// portfolio_slots schema exists. The connection is closed when migration fails.
func OpenSlotDB(ctx context.Context, c config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := NewPostgres(ctx, slotPool(c))
	if err != nil {
		return nil, err
	}
	if err := migration.EnsureMigrated(ctx, db, logger, c.Host); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
