// Package bootstrap builds the configured storage slot and its backing connections.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"portfolioapi/internal/config"
	"portfolioapi/internal/database"
	"portfolioapi/internal/repository/postgres"
	"portfolioapi/internal/storage"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// OpenSlot connects to the backend selected by cfg.Storage.Backend and returns the portfolio slot on top of it.
// The returned closer releases the backend connection.
func OpenSlot(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (storage.Slot, io.Closer, error) {
	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.InfoContext(ctx, "storage_configured",
		slog.String("component", "storage"),
		slog.String("backend", cfg.Storage.Backend),
		slog.String("key", cfg.Storage.Key),
	)
	return storage.NewJSONSlot(store, cfg.Storage.Key, logger), closer, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (storage.BlobStore, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nopCloser, nil

	case config.BackendFile:
		fs, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("file storage: %w", err)
		}
		return fs, nopCloser, nil

	case config.BackendRedis:
		rs, err := storage.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}
		return rs, rs, nil

	case config.BackendMinIO:
		ms, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, nil, fmt.Errorf("object storage: %w", err)
		}
		return ms, nopCloser, nil

	case config.BackendPostgres:
		db, err := database.OpenSlotDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres storage: %w", err)
		}
		return postgres.NewSlotPostgres(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
