package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"portfolioapi/internal/model"
)

// JSONSlot stores the portfolio as one JSON document under a fixed key of a BlobStore.
type JSONSlot struct {
	store  BlobStore
	key    string
	logger *slog.Logger
}

var _ Slot = (*JSONSlot)(nil)

// NewJSONSlot creates a slot bound to key.
func NewJSONSlot(store BlobStore, key string, logger *slog.Logger) *JSONSlot {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONSlot{store: store, key: key, logger: logger}
}

// Key returns the slot name.
func (s *JSONSlot) Key() string { return s.key }

// Load reads and decodes the slot. Missing or unparsable content yields an empty record;
// entries that break the record invariants are dropped with a warning.
func (s *JSONSlot) Load(ctx context.Context) (*model.PortfolioRecord, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.NewPortfolioRecord(), nil
		}
		return nil, fmt.Errorf("load %q: %w: %w", s.key, ErrStorageUnavailable, err)
	}

	rec, dropped, err := decodeRecord(data)
	if err != nil {
		s.logger.WarnContext(ctx, "slot_parse_failed",
			slog.String("component", "storage"),
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return model.NewPortfolioRecord(), nil
	}
	if len(dropped) > 0 {
		s.logger.WarnContext(ctx, "slot_entries_dropped",
			slog.String("component", "storage"),
			slog.String("key", s.key),
			slog.Int("count", len(dropped)),
			slog.Any("reasons", dropped),
		)
	}
	return rec, nil
}

// Save encodes rec and writes it with a single Put.
func (s *JSONSlot) Save(ctx context.Context, rec *model.PortfolioRecord) error {
	if rec == nil {
		rec = model.NewPortfolioRecord()
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("save %q: encode: %w", s.key, err)
	}
	if err := s.store.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save %q: %w: %w", s.key, ErrStorageUnavailable, err)
	}
	return nil
}

// Clear deletes the slot.
func (s *JSONSlot) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear %q: %w: %w", s.key, ErrStorageUnavailable, err)
	}
	return nil
}

// Ping delegates to the store when it supports it.
func (s *JSONSlot) Ping(ctx context.Context) error {
	p, ok := s.store.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

func encodeRecord(rec *model.PortfolioRecord) ([]byte, error) {
	out := *rec
	if out.Projects == nil {
		out.Projects = []model.FileRecord{}
	}
	return json.Marshal(&out)
}

// decodeRecord parses a stored blob. Entries that break the record invariants are
// dropped and reported; the rest of the record survives.
func decodeRecord(data []byte) (*model.PortfolioRecord, []string, error) {
	var rec model.PortfolioRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	if rec.Projects == nil {
		rec.Projects = []model.FileRecord{}
	}
	var dropped []string
	if rec.Validate() != nil {
		dropped = rec.Repair()
	}
	return &rec, dropped, nil
}
