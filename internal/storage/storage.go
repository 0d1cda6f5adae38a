// Package storage persists the portfolio aggregate under a single named slot.
// A Slot owns serialization; a BlobStore only moves bytes for a key.
package storage

import (
	"context"
	"errors"

	"portfolioapi/internal/model"
)

var (
	// ErrNotFound is returned by a BlobStore when the key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrStorageUnavailable wraps every failure of the backing store to read or write the slot.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrParseFailure is logged when a stored slot cannot be decoded; Load downgrades it to an empty record.
	ErrParseFailure = errors.New("stored portfolio could not be parsed")
)

// Slot is the durable home of the portfolio record.
type Slot interface {
	// Load returns the persisted record, or an empty one when nothing (or nothing parsable) is stored.
	Load(ctx context.Context) (*model.PortfolioRecord, error)
	// Save replaces the persisted record as a whole. On error the previous value is left untouched.
	Save(ctx context.Context, rec *model.PortfolioRecord) error
	// Clear discards the persisted record. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// BlobStore is a key/value byte store. Put must replace the whole value or fail without a partial write.
type BlobStore interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores data at key.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key returns nil.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report reachability without touching data.
type Pinger interface {
	Ping(ctx context.Context) error
}
