// Package storage provides the small key-value store the app persists its
// JSON blobs to (quiz history, profile, preferences), with interchangeable
// file, memory, Redis, SQLite and Postgres backends.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persisted key-value store. Values are opaque byte slices;
// callers own the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
