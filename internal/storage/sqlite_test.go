package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "physquiz.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	if _, err := store.Get(ctx, "fontSize"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "fontSize", []byte("18")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Upsert overwrites.
	if err := store.Set(ctx, "fontSize", []byte("20")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, err := store.Get(ctx, "fontSize")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "20" {
		t.Fatalf("unexpected value %s", value)
	}
}
