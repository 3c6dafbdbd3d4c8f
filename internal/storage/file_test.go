package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Get(ctx, "quizHistory"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "quizHistory", []byte(`[{"score":1}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := store.Get(ctx, "quizHistory")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != `[{"score":1}]` {
		t.Fatalf("unexpected value %s", value)
	}

	// Reopen and verify the write survived.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	value, err = reopened.Get(ctx, "quizHistory")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(value) != `[{"score":1}]` {
		t.Fatalf("unexpected value after reopen %s", value)
	}
}

func TestFileStoreTreatsCorruptFileAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Get(context.Background(), "quizHistory"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty store, got %v", err)
	}
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Set(context.Background(), "fontSize", []byte("{oops")); err == nil {
		t.Fatalf("expected invalid JSON to be rejected")
	}
}
