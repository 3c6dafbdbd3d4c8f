package storage

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	if _, err := store.Get(ctx, "userData"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "userData", []byte(`{"name":"Alice"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("physquiz:userData") {
		t.Fatalf("expected prefixed redis key to be set")
	}

	value, err := store.Get(ctx, "userData")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != `{"name":"Alice"}` {
		t.Fatalf("unexpected value %s", value)
	}
}
