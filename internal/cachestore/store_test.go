package cachestore_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"musictaste/internal/cachestore"
)

func openStore(t *testing.T) (*cachestore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.db")
	store, err := cachestore.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	store, _ := openStore(t)

	entry, ok, err := store.Get(context.Background(), "track/missing")
	if err != nil {
		t.Fatalf("Get returned error for missing key: %v", err)
	}
	if ok {
		t.Fatalf("expected miss, got %#v", entry)
	}
}

func TestPutThenGet(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, cachestore.Entry{Key: "track/1", Value: `{"id":"1"}`}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	entry, ok, err := store.Get(ctx, "track/1")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if entry.Value != `{"id":"1"}` {
		t.Fatalf("unexpected value %q", entry.Value)
	}
	if entry.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be set")
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	for _, value := range []string{"1", "2", "3"} {
		if err := store.Put(ctx, cachestore.Entry{Key: "artist-debut/x", Value: value}); err != nil {
			t.Fatalf("Put %s failed: %v", value, err)
		}
	}
	entry, ok, err := store.Get(ctx, "artist-debut/x")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if entry.Value != "3" {
		t.Fatalf("expected last write to win, got %q", entry.Value)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row after upserts, got %d", count)
	}
}

func TestPutRejectsEmptyKey(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Put(context.Background(), cachestore.Entry{Value: "x"}); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestPutIsDurableAcrossReopen(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Put(ctx, cachestore.Entry{Key: "album/a", Value: "{}", UpdatedAt: stamp}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := cachestore.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entry, ok, err := reopened.Get(ctx, "album/a")
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	want := cachestore.Entry{Key: "album/a", Value: "{}", UpdatedAt: stamp}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationsAfterCloseFail(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, cachestore.ErrClosed) {
		t.Fatalf("Get after close: expected ErrClosed, got %v", err)
	}
	if err := store.Put(ctx, cachestore.Entry{Key: "k", Value: "v"}); !errors.Is(err, cachestore.ErrClosed) {
		t.Fatalf("Put after close: expected ErrClosed, got %v", err)
	}
	if _, err := store.Count(ctx); !errors.Is(err, cachestore.ErrClosed) {
		t.Fatalf("Count after close: expected ErrClosed, got %v", err)
	}
	if _, err := store.Keys(ctx, ""); !errors.Is(err, cachestore.ErrClosed) {
		t.Fatalf("Keys after close: expected ErrClosed, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestKeysAndKinds(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	for _, key := range []string{"track/2", "track/1", "album/9", "artist-debut/z", "track_%/odd", "plain"} {
		if err := store.Put(ctx, cachestore.Entry{Key: key, Value: "0"}); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}

	keys, err := store.Keys(ctx, "track/")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if diff := cmp.Diff([]string{"track/1", "track/2"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	kinds, err := store.Kinds(ctx)
	if err != nil {
		t.Fatalf("Kinds failed: %v", err)
	}
	want := []cachestore.KindCount{
		{Kind: "album", Count: 1},
		{Kind: "artist-debut", Count: 1},
		{Kind: "plain", Count: 1},
		{Kind: "track", Count: 2},
		{Kind: "track_%", Count: 1},
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("update version failed: %v", err)
	}
	_ = db.Close()

	if _, err := cachestore.Open(context.Background(), path); !errors.Is(err, cachestore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := cachestore.Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
