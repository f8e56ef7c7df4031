package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is a single key/serialized-value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// KindCount reports how many entries share a key kind (the text before the
// first "/").
type KindCount struct {
	Kind  string
	Count int
}

// Get returns the entry stored under key. A missing key is reported through
// the boolean, never as an error.
func (s *Store) Get(ctx context.Context, key string) (Entry, bool, error) {
	if err := s.ensureOpen(); err != nil {
		return Entry{}, false, err
	}
	ctx = ensureContext(ctx)

	var (
		value   string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, updated_at FROM entries WHERE key = ?", key,
	).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get entry %q: %w", key, err)
	}
	return Entry{Key: key, Value: value, UpdatedAt: time.UnixMilli(updated).UTC()}, true, nil
}

// Put inserts the entry or overwrites the value already stored under its key.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if entry.Key == "" {
		return errors.New("entry key cannot be empty")
	}
	updated := entry.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		entry.Key, entry.Value, updated.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put entry %q: %w", entry.Key, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Keys returns the stored keys beginning with prefix, sorted ascending. An
// empty prefix lists every key.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT key FROM entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		// Keys may contain LIKE wildcards, so match the prefix here.
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// Kinds groups entries by key kind, ordered by kind name. Keys without a
// "/" are reported under their full key.
func (s *Store) Kinds(ctx context.Context) ([]KindCount, error) {
	keys, err := s.Keys(ctx, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, key := range keys {
		kind, _, _ := strings.Cut(key, "/")
		counts[kind]++
	}
	out := make([]KindCount, 0, len(counts))
	for kind, count := range counts {
		out = append(out, KindCount{Kind: kind, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}
