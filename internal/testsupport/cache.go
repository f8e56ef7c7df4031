package testsupport

import (
	"errors"
	"testing"

	"musictaste/internal/config"
	"musictaste/internal/lookupcache"
)

// MustOpenCache opens the lookup cache described by cfg and closes it on
// cleanup unless the test already did.
func MustOpenCache(t testing.TB, cfg *config.Config) *lookupcache.Cache {
	t.Helper()

	cache, err := lookupcache.Open(t.Context(), lookupcache.Config{
		Dir:              cfg.Paths.CacheDir,
		Filename:         cfg.Cache.Filename,
		CompressionLevel: cfg.Cache.CompressionLevel,
	})
	if err != nil {
		t.Fatalf("lookupcache.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := cache.Close(); err != nil && !errors.Is(err, lookupcache.ErrStoreClosed) {
			t.Errorf("close cache: %v", err)
		}
	})
	return cache
}
