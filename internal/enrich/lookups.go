package enrich

import (
	"context"
	"errors"
	"fmt"

	"musictaste/internal/catalog"
	"musictaste/internal/logging"
	"musictaste/internal/lookupcache"
)

// Track returns the cached track or fetches and caches it.
func (e *Enricher) Track(ctx context.Context, id string) (catalog.Track, error) {
	return cached(ctx, e, Key(KindTrack, id), TrackShape, func(ctx context.Context) (catalog.Track, error) {
		return e.catalog.Track(ctx, id)
	})
}

// Album returns the cached album or fetches and caches it.
func (e *Enricher) Album(ctx context.Context, id string) (catalog.Album, error) {
	return cached(ctx, e, Key(KindAlbum, id), AlbumShape, func(ctx context.Context) (catalog.Album, error) {
		return e.catalog.Album(ctx, id)
	})
}

// Artist returns the cached artist or fetches and caches it.
func (e *Enricher) Artist(ctx context.Context, id string) (catalog.Artist, error) {
	return cached(ctx, e, Key(KindArtist, id), ArtistShape, func(ctx context.Context) (catalog.Artist, error) {
		return e.catalog.Artist(ctx, id)
	})
}

// ArtistDebut returns the earliest release year across the artist's albums.
// Each album is resolved through the cache; the result is cached too.
// ErrNoDebut is returned, and nothing cached, when no album has a readable
// release date.
func (e *Enricher) ArtistDebut(ctx context.Context, artistID string) (int, error) {
	return cached(ctx, e, Key(KindArtistDebut, artistID), DebutYearShape, func(ctx context.Context) (int, error) {
		albumIDs, err := e.catalog.ArtistAlbumIDs(ctx, artistID)
		if err != nil {
			return 0, err
		}
		debut, found := 0, false
		for _, albumID := range albumIDs {
			album, err := e.Album(ctx, albumID)
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			if err != nil {
				return 0, err
			}
			year, err := album.ReleaseYear()
			if err != nil {
				continue
			}
			if !found || year < debut {
				debut, found = year, true
			}
		}
		if !found {
			return 0, fmt.Errorf("artist %s: %w", artistID, ErrNoDebut)
		}
		return debut, nil
	})
}

// cached is the fetch-on-miss-then-store path shared by every kind.
func cached[T any](ctx context.Context, e *Enricher, key string, shape lookupcache.Shape[T], fetch func(context.Context) (T, error)) (T, error) {
	value, ok, err := lookupcache.Fetch(ctx, e.cache, key, shape)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("cache lookup %s: %w", key, err)
	}
	if ok {
		e.hits++
		return value, nil
	}

	e.logger.Debug("querying catalog", logging.CacheKey(key))
	value, err = fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := e.cache.Store(ctx, key, value); err != nil {
		var zero T
		return zero, fmt.Errorf("cache store %s: %w", key, err)
	}
	e.misses++
	return value, nil
}
