package enrich

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"musictaste/internal/catalog"
	"musictaste/internal/logging"
	"musictaste/internal/lookupcache"
	"musictaste/internal/stats"
)

// ErrNoDebut reports an artist without any datable album.
var ErrNoDebut = errors.New("artist has no datable album")

// Catalog is the remote lookup surface the Enricher needs.
type Catalog interface {
	Track(ctx context.Context, id string) (catalog.Track, error)
	Album(ctx context.Context, id string) (catalog.Album, error)
	Artist(ctx context.Context, id string) (catalog.Artist, error)
	ArtistAlbumIDs(ctx context.Context, id string) ([]string, error)
}

var _ Catalog = (*catalog.Client)(nil)

// Result summarizes a batch of track IDs.
type Result struct {
	Processed   int
	Skipped     int
	CacheHits   int
	CacheMisses int
}

// Enricher resolves tracks through the cache and feeds the aggregator.
type Enricher struct {
	catalog Catalog
	cache   *lookupcache.Cache
	stats   *stats.Aggregator
	logger  *slog.Logger

	hits   int
	misses int
}

// New builds an Enricher. A nil logger discards diagnostics.
func New(cat Catalog, cache *lookupcache.Cache, agg *stats.Aggregator, logger *slog.Logger) *Enricher {
	return &Enricher{
		catalog: cat,
		cache:   cache,
		stats:   agg,
		logger:  logging.NewComponentLogger(logger, "enrich"),
	}
}

// Stats returns the aggregator being fed.
func (e *Enricher) Stats() *stats.Aggregator {
	return e.stats
}

// NormalizeTrackID extracts a bare track ID from an ID, a spotify:track: URI,
// or an open.spotify.com URL. Blank lines and lines starting with # yield
// ok == false.
func NormalizeTrackID(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	line, _, _ = strings.Cut(line, "?")
	if idx := strings.LastIndexAny(line, "/:"); idx >= 0 {
		line = line[idx+1:]
	}
	line = strings.TrimSpace(line)
	return line, line != ""
}

// AddTrackID resolves one track and counts it. It reports false when the
// input is blank or the catalog does not know the track.
func (e *Enricher) AddTrackID(ctx context.Context, raw string) (bool, error) {
	id, ok := NormalizeTrackID(raw)
	if !ok {
		return false, nil
	}

	track, err := e.Track(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		logging.WarnWithContext(e.logger, "track skipped", "track_not_found",
			logging.TrackID(id),
			logging.String(logging.FieldErrorHint, "check the track id or URL in the input file"),
			logging.String(logging.FieldImpact, "track excluded from statistics"),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	e.stats.AddTrack(track)

	if err := e.addAlbum(ctx, id, track.Album.ID); err != nil {
		return false, err
	}
	for _, ref := range track.Artists {
		if err := e.addArtist(ctx, id, ref.ID); err != nil {
			return false, err
		}
	}
	e.logger.Debug("track added", logging.TrackID(id), logging.String("name", track.Name))
	return true, nil
}

func (e *Enricher) addAlbum(ctx context.Context, trackID, albumID string) error {
	if albumID == "" {
		return nil
	}
	album, err := e.Album(ctx, albumID)
	if errors.Is(err, catalog.ErrNotFound) {
		logging.WarnWithContext(e.logger, "album skipped", "album_not_found",
			logging.TrackID(trackID),
			logging.String("album_id", albumID),
			logging.String(logging.FieldImpact, "release year not counted for this track"),
		)
		return nil
	}
	if err != nil {
		return err
	}
	if err := e.stats.AddAlbum(album); err != nil {
		logging.WarnWithContext(e.logger, "album release date unreadable", "album_undated",
			logging.TrackID(trackID),
			logging.String("album_id", albumID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "release year not counted for this track"),
		)
	}
	return nil
}

func (e *Enricher) addArtist(ctx context.Context, trackID, artistID string) error {
	if artistID == "" {
		return nil
	}
	artist, err := e.Artist(ctx, artistID)
	if errors.Is(err, catalog.ErrNotFound) {
		logging.WarnWithContext(e.logger, "artist skipped", "artist_not_found",
			logging.TrackID(trackID),
			logging.String("artist_id", artistID),
			logging.String(logging.FieldImpact, "artist and genres not counted for this track"),
		)
		return nil
	}
	if err != nil {
		return err
	}
	e.stats.AddArtist(artist)

	debut, err := e.ArtistDebut(ctx, artistID)
	if errors.Is(err, ErrNoDebut) {
		logging.WarnWithContext(e.logger, "artist debut unknown", "artist_no_debut",
			logging.String("artist_id", artistID),
			logging.String("artist", artist.Name),
			logging.String(logging.FieldImpact, "debut year not counted for this artist"),
		)
		return nil
	}
	if err != nil {
		return err
	}
	e.stats.AddArtistDebutYear(debut)
	return nil
}

// AddTrackIDs processes one track ID or URL per line.
func (e *Enricher) AddTrackIDs(ctx context.Context, r io.Reader) (Result, error) {
	var result Result
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return e.finish(result), err
		}
		if _, ok := NormalizeTrackID(scanner.Text()); !ok {
			continue
		}
		added, err := e.AddTrackID(ctx, scanner.Text())
		if err != nil {
			return e.finish(result), fmt.Errorf("line %d: %w", line, err)
		}
		if added {
			result.Processed++
		} else {
			result.Skipped++
		}
		if (result.Processed+result.Skipped)%100 == 0 {
			e.logger.Info("enrichment progress",
				logging.Int("processed", result.Processed),
				logging.Int("skipped", result.Skipped),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return e.finish(result), fmt.Errorf("read track ids: %w", err)
	}
	return e.finish(result), nil
}

// AddTrackIDsFromFile opens path and processes it with AddTrackIDs.
func (e *Enricher) AddTrackIDsFromFile(ctx context.Context, path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open track list: %w", err)
	}
	defer file.Close()

	e.logger.Info("adding tracks from file", logging.String("path", path))
	return e.AddTrackIDs(ctx, file)
}

func (e *Enricher) finish(result Result) Result {
	result.CacheHits = e.hits
	result.CacheMisses = e.misses
	return result
}
