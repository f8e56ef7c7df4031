package export

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"musictaste/internal/logging"
	"musictaste/internal/stats"
)

// Table file names.
const (
	BasicStatsFile         = "basic-stats.csv"
	ArtistsFile            = "artists.csv"
	ArtistDebutDecadesFile = "artist-debut-decades.csv"
	ArtistDebutYearsFile   = "artist-debut-years.csv"
	DurationMinutesFile    = "duration-minutes.csv"
	GenresFile             = "genres.csv"
	GenreWordsFile         = "genre-words.csv"
	DecadesFile            = "decades.csv"
	YearsFile              = "years.csv"
)

// Word cloud file names.
const (
	ArtistsCloudFile    = "artists.png"
	GenresCloudFile     = "genres.png"
	GenreWordsCloudFile = "genre-words.png"
)

// Options controls a report run.
type Options struct {
	WordClouds bool
	Cloud      CloudOptions
	Logger     *slog.Logger
}

// WriteTables writes every counter table to dir and returns the paths
// written, in a stable order.
func WriteTables(dir string, agg *stats.Aggregator) ([]string, error) {
	var paths []string
	add := func(path string, err error) error {
		if err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}

	steps := []func() error{
		func() error {
			return add(WriteTable(dir, BasicStatsFile, "Statistic", "Value", agg.BasicStatsMap(), false))
		},
		func() error {
			return add(WriteTable(dir, ArtistsFile, "Artist", "Track count", agg.ByArtist, true))
		},
		func() error {
			return add(WriteTable(dir, ArtistDebutDecadesFile, "Artist debut decade", "Artist count", agg.ByArtistDebutDecade, true))
		},
		func() error {
			return add(WriteTable(dir, ArtistDebutYearsFile, "Artist debut year", "Artist count", agg.ByArtistDebutYear, true))
		},
		func() error {
			return add(WriteTable(dir, DurationMinutesFile, "Duration in minutes", "Track count", agg.ByDurationMinute, true))
		},
		func() error {
			return add(WriteTable(dir, GenresFile, "Genre", "Artist count", agg.ByGenre, true))
		},
		func() error {
			return add(WriteTable(dir, GenreWordsFile, "Genre word", "Artist count", agg.ByGenreWord, true))
		},
		func() error {
			return add(WriteTable(dir, DecadesFile, "Decade", "Track count", agg.ByReleaseDecade, true))
		},
		func() error {
			return add(WriteTable(dir, YearsFile, "Year", "Track count", agg.ByReleaseYear, true))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// WriteWordClouds renders the artist, genre and genre-word clouds in
// parallel. The first failure cancels the others.
func WriteWordClouds(ctx context.Context, dir string, agg *stats.Aggregator, opts CloudOptions) ([]string, error) {
	clouds := []struct {
		file  string
		words map[string]int
		title bool
	}{
		{ArtistsCloudFile, agg.ByArtist, false},
		{GenresCloudFile, agg.ByGenre, true},
		{GenreWordsCloudFile, agg.ByGenreWord, true},
	}

	paths := make([]string, len(clouds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, cloud := range clouds {
		group.Go(func() error {
			words := cloud.words
			if cloud.title {
				words = TitleCaseLabels(words)
			}
			path, err := WriteWordCloud(groupCtx, dir, cloud.file, words, opts)
			if err != nil {
				return fmt.Errorf("word cloud %s: %w", cloud.file, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Write produces the full report: tables, then word clouds when enabled.
func Write(ctx context.Context, dir string, agg *stats.Aggregator, opts Options) ([]string, error) {
	logger := logging.NewComponentLogger(opts.Logger, "export")

	paths, err := WriteTables(dir, agg)
	if err != nil {
		return paths, err
	}
	logger.Info("tables written", logging.String("dir", dir), logging.Int("files", len(paths)))

	if !opts.WordClouds {
		return paths, nil
	}
	images, err := WriteWordClouds(ctx, dir, agg, opts.Cloud)
	if err != nil {
		return paths, err
	}
	logger.Info("word clouds written", logging.String("dir", dir), logging.Int("files", len(images)))
	return append(paths, images...), nil
}
