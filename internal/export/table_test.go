package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"musictaste/internal/catalog"
	"musictaste/internal/export"
	"musictaste/internal/stats"
)

func TestWriteTableSortsByValueThenKey(t *testing.T) {
	dir := t.TempDir()
	path, err := export.WriteTable(dir, "artists.csv", "Artist", "Track count",
		map[string]int{"Beta": 2, "Alpha": 2, "Gamma": 5, "Delta": 1}, true)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	want := "Artist\tTrack count\nGamma\t5\nAlpha\t2\nBeta\t2\nDelta\t1\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("table mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestWriteTableSortsByKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "created")
	path, err := export.WriteTable(dir, "years.csv", "Year", "Track count", map[int]int{2003: 1, 1994: 4, 1989: 2}, false)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	want := "Year\tTrack count\n1989\t2\n1994\t4\n2003\t1\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("table mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestWriteTableFormatsFloats(t *testing.T) {
	path, err := export.WriteTable(t.TempDir(), "basic-stats.csv", "Statistic", "Value",
		map[string]float64{"Track count": 3, "Average duration (seconds)": 168.5}, false)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	want := "Statistic\tValue\nAverage duration (seconds)\t168.5\nTrack count\t3\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("table mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestWriteTablesWritesEveryCounter(t *testing.T) {
	agg := stats.New()
	agg.AddTrack(catalog.Track{DurationMs: 200000})
	agg.AddArtist(catalog.Artist{Name: "Alpha", Genres: []string{"indie rock"}})
	agg.AddArtistDebutYear(1989)
	if err := agg.AddAlbum(catalog.Album{ReleaseDate: "1994-05-01"}); err != nil {
		t.Fatalf("AddAlbum: %v", err)
	}

	dir := t.TempDir()
	paths, err := export.WriteTables(dir, agg)
	if err != nil {
		t.Fatalf("WriteTables: %v", err)
	}
	var names []string
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	want := []string{
		export.BasicStatsFile,
		export.ArtistsFile,
		export.ArtistDebutDecadesFile,
		export.ArtistDebutYearsFile,
		export.DurationMinutesFile,
		export.GenresFile,
		export.GenreWordsFile,
		export.DecadesFile,
		export.YearsFile,
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("written files (-want +got):\n%s", diff)
	}

	if got := readFile(t, filepath.Join(dir, export.GenreWordsFile)); got != "Genre word\tArtist count\nindie\t1\nrock\t1\n" {
		t.Fatalf("genre words = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, export.DurationMinutesFile)); got != "Duration in minutes\tTrack count\n3-4 min. length\t1\n" {
		t.Fatalf("durations = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, export.DecadesFile)); got != "Decade\tTrack count\n1990s\t1\n" {
		t.Fatalf("decades = %q", got)
	}
}

func TestWriteTablesOrdersCountersByFrequency(t *testing.T) {
	agg := stats.New()
	for _, ms := range []int{630000, 200000, 640000, 650000, 210000} {
		agg.AddTrack(catalog.Track{DurationMs: ms})
	}
	for _, year := range []int{2003, 1989, 2003} {
		agg.AddArtistDebutYear(year)
	}

	dir := t.TempDir()
	if _, err := export.WriteTables(dir, agg); err != nil {
		t.Fatalf("WriteTables: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, export.DurationMinutesFile)); got != "Duration in minutes\tTrack count\n10-11 min. length\t3\n3-4 min. length\t2\n" {
		t.Fatalf("duration table = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, export.ArtistDebutYearsFile)); got != "Artist debut year\tArtist count\n2003\t2\n1989\t1\n" {
		t.Fatalf("debut year table = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, export.ArtistDebutDecadesFile)); got != "Artist debut decade\tArtist count\n2000s\t2\n1980s\t1\n" {
		t.Fatalf("debut decade table = %q", got)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
