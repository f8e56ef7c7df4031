package stats_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"musictaste/internal/catalog"
	"musictaste/internal/stats"
)

func TestAggregatorCounts(t *testing.T) {
	agg := stats.New()

	agg.AddTrack(catalog.Track{DurationMs: 200000})
	agg.AddTrack(catalog.Track{DurationMs: 245999})
	agg.AddTrack(catalog.Track{DurationMs: 59000})

	for _, date := range []string{"1994-05-01", "1999", "2013-10-08"} {
		if err := agg.AddAlbum(catalog.Album{ReleaseDate: date}); err != nil {
			t.Fatalf("AddAlbum(%s): %v", date, err)
		}
	}
	agg.AddArtist(catalog.Artist{Name: "Korn", Genres: []string{"nu metal", "alternative metal"}})
	agg.AddArtist(catalog.Artist{Name: "Korn", Genres: []string{"nu metal"}})
	agg.AddArtistDebutYear(1994)
	agg.AddArtistDebutYear(1994)

	if diff := cmp.Diff(map[string]int{"0-1 min. length": 1, "3-4 min. length": 1, "4-5 min. length": 1}, agg.ByDurationMinute); diff != "" {
		t.Fatalf("duration buckets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"1990s": 2, "2010s": 1}, agg.ByReleaseDecade); diff != "" {
		t.Fatalf("release decades (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"nu": 2, "metal": 3, "alternative": 1}, agg.ByGenreWord); diff != "" {
		t.Fatalf("genre words (-want +got):\n%s", diff)
	}
	if agg.ByArtist["Korn"] != 2 || agg.ByGenre["nu metal"] != 2 {
		t.Fatalf("unexpected artist/genre counts %v %v", agg.ByArtist, agg.ByGenre)
	}
	if agg.ByArtistDebutDecade["1990s"] != 2 || agg.ByArtistDebutYear[1994] != 2 {
		t.Fatalf("unexpected debut counts %v %v", agg.ByArtistDebutDecade, agg.ByArtistDebutYear)
	}

	want := []stats.Stat{
		{Name: "Artist count", Value: 1},
		{Name: "Genre count", Value: 2},
		{Name: "Track count", Value: 3},
		{Name: "Average track duration in seconds", Value: float64(200+245+59) / 3},
		{Name: "Longest track's duration in seconds", Value: 245},
		{Name: "Shortest track's duration in seconds", Value: 59},
		{Name: "Oldest track's year", Value: 1994},
		{Name: "Youngest track's year", Value: 2013},
		{Name: "Oldest artist's debut year", Value: 1994},
		{Name: "Youngest artist's debut year", Value: 1994},
	}
	if diff := cmp.Diff(want, agg.BasicStats()); diff != "" {
		t.Fatalf("basic stats (-want +got):\n%s", diff)
	}
}

func TestBasicStatsOmitsEmptyExtremes(t *testing.T) {
	agg := stats.New()
	want := []stats.Stat{
		{Name: "Artist count", Value: 0},
		{Name: "Genre count", Value: 0},
		{Name: "Track count", Value: 0},
	}
	if diff := cmp.Diff(want, agg.BasicStats()); diff != "" {
		t.Fatalf("basic stats (-want +got):\n%s", diff)
	}
	if agg.AverageDurationSeconds() != 0 {
		t.Fatal("average should be 0 without tracks")
	}
	if got := agg.BasicStatsMap()["Track count"]; got != 0 {
		t.Fatalf("map track count = %v", got)
	}
}

func TestAddAlbumRejectsUndatedAlbum(t *testing.T) {
	agg := stats.New()
	if err := agg.AddAlbum(catalog.Album{ID: "x", ReleaseDate: ""}); err == nil {
		t.Fatal("expected error for empty release date")
	}
	if len(agg.ByReleaseYear) != 0 {
		t.Fatalf("undated album should not be counted: %v", agg.ByReleaseYear)
	}
}

func TestDecade(t *testing.T) {
	for year, want := range map[int]string{1990: "1990s", 1999: "1990s", 2000: "2000s", 2013: "2010s"} {
		if got := stats.Decade(year); got != want {
			t.Fatalf("Decade(%d) = %q, want %q", year, got, want)
		}
	}
}
