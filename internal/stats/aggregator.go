package stats

import (
	"fmt"
	"strings"

	"musictaste/internal/catalog"
)

// Aggregator accumulates counters over a run. The zero value is not usable;
// call New.
type Aggregator struct {
	ByArtist            map[string]int
	ByArtistDebutDecade map[string]int
	ByArtistDebutYear   map[int]int
	ByDurationMinute    map[string]int
	ByGenre             map[string]int
	ByGenreWord         map[string]int
	ByReleaseDecade     map[string]int
	ByReleaseYear       map[int]int

	Tracks             int
	MinDurationSeconds int
	MaxDurationSeconds int
	SumDurationSeconds int
}

// Stat is one named summary value.
type Stat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		ByArtist:            map[string]int{},
		ByArtistDebutDecade: map[string]int{},
		ByArtistDebutYear:   map[int]int{},
		ByDurationMinute:    map[string]int{},
		ByGenre:             map[string]int{},
		ByGenreWord:         map[string]int{},
		ByReleaseDecade:     map[string]int{},
		ByReleaseYear:       map[int]int{},
	}
}

// AddTrack counts a track and its length bucket.
func (a *Aggregator) AddTrack(track catalog.Track) {
	seconds := track.DurationMs / 1000
	if a.Tracks == 0 || seconds < a.MinDurationSeconds {
		a.MinDurationSeconds = seconds
	}
	if a.Tracks == 0 || seconds > a.MaxDurationSeconds {
		a.MaxDurationSeconds = seconds
	}
	a.Tracks++
	a.SumDurationSeconds += seconds

	minutes := seconds / 60
	a.ByDurationMinute[fmt.Sprintf("%d-%d min. length", minutes, minutes+1)]++
}

// AddAlbum counts the album's release year and decade.
func (a *Aggregator) AddAlbum(album catalog.Album) error {
	year, err := album.ReleaseYear()
	if err != nil {
		return err
	}
	a.ByReleaseYear[year]++
	a.ByReleaseDecade[Decade(year)]++
	return nil
}

// AddArtist counts the artist, each genre, and each word of each genre.
func (a *Aggregator) AddArtist(artist catalog.Artist) {
	a.ByArtist[artist.Name]++
	for _, genre := range artist.Genres {
		a.ByGenre[genre]++
		for _, word := range strings.Fields(genre) {
			a.ByGenreWord[word]++
		}
	}
}

// AddArtistDebutYear counts an artist's first release year and decade.
func (a *Aggregator) AddArtistDebutYear(year int) {
	a.ByArtistDebutYear[year]++
	a.ByArtistDebutDecade[Decade(year)]++
}

// AverageDurationSeconds returns the mean track length, or 0 with no tracks.
func (a *Aggregator) AverageDurationSeconds() float64 {
	if a.Tracks == 0 {
		return 0
	}
	return float64(a.SumDurationSeconds) / float64(a.Tracks)
}

// BasicStats returns the run summary in display order. Duration and year
// extremes are omitted when nothing was counted for them.
func (a *Aggregator) BasicStats() []Stat {
	stats := []Stat{
		{Name: "Artist count", Value: float64(len(a.ByArtist))},
		{Name: "Genre count", Value: float64(len(a.ByGenre))},
		{Name: "Track count", Value: float64(a.Tracks)},
	}
	if a.Tracks > 0 {
		stats = append(stats,
			Stat{Name: "Average track duration in seconds", Value: a.AverageDurationSeconds()},
			Stat{Name: "Longest track's duration in seconds", Value: float64(a.MaxDurationSeconds)},
			Stat{Name: "Shortest track's duration in seconds", Value: float64(a.MinDurationSeconds)},
		)
	}
	if oldest, youngest, ok := yearRange(a.ByReleaseYear); ok {
		stats = append(stats,
			Stat{Name: "Oldest track's year", Value: float64(oldest)},
			Stat{Name: "Youngest track's year", Value: float64(youngest)},
		)
	}
	if oldest, youngest, ok := yearRange(a.ByArtistDebutYear); ok {
		stats = append(stats,
			Stat{Name: "Oldest artist's debut year", Value: float64(oldest)},
			Stat{Name: "Youngest artist's debut year", Value: float64(youngest)},
		)
	}
	return stats
}

// BasicStatsMap returns BasicStats keyed by name.
func (a *Aggregator) BasicStatsMap() map[string]float64 {
	out := map[string]float64{}
	for _, stat := range a.BasicStats() {
		out[stat.Name] = stat.Value
	}
	return out
}

// Decade labels the decade containing year, e.g. 1994 -> "1990s".
func Decade(year int) string {
	return fmt.Sprintf("%ds", year-year%10)
}

func yearRange(years map[int]int) (int, int, bool) {
	first := true
	var oldest, youngest int
	for year := range years {
		if first || year < oldest {
			oldest = year
		}
		if first || year > youngest {
			youngest = year
		}
		first = false
	}
	return oldest, youngest, !first
}
