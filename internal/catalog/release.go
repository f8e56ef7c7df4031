package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ReleaseYear extracts the year from a Spotify release date ("1997",
// "1997-03", or "1997-03-10"). Some records carry a two-digit century typo
// such as "0013-10-08"; a leading "00" is read as "20".
func ReleaseYear(date string) (int, error) {
	yearText, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	if strings.HasPrefix(yearText, "00") {
		yearText = "20" + yearText[2:]
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return 0, fmt.Errorf("release date %q: %w", date, err)
	}
	return year, nil
}

// ReleaseYear reports the album's release year.
func (a Album) ReleaseYear() (int, error) {
	return ReleaseYear(a.ReleaseDate)
}
