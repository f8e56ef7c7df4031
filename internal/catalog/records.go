package catalog

// SimpleArtist is the artist reference embedded in tracks and albums.
type SimpleArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SimpleAlbum is the album reference embedded in tracks and album listings.
type SimpleAlbum struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	AlbumType            string         `json:"album_type"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	Artists              []SimpleArtist `json:"artists"`
}

// Track is a full track record.
type Track struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	DurationMs int            `json:"duration_ms"`
	Explicit   bool           `json:"explicit"`
	Popularity int            `json:"popularity"`
	Album      SimpleAlbum    `json:"album"`
	Artists    []SimpleArtist `json:"artists"`
}

// Album is a full album record.
type Album struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	AlbumType            string         `json:"album_type"`
	ReleaseDate          string         `json:"release_date"`
	ReleaseDatePrecision string         `json:"release_date_precision"`
	Genres               []string       `json:"genres"`
	TotalTracks          int            `json:"total_tracks"`
	Artists              []SimpleArtist `json:"artists"`
}

// Followers holds an artist's follower count.
type Followers struct {
	Total int `json:"total"`
}

// Artist is a full artist record.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genres     []string  `json:"genres"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
}

type albumPage struct {
	Items  []SimpleAlbum `json:"items"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Next   *string       `json:"next"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
