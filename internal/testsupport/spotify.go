package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"musictaste/internal/catalog"
)

// SpotifyServer is an in-memory stand-in for the Spotify Web API. It accepts
// any credentials except a client secret of "wrong".
type SpotifyServer struct {
	*httptest.Server

	mu      sync.Mutex
	tracks  map[string]catalog.Track
	albums  map[string]catalog.Album
	artists map[string]catalog.Artist
	listing map[string][]string
	hits    map[string]int
}

// NewSpotifyServer starts a server and closes it on cleanup.
func NewSpotifyServer(t testing.TB) *SpotifyServer {
	t.Helper()
	s := &SpotifyServer{
		tracks:  map[string]catalog.Track{},
		albums:  map[string]catalog.Album{},
		artists: map[string]catalog.Artist{},
		listing: map[string][]string{},
		hits:    map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", s.token)
	mux.HandleFunc("GET /v1/tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		serveRecord(s, w, "tracks/"+r.PathValue("id"), s.tracks, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/albums/{id}", func(w http.ResponseWriter, r *http.Request) {
		serveRecord(s, w, "albums/"+r.PathValue("id"), s.albums, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/artists/{id}", func(w http.ResponseWriter, r *http.Request) {
		serveRecord(s, w, "artists/"+r.PathValue("id"), s.artists, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/artists/{id}/albums", s.artistAlbums)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the API root.
func (s *SpotifyServer) BaseURL() string { return s.URL + "/v1" }

// TokenURL returns the token endpoint.
func (s *SpotifyServer) TokenURL() string { return s.URL + "/api/token" }

// AddTrack registers a track together with its album and artists. The album
// is also listed under each artist.
func (s *SpotifyServer) AddTrack(track catalog.Track, album catalog.Album, artists ...catalog.Artist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	track.Album.ID = album.ID
	track.Artists = nil
	for _, artist := range artists {
		track.Artists = append(track.Artists, catalog.SimpleArtist{ID: artist.ID, Name: artist.Name})
		s.artists[artist.ID] = artist
		if !slices.Contains(s.listing[artist.ID], album.ID) {
			s.listing[artist.ID] = append(s.listing[artist.ID], album.ID)
		}
	}
	s.tracks[track.ID] = track
	s.albums[album.ID] = album
}

// AddAlbum registers an extra album in an artist's discography.
func (s *SpotifyServer) AddAlbum(artistID string, album catalog.Album) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albums[album.ID] = album
	s.listing[artistID] = append(s.listing[artistID], album.ID)
}

// Hits returns how many API requests were served, excluding token requests.
func (s *SpotifyServer) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *SpotifyServer) token(w http.ResponseWriter, r *http.Request) {
	_, secret, ok := r.BasicAuth()
	if !ok || secret == "wrong" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
		return
	}
	writeJSON(w, map[string]any{"access_token": "test-token", "token_type": "Bearer", "expires_in": 3600})
}

func (s *SpotifyServer) artistAlbums(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	s.hits["artist-albums/"+id]++
	var items []catalog.SimpleAlbum
	for _, albumID := range s.listing[id] {
		album := s.albums[albumID]
		items = append(items, catalog.SimpleAlbum{ID: album.ID, Name: album.Name, ReleaseDate: album.ReleaseDate})
	}
	s.mu.Unlock()
	if items == nil {
		items = []catalog.SimpleAlbum{}
	}
	writeJSON(w, map[string]any{"items": items, "total": len(items), "offset": 0, "next": nil})
}

func serveRecord[T any](s *SpotifyServer, w http.ResponseWriter, hitKey string, records map[string]T, id string) {
	s.mu.Lock()
	s.hits[hitKey]++
	record, ok := records[id]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":404,"message":"Resource not found"}}`))
		return
	}
	writeJSON(w, record)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
