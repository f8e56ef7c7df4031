package enrich

import (
	"musictaste/internal/catalog"
	"musictaste/internal/lookupcache"
)

// Cache key prefixes. Keys are "<kind>/<catalog id>".
const (
	KindTrack       = "track"
	KindAlbum       = "album"
	KindArtist      = "artist"
	KindArtistDebut = "artist-debut"
)

// Decode targets for each cached kind.
var (
	TrackShape     = lookupcache.ShapeOf[catalog.Track](KindTrack)
	AlbumShape     = lookupcache.ShapeOf[catalog.Album](KindAlbum)
	ArtistShape    = lookupcache.ShapeOf[catalog.Artist](KindArtist)
	DebutYearShape = lookupcache.ShapeOf[int](KindArtistDebut)
)

// Key builds the cache key for a record kind and catalog ID.
func Key(kind, id string) string {
	return kind + "/" + id
}
