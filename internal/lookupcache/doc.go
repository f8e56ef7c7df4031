// Package lookupcache is the persistent key/value cache that sits between the
// enrichment pipeline and the remote catalog.
//
// Values are JSON-encoded and stored in a SQLite entry store (package
// cachestore). Between runs only a gzip archive of that database exists on
// disk; Open restores the live database from the archive and Close writes a
// fresh archive and removes the live file (package cachearchive). Use With
// to get the close-and-archive step on every exit path.
//
// Reads are typed through a Shape passed at each call:
//
//	track, ok, err := lookupcache.Fetch(ctx, cache, "track/"+id, enrich.TrackShape)
//
// A miss is reported through ok, never as an error. A Cache is not safe for
// concurrent use, and only one process may hold a cache directory at a time;
// Open fails fast with ErrCacheUnavailable (wrapping ErrLocked) otherwise.
package lookupcache
