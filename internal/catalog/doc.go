// Package catalog is a small Spotify Web API client covering the lookups the
// enrichment pipeline needs: tracks, albums, artists, and an artist's album
// list.
//
// Authentication uses the client-credentials flow. The access token is
// fetched on first use and refreshed when it expires or the API answers 401.
// Rate limiting (429) and server errors are retried with exponential backoff
// that honours Retry-After. Callers distinguish a missing record from a
// temporary outage with errors.Is(err, ErrNotFound) and
// errors.Is(err, ErrTransient).
package catalog
