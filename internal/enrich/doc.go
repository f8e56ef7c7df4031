// Package enrich turns track identifiers into counted statistics.
//
// For each track the Enricher resolves the track, its album, each of its
// artists, and each artist's debut year. Every lookup goes through the
// lookup cache first and only reaches the catalog on a miss, storing the
// fetched record before it is used. Records the catalog does not know are
// logged and skipped; cache failures abort the run.
package enrich
