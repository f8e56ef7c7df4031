// Package stats counts the features of enriched tracks: artists, genres,
// genre words, release and debut years and decades, and track length
// buckets. The counters feed the exported tables and word clouds.
package stats
