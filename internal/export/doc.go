// Package export writes aggregated statistics to disk.
//
// Tables are tab-separated text files with a header row, one per counter.
// Word clouds render the artist, genre and genre-word counters as PNG
// images. Every file is written through a temporary sibling and renamed into
// place so an interrupted run never leaves a half-written report.
package export
