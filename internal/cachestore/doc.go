// Package cachestore persists lookup cache entries in a single-file SQLite
// database.
//
// The store holds flat key/value rows: keys are opaque strings chosen by the
// caller and values are already-serialized text. Put is an upsert that is
// durable when it returns, Get reports misses with a boolean rather than an
// error, and every operation after Close fails with ErrClosed.
//
// The package knows nothing about compression or value encoding; the
// lookupcache facade layers those concerns on top. Access is single-process:
// callers that share a Store across goroutines must serialize their own calls.
package cachestore
