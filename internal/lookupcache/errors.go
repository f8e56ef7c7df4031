package lookupcache

import (
	"errors"
	"fmt"

	"musictaste/internal/cachearchive"
	"musictaste/internal/cachestore"
)

var (
	// ErrDeserialization reports a stored payload that does not match the
	// requested shape.
	ErrDeserialization = errors.New("cached value does not match requested shape")
	// ErrCacheUnavailable reports that the cache could not be opened or
	// archived. The run should abort rather than continue with an empty cache.
	ErrCacheUnavailable = cachearchive.ErrCacheUnavailable
	// ErrStoreClosed reports use of a cache after Close.
	ErrStoreClosed = cachestore.ErrClosed
	// ErrLocked reports that another process holds the cache directory.
	ErrLocked = errors.New("cache is locked by another process")
)

// UnavailableError carries the failed step and file behind ErrCacheUnavailable.
type UnavailableError = cachearchive.UnavailableError

// DecodeError describes a payload that failed to decode. It matches
// ErrDeserialization with errors.Is.
type DecodeError struct {
	Key   string
	Shape string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("decode %s: %v", e.Shape, e.Err)
	}
	return fmt.Sprintf("decode %q as %s: %v", e.Key, e.Shape, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDeserialization }

func unavailable(op, path string, err error) error {
	return &UnavailableError{Op: op, Path: path, Err: err}
}
