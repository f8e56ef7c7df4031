package lookupcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"musictaste/internal/cachearchive"
	"musictaste/internal/cachestore"
	"musictaste/internal/logging"
)

// Compression levels accepted by Config, matching gzip.HuffmanOnly through
// gzip.BestCompression.
const (
	MinCompressionLevel = -2
	MaxCompressionLevel = 9
)

// Config names the cache files. The archived form lives next to the live
// database as Filename + ".gz"; the lock file as Filename + ".lock".
type Config struct {
	Dir              string
	Filename         string
	CompressionLevel int
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir is required")
	}
	if strings.TrimSpace(c.Filename) == "" {
		return errors.New("cache filename is required")
	}
	if c.Filename != filepath.Base(c.Filename) {
		return fmt.Errorf("cache filename %q must not contain a directory", c.Filename)
	}
	if c.CompressionLevel < MinCompressionLevel || c.CompressionLevel > MaxCompressionLevel {
		return fmt.Errorf("compression level %d out of range [%d, %d]", c.CompressionLevel, MinCompressionLevel, MaxCompressionLevel)
	}
	return nil
}

// Option customizes a Cache at Open.
type Option func(*Cache)

// WithLogger routes cache diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache is an open lookup cache session.
type Cache struct {
	cfg    Config
	paths  cachearchive.Paths
	store  *cachestore.Store
	lock   *dirLock
	logger *slog.Logger
	opened cachearchive.MaterializeResult
	closed bool
}

// Stats summarizes an open cache.
type Stats struct {
	LivePath       string
	ArchivePath    string
	Entries        int
	Kinds          []cachestore.KindCount
	Restored       bool
	DiscardedStale bool
}

// Open locks the cache directory, restores the live database from its
// archive, and opens the entry store. Every failure is reported as
// ErrCacheUnavailable; nothing is left unlocked or uncompressed on disk.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("lookup cache config: %w", err)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, unavailable("create dir", cfg.Dir, err)
	}

	c := &Cache{
		cfg:    cfg,
		paths:  cachearchive.PathsFor(filepath.Join(cfg.Dir, cfg.Filename)),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "lookupcache")

	lock, err := acquireLock(c.paths.Live + ".lock")
	if err != nil {
		return nil, err
	}

	result, err := cachearchive.MaterializeLive(c.paths, c.logger)
	if err != nil {
		return nil, errors.Join(err, lock.release())
	}

	store, err := cachestore.Open(ctx, c.paths.Live)
	if err != nil {
		openErr := unavailable("open store", c.paths.Live, err)
		return nil, errors.Join(openErr, c.rearchive(), lock.release())
	}

	c.store = store
	c.lock = lock
	c.opened = result
	c.logger.Debug("lookup cache opened",
		logging.String("path", c.paths.Live),
		logging.Bool("restored", result.Restored),
		logging.Bool("discarded_stale", result.DiscardedStale),
	)
	return c, nil
}

// rearchive puts a live file left behind by a failed Open back into its
// archived form.
func (c *Cache) rearchive() error {
	if _, err := os.Stat(c.paths.Live); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return unavailable("stat live", c.paths.Live, err)
	}
	return cachearchive.ArchiveAndDiscardLive(c.paths, c.cfg.CompressionLevel, c.logger)
}

// Fetch returns the value stored under key decoded as shape. A missing key
// yields ok == false and a nil error. Fetch never contacts the catalog.
func Fetch[T any](ctx context.Context, c *Cache, key string, shape Shape[T]) (T, bool, error) {
	var zero T
	if err := c.ensureOpen(); err != nil {
		return zero, false, err
	}
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	value, err := shape.Decode([]byte(entry.Value))
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Key = key
		}
		return zero, false, err
	}
	return value, true, nil
}

// Store encodes value and upserts it under key.
func (c *Cache) Store(ctx context.Context, key string, value any) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	data, err := Encode(value)
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return c.store.Put(ctx, cachestore.Entry{Key: key, Value: string(data)})
}

// Raw returns the stored entry without decoding it.
func (c *Cache) Raw(ctx context.Context, key string) (cachestore.Entry, bool, error) {
	if err := c.ensureOpen(); err != nil {
		return cachestore.Entry{}, false, err
	}
	return c.store.Get(ctx, key)
}

// Keys lists stored keys starting with prefix in ascending order.
func (c *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	return c.store.Keys(ctx, prefix)
}

// Len reports the number of stored entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	if err := c.ensureOpen(); err != nil {
		return 0, err
	}
	return c.store.Count(ctx)
}

// Stats reports entry counts per key kind and how the session was opened.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	if err := c.ensureOpen(); err != nil {
		return Stats{}, err
	}
	count, err := c.store.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	kinds, err := c.store.Kinds(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		LivePath:       c.paths.Live,
		ArchivePath:    c.paths.Archive,
		Entries:        count,
		Kinds:          kinds,
		Restored:       c.opened.Restored,
		DiscardedStale: c.opened.DiscardedStale,
	}, nil
}

// Paths reports the live and archive file locations.
func (c *Cache) Paths() cachearchive.Paths {
	return c.paths
}

// Close closes the entry store, archives the live database, removes the live
// file, and releases the directory lock. A second Close returns
// ErrStoreClosed.
func (c *Cache) Close() error {
	if c.closed {
		return ErrStoreClosed
	}
	c.closed = true

	storeErr := c.store.Close()
	if storeErr != nil {
		storeErr = unavailable("close store", c.paths.Live, storeErr)
	}
	archiveErr := cachearchive.ArchiveAndDiscardLive(c.paths, c.cfg.CompressionLevel, c.logger)
	lockErr := c.lock.release()
	return errors.Join(storeErr, archiveErr, lockErr)
}

func (c *Cache) ensureOpen() error {
	if c == nil || c.closed {
		return ErrStoreClosed
	}
	return nil
}

// With opens the cache, runs fn, and closes the cache on every exit path,
// including a panic in fn. The close error is joined with fn's error.
func With(ctx context.Context, cfg Config, fn func(*Cache) error, opts ...Option) error {
	c, err := Open(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if !c.closed {
				_ = c.Close()
			}
			panic(r)
		}
	}()

	fnErr := fn(c)
	var closeErr error
	if !c.closed {
		closeErr = c.Close()
	}
	return errors.Join(fnErr, closeErr)
}
