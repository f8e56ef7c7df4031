package cachearchive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"musictaste/internal/fileutil"
	"musictaste/internal/logging"
)

// ErrCacheUnavailable marks failures that leave the cache unusable for the
// current run.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Paths names the two physical forms of one cache database.
type Paths struct {
	Live    string
	Archive string
}

// PathsFor derives the archive path from the live database path.
func PathsFor(live string) Paths {
	return Paths{Live: live, Archive: live + ".gz"}
}

// MaterializeResult describes what MaterializeLive found on disk.
type MaterializeResult struct {
	// Restored is true when the live file was produced from the archive.
	Restored bool
	// DiscardedStale is true when both forms existed and the archive was dropped.
	DiscardedStale bool
}

// UnavailableError reports which step failed while transcoding.
type UnavailableError struct {
	Op   string
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrCacheUnavailable, e.Op, e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports ErrCacheUnavailable for every transcoding failure.
func (e *UnavailableError) Is(target error) bool { return target == ErrCacheUnavailable }

func unavailable(op, path string, err error) error {
	return &UnavailableError{Op: op, Path: path, Err: err}
}

// sideFileSuffixes are SQLite companions that may accompany the live file.
var sideFileSuffixes = []string{"-journal", "-wal", "-shm"}

// MaterializeLive prepares the live database file. A present live file wins
// and any archive next to it is deleted unread. Otherwise an existing archive
// is decompressed into the live path and then removed. With neither present
// nothing happens and the store creates an empty database.
func MaterializeLive(p Paths, logger *slog.Logger) (MaterializeResult, error) {
	logger = logging.NewComponentLogger(logger, "cachearchive")
	var result MaterializeResult

	liveExists, err := exists(p.Live)
	if err != nil {
		return result, unavailable("stat live", p.Live, err)
	}
	archiveExists, err := exists(p.Archive)
	if err != nil {
		return result, unavailable("stat archive", p.Archive, err)
	}

	switch {
	case liveExists && archiveExists:
		logging.WarnWithContext(logger, "live cache file found next to archive", "cache_stale_archive",
			logging.String("live", p.Live),
			logging.String("archive", p.Archive),
			logging.String(logging.FieldErrorHint, "previous run did not close the cache cleanly"),
			logging.String(logging.FieldImpact, "archive discarded, live file kept"))
		if err := os.Remove(p.Archive); err != nil {
			return result, unavailable("remove stale archive", p.Archive, err)
		}
		result.DiscardedStale = true
		return result, nil
	case liveExists:
		return result, nil
	case !archiveExists:
		logger.Debug("no cache archive found, starting empty", logging.String("archive", p.Archive))
		return result, nil
	}

	logger.Info("decompressing database", logging.String("archive", p.Archive))
	start := time.Now()
	written, err := decompress(p.Archive, p.Live)
	if err != nil {
		return result, unavailable("decompress", p.Archive, err)
	}
	if err := os.Remove(p.Archive); err != nil {
		return result, unavailable("remove archive", p.Archive, err)
	}
	logger.Debug("database decompressed",
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(start)))
	result.Restored = true
	return result, nil
}

// ArchiveAndDiscardLive compresses the live file into a fresh archive and
// then deletes the live file with its SQLite side files. The database handle
// must already be closed.
func ArchiveAndDiscardLive(p Paths, level int, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "cachearchive")

	info, err := os.Stat(p.Live)
	if err != nil {
		return unavailable("stat live", p.Live, err)
	}

	logger.Info("compressing database", logging.String("archive", p.Archive))
	start := time.Now()
	if err := compress(p.Live, p.Archive, level); err != nil {
		return unavailable("compress", p.Live, err)
	}
	if err := os.Remove(p.Live); err != nil {
		return unavailable("remove live", p.Live, err)
	}
	for _, suffix := range sideFileSuffixes {
		if err := os.Remove(p.Live + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return unavailable("remove side file", p.Live+suffix, err)
		}
	}

	archived, statErr := os.Stat(p.Archive)
	attrs := []logging.Attr{
		logging.Int64("live_bytes", info.Size()),
		logging.Duration("elapsed", time.Since(start)),
	}
	if statErr == nil {
		attrs = append(attrs, logging.Int64("archive_bytes", archived.Size()))
	}
	logger.Debug("database compressed", logging.Args(attrs...)...)
	return nil
}

// Verify reads the whole archive and checks the gzip trailer without
// writing anything. It returns the inflated size.
func Verify(archive string) (int64, error) {
	in, err := os.Open(archive)
	if err != nil {
		return 0, unavailable("verify", archive, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return 0, unavailable("verify", archive, fmt.Errorf("read gzip header: %w", err))
	}
	defer zr.Close()
	size, err := io.Copy(io.Discard, zr)
	if err != nil {
		return size, unavailable("verify", archive, fmt.Errorf("inflate: %w", err))
	}
	if err := zr.Close(); err != nil {
		return size, unavailable("verify", archive, fmt.Errorf("verify gzip trailer: %w", err))
	}
	return size, nil
}

func decompress(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return 0, fmt.Errorf("read gzip header: %w", err)
	}
	defer zr.Close()

	out, err := fileutil.NewAtomicFile(dst, 0o644)
	if err != nil {
		return 0, err
	}
	defer out.Abort()

	written, err := io.Copy(out, zr)
	if err != nil {
		return written, fmt.Errorf("inflate: %w", err)
	}
	if err := zr.Close(); err != nil {
		return written, fmt.Errorf("verify gzip trailer: %w", err)
	}
	if err := out.Commit(); err != nil {
		return written, err
	}
	return written, nil
}

func compress(src, dst string, level int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fileutil.NewAtomicFile(dst, 0o644)
	if err != nil {
		return err
	}
	defer out.Abort()

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := io.Copy(zw, in); err != nil {
		_ = zw.Close()
		return fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish gzip stream: %w", err)
	}
	return out.Commit()
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
