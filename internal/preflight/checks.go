package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"musictaste/internal/cachearchive"
	"musictaste/internal/catalog"
	"musictaste/internal/config"
)

const catalogCheckTimeout = 15 * time.Second

// CheckDirectoryAccess verifies that the directory is readable and writable.
// A missing directory passes when its nearest existing parent is writable,
// since musictaste creates its directories on first use.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := existingParent(path)
		if parent == "" {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func existingParent(path string) string {
	dir := filepath.Clean(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if info, err := os.Stat(parent); err == nil && info.IsDir() {
			return parent
		}
		dir = parent
	}
}

// CheckCacheState inspects the cache files at rest. A healthy idle cache is
// either absent or a single readable archive.
func CheckCacheState(live string) Result {
	const name = "Lookup cache"
	paths := cachearchive.PathsFor(live)

	if _, err := os.Stat(filepath.Dir(live)); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: "empty (created on first run)"}
	}

	lockPath := live + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("lock check failed: %v", err)}
	}
	if !locked {
		return Result{Name: name, Detail: "in use by another musictaste process"}
	}
	_ = os.Remove(lockPath)
	_ = lock.Unlock()

	liveInfo, liveErr := os.Stat(paths.Live)
	_, archiveErr := os.Stat(paths.Archive)
	switch {
	case liveErr == nil:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf(
			"%s (uncompressed %s left by an interrupted run; archived on next close)",
			paths.Live, humanize.Bytes(uint64(liveInfo.Size())))}
	case archiveErr == nil:
		size, err := cachearchive.Verify(paths.Archive)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", paths.Archive, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s uncompressed)", paths.Archive, humanize.Bytes(uint64(size)))}
	default:
		return Result{Name: name, Passed: true, Detail: "empty (created on first run)"}
	}
}

// CheckCredentials verifies that catalog credentials are configured.
func CheckCredentials(cfg *config.Config) Result {
	const name = "Spotify credentials"
	if err := cfg.ValidateCatalog(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckCatalog verifies that the token endpoint accepts the credentials.
// It makes a single attempt with a short timeout.
func CheckCatalog(ctx context.Context, cfg *config.Config, opts ...catalog.Option) Result {
	const name = "Spotify API"

	checkCtx, cancel := context.WithTimeout(ctx, catalogCheckTimeout)
	defer cancel()

	base := []catalog.Option{
		catalog.WithBaseURL(cfg.Spotify.APIBaseURL),
		catalog.WithTokenURL(cfg.Spotify.TokenURL),
		catalog.WithRetry(1, 0, 0),
	}
	client, err := catalog.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, append(base, opts...)...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.Authenticate(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeCatalogError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "credentials accepted"}
}

func summarizeCatalogError(err error) string {
	if errors.Is(err, catalog.ErrUnauthorized) {
		return "credentials rejected (check client id and secret)"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "token request timed out (Spotify API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "token request timed out (Spotify API unreachable)"
	}
	return err.Error()
}
