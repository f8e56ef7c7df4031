package lookupcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
)

func TestHoldsCurrentFileDetectsReplacedLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.cache.lock")

	stale := flock.New(path)
	ok, err := stale.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer stale.Close()

	current, err := holdsCurrentFile(stale, path)
	if err != nil || !current {
		t.Fatalf("fresh lock: holdsCurrentFile = %v, %v", current, err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	current, err = holdsCurrentFile(stale, path)
	if err != nil || current {
		t.Fatalf("unlinked lock file: holdsCurrentFile = %v, %v", current, err)
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	current, err = holdsCurrentFile(stale, path)
	if err != nil || current {
		t.Fatalf("replaced lock file: holdsCurrentFile = %v, %v", current, err)
	}
}

func TestAcquireLockAfterReleaseRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.cache.lock")

	first, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	if _, err := acquireLock(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second acquireLock = %v, want ErrLocked", err)
	}
	if err := first.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lock file left behind: %v", err)
	}

	second, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock after release: %v", err)
	}
	if err := second.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}
