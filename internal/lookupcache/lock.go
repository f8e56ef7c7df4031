package lookupcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gofrs/flock"
)

// lockAttempts bounds how often acquireLock retries after locking a lock file
// that a releasing process had already unlinked.
const lockAttempts = 3

// dirLock is the advisory lock that keeps a second process away from a cache
// directory while the live database exists.
type dirLock struct {
	path string
	fl   *flock.Flock
}

func acquireLock(path string) (*dirLock, error) {
	for range lockAttempts {
		fl := flock.New(path)
		ok, err := fl.TryLock()
		if err != nil {
			_ = fl.Close()
			return nil, unavailable("lock", path, err)
		}
		if !ok {
			_ = fl.Close()
			return nil, unavailable("lock", path, ErrLocked)
		}
		current, err := holdsCurrentFile(fl, path)
		if err != nil {
			_ = fl.Close()
			return nil, unavailable("lock", path, err)
		}
		if current {
			return &dirLock{path: path, fl: fl}, nil
		}
		// Release removes the file before unlocking, so a lock won on the
		// unlinked inode excludes nobody.
		_ = fl.Close()
	}
	return nil, unavailable("lock", path, ErrLocked)
}

// holdsCurrentFile reports whether the locked descriptor still refers to the
// file at path.
func holdsCurrentFile(fl *flock.Flock, path string) (bool, error) {
	held, err := fl.Stat()
	if err != nil {
		return false, fmt.Errorf("stat locked file: %w", err)
	}
	onDisk, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat lock path: %w", err)
	}
	return os.SameFile(held, onDisk), nil
}

// release removes the lock file, then unlocks, so only the archive stays at rest.
func (l *dirLock) release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = l.fl.Close()
		return unavailable("remove lock", l.path, err)
	}
	if err := l.fl.Close(); err != nil {
		return unavailable("unlock", l.path, err)
	}
	return nil
}
