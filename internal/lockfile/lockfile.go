// Package lockfile provides cross-process advisory file locking, used to
// enforce that the indexing coordinator is the sole writer to a project's
// index directory at any given time.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock provides cross-process file locking using gofrs/flock. Works on all
// platforms (Unix, Linux, macOS, Windows).
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool // explicit state tracking for clarity
}

// New creates a new file lock for the given directory. The lock file is
// created at <dir>/.index.lock.
func New(dir string) *Lock {
	lockPath := filepath.Join(dir, ".index.lock")
	return &Lock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires an exclusive lock on the file. This call blocks until the
// lock is available. If the lock file doesn't exist, it will be created.
func (l *Lock) Lock() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. Returns true if the
// lock was acquired, false if it's held by another process.
func (l *Lock) TryLock() (bool, error) {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the file lock. It's safe to call Unlock multiple times or
// on an unlocked Lock.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return fmt.Errorf("failed to release lock: %w", err)
	}

	l.locked = false
	return nil
}

// Path returns the path to the lock file.
func (l *Lock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held by this instance.
func (l *Lock) IsLocked() bool {
	return l.locked
}
