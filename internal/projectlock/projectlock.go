// Package projectlock keeps two guidregen runs from rewriting the same
// project at once.
package projectlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the project lock.
var ErrLocked = errors.New("project is locked")

// Lock is an exclusive advisory lock on one project.
type Lock struct {
	project string
	path    string
	lock    *flock.Flock
}

// PathFor returns the lock file used for projectRoot inside stateDir. The
// name is derived from the absolute project path so the same project always
// maps to the same file.
func PathFor(stateDir, projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = filepath.Clean(projectRoot)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(stateDir, "locks", "project-"+hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for projectRoot without blocking.
func Acquire(stateDir, projectRoot string) (*Lock, error) {
	path := PathFor(stateDir, projectRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	l := &Lock{project: projectRoot, path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another guidregen run is already modifying %s: %w", projectRoot, ErrLocked)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks the project. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock for %s: %w", l.project, err)
	}
	return nil
}
