// Package runlock keeps two runs from working on the same tree at once.
package runlock

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock for a root.
var ErrLocked = errors.New("another hevcshrink run is already working on this path")

// Lock is an exclusive advisory lock keyed by the absolute scan root.
type Lock struct {
	path string
	fl   *flock.Flock
}

// PathFor returns the lock file path for root inside dir (os.TempDir when
// empty): <dir>/hevcshrink-<first 12 hex of sha1(abs root)>.lock.
func PathFor(dir, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha1.Sum([]byte(abs))
	return filepath.Join(dir, "hevcshrink-"+hex.EncodeToString(sum[:])[:12]+".lock"), nil
}

// Acquire takes the lock for root without blocking. It returns [ErrLocked]
// if another process holds it.
func Acquire(dir, root string) (*Lock, error) {
	path, err := PathFor(dir, root)
	if err != nil {
		return nil, err
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
