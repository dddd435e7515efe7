// Package runlock keeps two runs from deduplicating the same directory at
// the same time.
//
// Locks live in the user data directory, one file per scan root, named by a
// name-based UUID of the root's absolute path. Nothing is ever written inside
// the scan root itself.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	errs "pixdedup/pkg/errors"
)

// ErrHeld is returned when another process holds the lock for a root
var ErrHeld = errors.New("another run is already deduplicating this directory")

// Lock is an acquired run lock
type Lock struct {
	root  string
	path  string
	flock *flock.Flock
}

// Acquire takes the lock for root without blocking. An empty dataDir means
// DataDirectory().
func Acquire(dataDir, root string) (*Lock, error) {
	path, err := Path(dataDir, root)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeLock, root, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeLock, path, fmt.Errorf("failed to create lock directory: %w", err))
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errs.New(errs.ErrorTypeLock, path, fmt.Errorf("acquire lock: %w", err))
	}
	if !ok {
		return nil, errs.New(errs.ErrorTypeLock, root, ErrHeld)
	}

	abs, _ := filepath.Abs(root)
	return &Lock{root: abs, path: path, flock: fl}, nil
}

// Path returns the lock file used for root
func Path(dataDir, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve scan root: %w", err)
	}

	if dataDir == "" {
		dataDir, err = DataDirectory()
		if err != nil {
			return "", fmt.Errorf("failed to get data directory: %w", err)
		}
	}

	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(dataDir, "locks", id.String()+".lock"), nil
}

// Root returns the absolute scan root the lock guards
func (l *Lock) Root() string {
	return l.root
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return errs.New(errs.ErrorTypeLock, l.path, fmt.Errorf("release lock: %w", err))
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.New(errs.ErrorTypeLock, l.path, err)
	}
	return nil
}

// DataDirectory returns the per-user data directory for the current OS
func DataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "pixdedup")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "pixdedup")
	default:
		// XDG on linux and the BSDs
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "pixdedup")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "pixdedup")
		}
	}

	return dataDir, nil
}
