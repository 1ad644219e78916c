package gamecache

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock guards the cache directory against concurrent runs. Two pipelines
// writing the same catalog snapshot would interleave badly even with WAL.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes an exclusive advisory lock next to the cache file.
// It fails immediately when another run holds the lock.
func AcquireLock(cachePath string) (*Lock, error) {
	lockPath := filepath.Join(filepath.Dir(cachePath), ".gametracker.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("cache lock %s held by another run", lockPath)
	}
	return &Lock{lock: lock}, nil
}

// Release drops the advisory lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
