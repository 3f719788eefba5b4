package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aretw0/learn/pkg/core"
)

// DefaultStaleLock is the age after which a lock file is assumed abandoned.
const DefaultStaleLock = 10 * time.Minute

// Locker gives single-writer access to a record across processes through
// O_EXCL lock files named after the identifier.
type Locker struct {
	Dir        string
	StaleAfter time.Duration
}

// NewLocker creates a Locker keeping its files in dir.
func NewLocker(dir string) *Locker {
	return &Locker{Dir: dir, StaleAfter: DefaultStaleLock}
}

// TryLock takes the lock for id without waiting. A held lock yields core.ErrBusy.
func (l *Locker) TryLock(id string) (func(), error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid lock identifier %q", id)
	}
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return nil, &core.StorageError{Op: "mkdir", Path: l.Dir, Err: err}
	}

	lockPath := filepath.Join(l.Dir, id+".lock")
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, &core.StorageError{Op: "lock", Path: lockPath, Err: err}
		}
		if !l.removeStale(lockPath) {
			break
		}
	}
	return nil, fmt.Errorf("record %s is locked: %w", id, core.ErrBusy)
}

func (l *Locker) removeStale(lockPath string) bool {
	if l.StaleAfter <= 0 {
		return false
	}
	info, err := os.Stat(lockPath)
	if err != nil || time.Since(info.ModTime()) < l.StaleAfter {
		return false
	}
	return os.Remove(lockPath) == nil
}
