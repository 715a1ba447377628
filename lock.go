// OS-level directory locking.
//
// A data directory is owned by exactly one running store. Open takes a
// non-blocking exclusive lock on a LOCK file inside the directory; a
// second process opening the same directory gets ErrLocked instead of
// two writers silently corrupting each other's generation numbering.
// The lock is advisory and released by Close (or by the OS when the
// process dies).
package kiln

import (
	"os"
	"path/filepath"
)

// lockFileName is the lock file inside the data directory. It holds no
// data; only its flock state matters.
const lockFileName = "LOCK"

// dirLock holds the open lock file for the lifetime of the store.
type dirLock struct {
	f *os.File
}

// acquireDirLock creates (if needed) and exclusively locks the LOCK
// file in dir. Returns ErrLocked if another process holds it.
func acquireDirLock(dir string) (*dirLock, error) {
	f, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, err
	}
	return &dirLock{f: f}, nil
}

// release unlocks and closes the lock file. The file itself stays on
// disk; a stale LOCK file is harmless and relocked on next open.
func (l *dirLock) release() error {
	if l == nil || l.f == nil {
		return nil
	}
	unlockErr := flockRelease(l.f)
	closeErr := l.f.Close()
	l.f = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
