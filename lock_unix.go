//go:build unix

// flock(2) implementation for Unix platforms.
package kiln

import (
	"errors"
	"os"
	"syscall"
)

func flockExclusive(f *os.File) error {
	// LOCK_NB so a held lock surfaces immediately as ErrLocked rather
	// than blocking Open forever.
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if errors.Is(err, syscall.EWOULDBLOCK) {
		return ErrLocked
	}
	return err
}

func flockRelease(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
