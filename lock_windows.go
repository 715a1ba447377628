//go:build windows

// LockFileEx/UnlockFileEx implementation for Windows.
package kiln

import (
	"os"
	"syscall"
	"unsafe"
)

var (
	modkernel32      = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = modkernel32.NewProc("LockFileEx")
	procUnlockFileEx = modkernel32.NewProc("UnlockFileEx")
)

const (
	lockfileExclusiveLock   = 0x00000002
	lockfileFailImmediately = 0x00000001

	errorLockViolation syscall.Errno = 33
)

func flockExclusive(f *os.File) error {
	h := syscall.Handle(f.Fd())
	var overlapped syscall.Overlapped

	// Fail-immediately so a held lock surfaces as ErrLocked rather
	// than blocking Open forever.
	r1, _, err := procLockFileEx.Call(
		uintptr(h),
		uintptr(lockfileExclusiveLock|lockfileFailImmediately),
		0,
		0xFFFFFFFF,
		0xFFFFFFFF,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	if r1 == 0 {
		if err == errorLockViolation {
			return ErrLocked
		}
		return err
	}
	return nil
}

func flockRelease(f *os.File) error {
	h := syscall.Handle(f.Fd())
	var overlapped syscall.Overlapped

	r1, _, err := procUnlockFileEx.Call(
		uintptr(h),
		0,
		0xFFFFFFFF,
		0xFFFFFFFF,
		uintptr(unsafe.Pointer(&overlapped)),
	)
	if r1 == 0 {
		return err
	}
	return nil
}
