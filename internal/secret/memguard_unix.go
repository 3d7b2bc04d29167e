//go:build linux || darwin

package secret

import "golang.org/x/sys/unix"

// LockMemory pins b's pages so they are never swapped to disk, reducing the
// chance a secret buffer survives in a swap file or core dump.
func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// UnlockMemory reverses LockMemory. Call it only after the buffer has
// already been zeroed.
func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}
