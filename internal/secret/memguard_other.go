//go:build !linux && !darwin

package secret

// LockMemory is a no-op on platforms without an mlock equivalent wired up.
func LockMemory(b []byte) error { return nil }

// UnlockMemory is a no-op on platforms without an mlock equivalent wired up.
func UnlockMemory(b []byte) error { return nil }
