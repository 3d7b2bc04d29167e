//go:build linux || darwin

// Package platform wires OS-level hardening that complements the
// in-process secret zeroing in internal/secret: disabling core dumps so a
// crash never writes decrypted passwords to disk.
package platform

import "golang.org/x/sys/unix"

// DisableCoreDumps sets RLIMIT_CORE to zero for the current process, so an
// unexpected crash cannot dump the master key or unlocked password buffers
// to disk. Call it once at process start, before opening any database.
func DisableCoreDumps() error {
	rlim := unix.Rlimit{Cur: 0, Max: 0}
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
