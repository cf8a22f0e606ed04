//go:build unix

package refcache

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile acquires a blocking exclusive flock on the cache file. The kernel
// releases the lock automatically when the descriptor is closed, including on
// process crash.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
