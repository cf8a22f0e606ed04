//go:build !unix

package refcache

import "os"

// Advisory locking is not available on this platform; single-writer use is
// assumed and the lock degrades to a no-op.
func lockFile(_ *os.File) error {
	return nil
}

func unlockFile(_ *os.File) error {
	return nil
}
