//go:build windows

package configpaths

import "os"

// LockDir returns the directory holding per-device lock files.
func LockDir() string {
	return os.TempDir()
}
