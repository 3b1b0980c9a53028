//go:build !windows

package configpaths

import (
	"os"
	"path/filepath"
)

// LockDir returns the directory holding per-device lock files.
// Root uses /run/sbcpad, users their XDG runtime dir, falling back to the
// temp dir.
func LockDir() string {
	if os.Geteuid() == 0 {
		return filepath.Join(string(os.PathSeparator), "run", appDir)
	}
	if rt := os.Getenv("XDG_RUNTIME_DIR"); rt != "" {
		return filepath.Join(rt, appDir)
	}
	return os.TempDir()
}
