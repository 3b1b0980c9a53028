// Package configpaths resolves where sbcpad looks for its configuration file.
package configpaths

import (
	"os"
	"path/filepath"
)

const (
	appDir   = "sbcpad"
	baseName = "sbcpad"
)

// DefaultConfigDir returns the per-user sbcpad configuration directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// ConfigCandidatePaths returns config file candidates grouped by format, in
// priority order. An explicit user path (from --config or SBCPAD_CONFIG) is
// placed only in the group matching its extension; an unknown extension is
// treated as JSON.
func ConfigCandidatePaths(user string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if user != "" {
		switch filepath.Ext(user) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, user)
		case ".toml":
			tomlPaths = append(tomlPaths, user)
		default:
			jsonPaths = append(jsonPaths, user)
		}
	}

	dirs := []string{"."}
	if dir, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		base := filepath.Join(dir, baseName)
		jsonPaths = append(jsonPaths, base+".json")
		yamlPaths = append(yamlPaths, base+".yaml", base+".yml")
		tomlPaths = append(tomlPaths, base+".toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}
