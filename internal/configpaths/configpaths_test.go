package configpaths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePaths(t *testing.T) {
	tests := []struct {
		name  string
		user  string
		group string
	}{
		{name: "json", user: "/etc/custom.json", group: "json"},
		{name: "yaml", user: "/etc/custom.yaml", group: "yaml"},
		{name: "yml", user: "custom.yml", group: "yaml"},
		{name: "toml", user: "custom.toml", group: "toml"},
		{name: "no extension", user: "custom", group: "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.user)
			groups := map[string][]string{"json": j, "yaml": y, "toml": tm}
			for name, paths := range groups {
				require.NotEmpty(t, paths)
				if name == tt.group {
					assert.Equal(t, tt.user, paths[0])
				} else {
					assert.NotContains(t, paths, tt.user)
				}
			}
		})
	}
}

func TestConfigCandidatePaths_Defaults(t *testing.T) {
	j, y, tm := ConfigCandidatePaths("")
	assert.Equal(t, filepath.Join(".", "sbcpad.json"), j[0])
	assert.Equal(t, []string{filepath.Join(".", "sbcpad.yaml"), filepath.Join(".", "sbcpad.yml")}, y[:2])
	assert.Equal(t, filepath.Join(".", "sbcpad.toml"), tm[0])
}

func TestLockDir(t *testing.T) {
	assert.NotEmpty(t, LockDir())
}
