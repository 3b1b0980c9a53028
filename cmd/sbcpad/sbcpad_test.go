package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv("SBCPAD_CONFIG", "")
	assert.Equal(t, "a.yaml", findUserConfig([]string{"host", "--config=a.yaml"}))
	assert.Equal(t, "b.toml", findUserConfig([]string{"--config", "b.toml", "host"}))
	assert.Empty(t, findUserConfig([]string{"--config"}))

	t.Setenv("SBCPAD_CONFIG", "env.json")
	assert.Equal(t, "env.json", findUserConfig(nil))
}

func TestDescription(t *testing.T) {
	assert.Contains(t, Description(), Version)
	assert.Contains(t, Description(), Commit)
}
