package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args []string, opts ...kong.Option) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, append([]kong.Option{kong.Name("sbcpad"), kong.Exit(func(int) { t.Fatal("unexpected exit") })}, opts...)...)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLI_Defaults(t *testing.T) {
	cli, ctx := parse(t, nil)
	assert.Equal(t, "run", ctx.Command())
	assert.Equal(t, "127.0.0.1", cli.Run.Host)
	assert.Equal(t, uint16(8765), cli.Run.Port)
	assert.Equal(t, uint(1), cli.Run.Device)
	assert.Equal(t, "uhid", cli.Run.Sink)
	assert.Equal(t, 5*time.Second, cli.Run.DialTimeout)
	assert.Equal(t, "info", cli.Log.Level)
	assert.Empty(t, cli.Run.Metrics.Addr)
}

func TestCLI_Positionals(t *testing.T) {
	cli, _ := parse(t, []string{"pad.local", "9000", "2", "--sink=log", "--metrics.addr=:9100", "--mqtt.qos=1"})
	assert.Equal(t, "pad.local", cli.Run.Host)
	assert.Equal(t, uint16(9000), cli.Run.Port)
	assert.Equal(t, uint(2), cli.Run.Device)
	assert.Equal(t, "log", cli.Run.Sink)
	assert.Equal(t, ":9100", cli.Run.Metrics.Addr)
	assert.Equal(t, byte(1), cli.Run.MQTT.QoS)
}

func TestCLI_Env(t *testing.T) {
	t.Setenv("SBCPAD_SINK", "mqtt")
	t.Setenv("SBCPAD_LOG_LEVEL", "debug")
	cli, _ := parse(t, []string{"run"})
	assert.Equal(t, "mqtt", cli.Run.Sink)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestCLI_JSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sbcpad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log":{"level":"warn"},"sink":"log"}`), 0o644))

	cli, _ := parse(t, []string{"--sink=mqtt"}, kong.Configuration(kong.JSON, path))
	assert.Equal(t, "warn", cli.Log.Level)
	assert.Equal(t, "mqtt", cli.Run.Sink, "flags override config values")
}
