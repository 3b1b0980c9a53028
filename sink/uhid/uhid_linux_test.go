//go:build linux

package uhid

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sbcpad/device/joystick"
	"github.com/Alia5/sbcpad/sink"
)

// fileConfig points the sink at a regular file so written events can be inspected.
func fileConfig(t *testing.T) (Config, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "uhid")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	cfg := DefaultConfig(26)
	cfg.Path = path
	cfg.LockDir = dir
	return cfg, path
}

func TestCreateEvent(t *testing.T) {
	desc, err := joystick.Descriptor(26, 0x8000)
	require.NoError(t, err)

	ev := createEvent("pad 1", "sbcpad/1", desc, 0x1209, 0x5bc0)
	require.Len(t, ev, eventSize)
	assert.Equal(t, 4376, eventSize)
	assert.Equal(t, uint32(evCreate2), binary.NativeEndian.Uint32(ev[0:4]))
	assert.Equal(t, "pad 1", string(ev[4:9]))
	assert.Zero(t, ev[9])
	assert.Equal(t, "sbcpad/1", string(ev[132:140]))
	assert.Equal(t, uint16(len(desc)), binary.NativeEndian.Uint16(ev[260:262]))
	assert.Equal(t, uint16(busUSB), binary.NativeEndian.Uint16(ev[262:264]))
	assert.Equal(t, uint32(0x1209), binary.NativeEndian.Uint32(ev[264:268]))
	assert.Equal(t, uint32(0x5bc0), binary.NativeEndian.Uint32(ev[268:272]))
	assert.Equal(t, desc, ev[280:280+len(desc)])
}

func TestInputEvent(t *testing.T) {
	ev := inputEvent([]byte{0x05, 0x00, 0x10, 0x40})
	assert.Equal(t, uint32(evInput2), binary.NativeEndian.Uint32(ev[0:4]))
	assert.Equal(t, uint16(4), binary.NativeEndian.Uint16(ev[4:6]))
	assert.Equal(t, []byte{0x05, 0x00, 0x10, 0x40}, ev[6:10])
}

func TestSink_Lifecycle(t *testing.T) {
	cfg, path := fileConfig(t)
	s, err := New(cfg, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Flush(1), sink.ErrNotAcquired)
	require.NoError(t, s.Acquire(1))
	assert.ErrorIs(t, s.Acquire(1), sink.ErrUnavailable)

	require.NoError(t, s.SetButton(1, 1, true))
	require.NoError(t, s.SetButton(1, 99, true))
	require.NoError(t, s.SetAxis(1, sink.AxisRX, 0x9000))
	require.NoError(t, s.SetAxis(1, sink.AxisRY, -40))
	require.NoError(t, s.Flush(1))
	require.NoError(t, s.Release(1))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, written, eventSize+4+2+maxDataSize+4)

	input := written[eventSize:]
	assert.Equal(t, uint32(evInput2), binary.NativeEndian.Uint32(input[0:4]))
	reportLen := int(binary.NativeEndian.Uint16(input[4:6]))
	require.Equal(t, 4+16, reportLen)
	report := input[6 : 6+reportLen]
	assert.Equal(t, byte(0x01), report[0])
	assert.Equal(t, uint16(0x8000), binary.NativeEndian.Uint16(report[4+2*int(sink.AxisRX):]))
	assert.Zero(t, binary.NativeEndian.Uint16(report[4+2*int(sink.AxisRY):]))

	destroy := written[len(written)-4:]
	assert.Equal(t, uint32(evDestroy), binary.NativeEndian.Uint32(destroy))
}

func TestSink_ExclusiveAcrossOwners(t *testing.T) {
	cfg, _ := fileConfig(t)
	a, err := New(cfg, nil)
	require.NoError(t, err)
	b, err := New(cfg, nil)
	require.NoError(t, err)

	require.NoError(t, a.Acquire(7))
	assert.ErrorIs(t, b.Acquire(7), sink.ErrUnavailable)
	require.NoError(t, b.Acquire(8))

	require.NoError(t, a.Release(7))
	require.NoError(t, b.Acquire(7))
	require.NoError(t, b.Release(7))
	require.NoError(t, b.Release(8))
}

func TestSink_MissingDevice(t *testing.T) {
	cfg := DefaultConfig(26)
	cfg.Path = filepath.Join(t.TempDir(), "does-not-exist")
	cfg.LockDir = t.TempDir()
	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Acquire(1), sink.ErrUnavailable)

	// the lock must not leak after a failed acquire
	require.NoError(t, os.WriteFile(cfg.Path, nil, 0o600))
	require.NoError(t, s.Acquire(1))
	require.NoError(t, s.Release(1))
}
