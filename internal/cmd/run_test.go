package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/sbcpad/internal/log"
	"github.com/Alia5/sbcpad/profile"
	"github.com/Alia5/sbcpad/sink"
)

// publish starts a loopback publisher that sends payload to the first client
// and then closes the connection.
func publish(t *testing.T, payload string) (host string, port uint16, accepted <-chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	done := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		close(done)
		_, _ = conn.Write([]byte(payload))
		_ = conn.Close()
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	n, err := strconv.Atoi(p)
	require.NoError(t, err)
	return h, uint16(n), done
}

func testLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRun_LogSink(t *testing.T) {
	host, port, accepted := publish(t, `{"type":"hello"}
{"type":"raw_state","buttons":[1,0,1],"gear":2,"tuner":3,"analogs":{"aim_x":0}}
garbage
`)
	var logs bytes.Buffer
	r := &Run{Host: host, Port: port, Device: 3, Sink: SinkLog, DialTimeout: time.Second}

	require.NoError(t, r.run(t.Context(), testLogger(&logs), log.NewRaw(nil)))
	<-accepted

	out := logs.String()
	assert.Contains(t, out, "connected to telemetry publisher")
	assert.Contains(t, out, `msg="invalid json"`)
	assert.Contains(t, out, "pressed=1,3,7,14")
	assert.Contains(t, out, "log sink released")
}

func TestRun_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	var logs bytes.Buffer
	r := &Run{Host: "127.0.0.1", Port: uint16(addr.Port), Device: 1, Sink: SinkLog, DialTimeout: time.Second}
	err = r.run(t.Context(), testLogger(&logs), log.NewRaw(nil))
	require.Error(t, err)
	assert.ErrorContains(t, err, "dial")
	assert.Contains(t, logs.String(), "log sink released")
}

func TestRun_DeviceUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	addr := ln.Addr().(*net.TCPAddr)

	r := &Run{
		Host:     "127.0.0.1",
		Port:     uint16(addr.Port),
		Device:   1,
		Sink:     SinkUHID,
		UHIDPath: filepath.Join(t.TempDir(), "missing-uhid"),
	}
	err = r.run(t.Context(), testLogger(&bytes.Buffer{}), log.NewRaw(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sink.ErrUnavailable) || errors.Is(err, sink.ErrUnsupported))

	// No connection may be attempted when the device cannot be acquired.
	require.NoError(t, ln.(*net.TCPListener).SetDeadline(time.Now().Add(100*time.Millisecond)))
	_, err = ln.Accept()
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_Cancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// hold the connection open until the client goes away
		_, _ = conn.Read(make([]byte, 1))
		_ = conn.Close()
	}()
	addr := ln.Addr().(*net.TCPAddr)

	ctx, cancel := context.WithCancel(t.Context())
	logs := &syncBuffer{}
	r := &Run{Host: "127.0.0.1", Port: uint16(addr.Port), Device: 1, Sink: SinkLog, DialTimeout: time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- r.run(ctx, testLogger(logs), log.NewRaw(nil)) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "connected to telemetry publisher")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
	assert.Contains(t, logs.String(), "log sink released")
}

func TestRun_CancelledBeforeConnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	addr := ln.Addr().(*net.TCPAddr)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var logs bytes.Buffer
	r := &Run{Host: "127.0.0.1", Port: uint16(addr.Port), Device: 1, Sink: SinkLog, DialTimeout: time.Second}
	require.NoError(t, r.run(ctx, testLogger(&logs), log.NewRaw(nil)))
	assert.Contains(t, logs.String(), "shutting down before connecting")
	assert.Contains(t, logs.String(), "log sink released")
}

func TestRun_InvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("axis_max: -1\n"), 0o644))

	r := &Run{Host: "127.0.0.1", Port: 1, Sink: SinkLog, Profile: path}
	err := r.run(t.Context(), testLogger(&bytes.Buffer{}), log.NewRaw(nil))
	require.ErrorIs(t, err, profile.ErrInvalid)
}
