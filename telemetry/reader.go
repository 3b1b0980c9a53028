// Package telemetry reads the controller host's newline-delimited JSON
// event stream and decodes its events.
package telemetry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"strings"
	"sync"
	"time"
)

// Config controls low-level transport behavior.
type Config struct {
	// DialTimeout bounds the initial connect. Reads never time out.
	DialTimeout time.Duration
}

func defaultConfig() Config {
	return Config{DialTimeout: 5 * time.Second}
}

// Reader yields the lines of a persistent event stream.
type Reader struct {
	closer    io.Closer
	r         *bufio.Reader
	consumed  bool
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the publisher at addr (host:port).
func Dial(ctx context.Context, addr string, cfg *Config) (*Reader, error) {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: c.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	r := NewReader(conn)
	r.closer = conn
	return r, nil
}

// NewReader wraps an already connected stream. If src is an io.Closer it is
// closed by Close.
func NewReader(src io.Reader) *Reader {
	r := &Reader{r: bufio.NewReader(src)}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Lines returns the line sequence. Each yielded line has its trailing
// "\n" or "\r\n" removed. The sequence ends at EOF or after yielding a single
// non-nil read error. A trailing line without newline is still yielded.
//
// The stream is consumed as it is read: Lines may be ranged over once, later
// calls yield nothing.
func (r *Reader) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if r.consumed {
			return
		}
		r.consumed = true
		for {
			line, err := r.r.ReadString('\n')
			if len(line) > 0 {
				if !yield(strings.TrimRight(line, "\r\n"), nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					yield("", fmt.Errorf("read: %w", err))
				}
				return
			}
		}
	}
}

// Close closes the underlying stream, unblocking a pending read. It is safe
// to call more than once.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		if r.closer != nil {
			r.closeErr = r.closer.Close()
		}
	})
	return r.closeErr
}
