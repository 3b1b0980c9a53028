//go:build !linux

package uhid

import (
	"log/slog"

	"github.com/Alia5/sbcpad/sink"
)

// Sink is unavailable outside Linux.
type Sink struct{}

// New always fails with sink.ErrUnsupported.
func New(Config, *slog.Logger) (*Sink, error) {
	return nil, sink.ErrUnsupported
}

func (*Sink) Acquire(uint) error { return sink.ErrUnsupported }

func (*Sink) SetButton(uint, uint, bool) error { return sink.ErrUnsupported }

func (*Sink) SetAxis(uint, sink.Axis, int) error { return sink.ErrUnsupported }

func (*Sink) Flush(uint) error { return sink.ErrUnsupported }

func (*Sink) Release(uint) error { return sink.ErrUnsupported }
