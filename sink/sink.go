// Package sink defines the output device capability set driven by the
// translation engine.
//
// A Sink owns the device resources. The engine only ever calls Acquire once,
// the Set methods in message order, and Release once on shutdown.
package sink

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned by Acquire when the device does not exist or
	// is exclusively owned elsewhere.
	ErrUnavailable = errors.New("device unavailable")
	// ErrNotAcquired is returned by state calls on a device that was not acquired.
	ErrNotAcquired = errors.New("device not acquired")
	// ErrUnsupported is returned by sinks that cannot run on this platform.
	ErrUnsupported = errors.New("sink not supported on this platform")
)

// Sink is the output device capability set.
//
// Button indices are 1-based. Handling of indices beyond the device's button
// capacity is sink-defined.
type Sink interface {
	Acquire(id uint) error
	SetButton(id uint, button uint, pressed bool) error
	SetAxis(id uint, axis Axis, value int) error
	Release(id uint) error
}

// Flusher is implemented by sinks that batch Set calls and push them to the
// device in one report. The engine calls Flush after every translated message.
type Flusher interface {
	Flush(id uint) error
}

// Axis identifies one of the eight analog output channels.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisRX
	AxisRY
	AxisRZ
	AxisSL0
	AxisSL1

	AxisCount = 8
)

var axisNames = [AxisCount]string{"x", "y", "z", "rx", "ry", "rz", "sl0", "sl1"}

func (a Axis) String() string {
	if int(a) < len(axisNames) {
		return axisNames[a]
	}
	return fmt.Sprintf("axis(%d)", uint8(a))
}

// ParseAxis maps an axis name such as "rx" or "SL0" to its identifier.
func ParseAxis(s string) (Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range axisNames {
		if n == s {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// MarshalText implements encoding.TextMarshaler so axes read naturally in
// profiles and MQTT payloads.
func (a Axis) MarshalText() ([]byte, error) {
	if int(a) >= AxisCount {
		return nil, fmt.Errorf("unknown axis %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
