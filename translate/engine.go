// Package translate turns raw_state telemetry into virtual device state.
//
// Output button layout for a message with N passthrough buttons (1-based):
//
//	1 .. N           passthrough, mirrors the buttons array
//	N+1 .. N+7       gear group: R2, R1, 1, 2, 3, 4, 5 (at most one asserted)
//	N+8 .. N+23      tuner group: positions 0..15 (at most one asserted)
//
// N comes from the profile when it fixes a button count, otherwise from the
// length of each message's buttons array.
package translate

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/sbcpad/profile"
	"github.com/Alia5/sbcpad/sink"
	"github.com/Alia5/sbcpad/telemetry"
)

// AxisValue is one axis of a computed state. Set is false for channels that
// were missing from the message; such axes are left untouched on the device.
type AxisValue struct {
	Value int
	Set   bool
}

// State is the full device state derived from one message.
type State struct {
	// Buttons[i] is device button i+1.
	Buttons     []bool
	Axes        [sink.AxisCount]AxisValue
	GearOffset  int
	TunerOffset int
}

// Engine translates raw_state events and drives one sink device.
// It is not safe for concurrent use; calls must follow message order.
type Engine struct {
	sink    sink.Sink
	device  uint
	profile profile.Profile
	logger  *slog.Logger

	acquired bool
	// lastSpan is the button span of the previously applied state, used to
	// release buttons a shorter message no longer covers.
	lastSpan int
}

// New creates an engine for device id on s.
func New(s sink.Sink, device uint, p profile.Profile, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{sink: s, device: device, profile: p, logger: logger}
}

// Open acquires the device. It must succeed before Translate is used.
func (e *Engine) Open() error {
	if e.acquired {
		return nil
	}
	if err := e.sink.Acquire(e.device); err != nil {
		return fmt.Errorf("acquire device %d: %w", e.device, err)
	}
	e.acquired = true
	e.logger.Debug("device acquired", "device", e.device)
	return nil
}

// Close releases the device. Only the first call after a successful Open
// reaches the sink.
func (e *Engine) Close() error {
	if !e.acquired {
		return nil
	}
	e.acquired = false
	e.lastSpan = 0
	if err := e.sink.Release(e.device); err != nil {
		return fmt.Errorf("release device %d: %w", e.device, err)
	}
	e.logger.Debug("device released", "device", e.device)
	return nil
}

// Translate computes and applies the state for one raw_state event.
// It returns false without touching the device when the event has no
// array-shaped buttons field. Errors only come from the sink.
func (e *Engine) Translate(rs telemetry.RawState) (bool, error) {
	st, ok := e.Compute(rs)
	if !ok {
		return false, nil
	}
	return true, e.Apply(st)
}

// Compute derives the device state for rs without any I/O.
func (e *Engine) Compute(rs telemetry.RawState) (State, bool) {
	if !rs.HasButtons() {
		return State{}, false
	}

	n := len(rs.Buttons)
	if e.profile.ButtonCount > 0 {
		n = e.profile.ButtonCount
	}

	st := State{
		Buttons:     make([]bool, n+GroupSpan),
		GearOffset:  n,
		TunerOffset: n + GearCount,
	}
	for i, v := range rs.Buttons {
		if i >= n {
			break
		}
		st.Buttons[i] = v != 0
	}
	EncodeExclusive(st.Buttons, st.GearOffset, GearCount, GearIndex(rs.Gear))
	EncodeExclusive(st.Buttons, st.TunerOffset, TunerCount, TunerIndex(rs.Tuner))

	if rs.Analogs != nil {
		for _, ch := range e.profile.Channels {
			raw, ok := rs.Analogs[ch.Name]
			if !ok {
				continue
			}
			v := Scale(raw, ch.Min, ch.Max, 0, e.profile.AxisMax)
			if ch.Invert {
				v = e.profile.AxisMax - v
			}
			st.Axes[ch.Axis] = AxisValue{Value: v, Set: true}
		}
	}
	return st, true
}

// Apply pushes st to the device: buttons in ascending order, releases for
// buttons only a previous longer state covered, set axes in axis order, then
// a flush when the sink batches.
func (e *Engine) Apply(st State) error {
	if !e.acquired {
		return fmt.Errorf("device %d: %w", e.device, sink.ErrNotAcquired)
	}

	for i, pressed := range st.Buttons {
		if err := e.sink.SetButton(e.device, uint(i+1), pressed); err != nil {
			return fmt.Errorf("set button %d: %w", i+1, err)
		}
	}

	span := len(st.Buttons)
	if !e.profile.PreserveStale {
		for b := span + 1; b <= e.lastSpan; b++ {
			if err := e.sink.SetButton(e.device, uint(b), false); err != nil {
				return fmt.Errorf("release stale button %d: %w", b, err)
			}
		}
		e.lastSpan = span
	}

	for a, av := range st.Axes {
		if !av.Set {
			continue
		}
		if err := e.sink.SetAxis(e.device, sink.Axis(a), av.Value); err != nil {
			return fmt.Errorf("set axis %s: %w", sink.Axis(a), err)
		}
	}

	if f, ok := e.sink.(sink.Flusher); ok {
		if err := f.Flush(e.device); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}
