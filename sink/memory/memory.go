// Package memory provides an in-memory simulation sink. It records every
// call in order and keeps the resulting device state, which makes it the
// reference sink for tests and dry runs.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Alia5/sbcpad/sink"
)

// Call is one recorded sink invocation.
type Call struct {
	Op      string // acquire, button, axis, flush, release
	Device  uint
	Button  uint
	Pressed bool
	Axis    sink.Axis
	Value   int
}

func (c Call) String() string {
	switch c.Op {
	case "button":
		return fmt.Sprintf("button %d=%t", c.Button, c.Pressed)
	case "axis":
		return fmt.Sprintf("axis %s=%d", c.Axis, c.Value)
	}
	return c.Op
}

// Sink is a simulated output device bank.
type Sink struct {
	mu       sync.Mutex
	capacity uint
	owned    map[uint]bool
	buttons  map[uint]map[uint]bool
	axes     map[uint]map[sink.Axis]int
	calls    []Call
	dropped  int
}

// New creates a sink whose devices have the given button capacity.
// A capacity of 0 accepts any button index.
func New(capacity uint) *Sink {
	return &Sink{
		capacity: capacity,
		owned:    map[uint]bool{},
		buttons:  map[uint]map[uint]bool{},
		axes:     map[uint]map[sink.Axis]int{},
	}
}

func (s *Sink) Acquire(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owned[id] {
		return fmt.Errorf("device %d: %w", id, sink.ErrUnavailable)
	}
	s.owned[id] = true
	s.buttons[id] = map[uint]bool{}
	s.axes[id] = map[sink.Axis]int{}
	s.calls = append(s.calls, Call{Op: "acquire", Device: id})
	return nil
}

func (s *Sink) SetButton(id uint, button uint, pressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.owned[id] {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	s.calls = append(s.calls, Call{Op: "button", Device: id, Button: button, Pressed: pressed})
	if button == 0 || (s.capacity > 0 && button > s.capacity) {
		s.dropped++
		return nil
	}
	s.buttons[id][button] = pressed
	return nil
}

func (s *Sink) SetAxis(id uint, axis sink.Axis, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.owned[id] {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	s.calls = append(s.calls, Call{Op: "axis", Device: id, Axis: axis, Value: value})
	s.axes[id][axis] = value
	return nil
}

func (s *Sink) Flush(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.owned[id] {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	s.calls = append(s.calls, Call{Op: "flush", Device: id})
	return nil
}

func (s *Sink) Release(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.owned[id] {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	delete(s.owned, id)
	s.calls = append(s.calls, Call{Op: "release", Device: id})
	return nil
}

// Button reports the last state set for a 1-based button index.
func (s *Sink) Button(id uint, button uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttons[id][button]
}

// Pressed returns the ascending 1-based indices of all asserted buttons.
func (s *Sink) Pressed(id uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uint
	for b, p := range s.buttons[id] {
		if p {
			out = append(out, b)
		}
	}
	slices.Sort(out)
	return out
}

// Axis returns the last value set on an axis and whether it was ever set.
func (s *Sink) Axis(id uint, axis sink.Axis) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.axes[id][axis]
	return v, ok
}

// Calls returns a copy of the recorded call log.
func (s *Sink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Dropped counts button calls outside the device capacity.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Acquired reports whether the device is currently owned.
func (s *Sink) Acquired(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owned[id]
}
