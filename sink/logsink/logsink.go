// Package logsink implements a sink that only logs. It is useful to watch a
// telemetry stream on machines without a virtual device driver.
package logsink

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/sbcpad/device/joystick"
	"github.com/Alia5/sbcpad/sink"
	"github.com/Alia5/sbcpad/translate"
)

// Sink logs every call and, on Flush, a one-line summary of the device state.
type Sink struct {
	logger  *slog.Logger
	devices map[uint]*joystick.State
	buttons int
}

// New creates a logging sink tracking up to buttons buttons per device.
func New(logger *slog.Logger, buttons int) *Sink {
	return &Sink{logger: logger, devices: map[uint]*joystick.State{}, buttons: buttons}
}

func (s *Sink) Acquire(id uint) error {
	if _, ok := s.devices[id]; ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrUnavailable)
	}
	s.devices[id] = joystick.NewState(s.buttons)
	s.logger.Info("log sink acquired", "device", id, "buttons", s.buttons)
	return nil
}

func (s *Sink) SetButton(id uint, button uint, pressed bool) error {
	st, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	if st.Button(button) != pressed {
		s.logger.Debug("button", "device", id, "button", button, "pressed", pressed)
	}
	if !st.SetButton(button, pressed) {
		s.logger.Debug("button out of range", "device", id, "button", button)
	}
	return nil
}

func (s *Sink) SetAxis(id uint, axis sink.Axis, value int) error {
	st, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	if int(axis) >= sink.AxisCount {
		return fmt.Errorf("device %d: unknown axis %d", id, axis)
	}
	st.Axes[axis] = uint16(translate.Clamp(value, 0, 0xFFFF))
	return nil
}

func (s *Sink) Flush(id uint) error {
	st, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	s.logger.Debug("state", "device", id, "pressed", pressedList(st), "axes", st.Axes)
	return nil
}

func (s *Sink) Release(id uint) error {
	if _, ok := s.devices[id]; !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	delete(s.devices, id)
	s.logger.Info("log sink released", "device", id)
	return nil
}

func pressedList(st *joystick.State) string {
	var sb strings.Builder
	for b := uint(1); b <= uint(st.Buttons()); b++ {
		if !st.Button(b) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", b)
	}
	return sb.String()
}
