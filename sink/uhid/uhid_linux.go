//go:build linux

package uhid

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/Alia5/sbcpad/device/joystick"
	"github.com/Alia5/sbcpad/sink"
	"github.com/Alia5/sbcpad/translate"
)

// Event types and sizes from linux/uhid.h.
const (
	evDestroy = 1
	evCreate2 = 11
	evInput2  = 12

	busUSB = 0x03

	nameSize    = 128
	physSize    = 64
	uniqSize    = 64
	maxDescSize = 4096
	maxDataSize = 4096

	// type + largest union member (uhid_create2_req), packed
	eventSize = 4 + nameSize + physSize + uniqSize + 2 + 2 + 4*4 + maxDescSize
)

type device struct {
	fd    int
	lock  *os.File
	state *joystick.State
}

// Sink is a uhid backed output sink.
type Sink struct {
	cfg     Config
	logger  *slog.Logger
	devices map[uint]*device
}

// New creates a uhid sink.
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{cfg: cfg, logger: logger, devices: map[uint]*device{}}, nil
}

func (s *Sink) Acquire(id uint) error {
	if _, ok := s.devices[id]; ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrUnavailable)
	}

	desc, err := joystick.Descriptor(s.cfg.Buttons, s.cfg.AxisMax)
	if err != nil {
		return err
	}

	lock, err := lockDevice(s.cfg.LockDir, id)
	if err != nil {
		return err
	}

	fd, err := unix.Open(s.cfg.Path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		unlock(lock)
		return fmt.Errorf("open %s: %w: %w", s.cfg.Path, sink.ErrUnavailable, err)
	}

	name := fmt.Sprintf("%s %d", s.cfg.Name, id)
	if err := writeEvent(fd, createEvent(name, fmt.Sprintf("sbcpad/%d", id), desc, s.cfg.Vendor, s.cfg.Product)); err != nil {
		_ = unix.Close(fd)
		unlock(lock)
		return fmt.Errorf("create device %d: %w: %w", id, sink.ErrUnavailable, err)
	}

	s.devices[id] = &device{fd: fd, lock: lock, state: joystick.NewState(s.cfg.Buttons)}
	s.logger.Info("uhid device created", "device", id, "name", name, "buttons", s.cfg.Buttons)
	return nil
}

func (s *Sink) SetButton(id uint, button uint, pressed bool) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	if !d.state.SetButton(button, pressed) && pressed {
		s.logger.Debug("button beyond device capacity", "device", id, "button", button)
	}
	return nil
}

func (s *Sink) SetAxis(id uint, axis sink.Axis, value int) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	if int(axis) >= sink.AxisCount {
		return fmt.Errorf("device %d: unknown axis %d", id, axis)
	}
	d.state.Axes[axis] = uint16(translate.Clamp(value, 0, s.cfg.AxisMax))
	return nil
}

// Flush sends the current report to the kernel.
func (s *Sink) Flush(id uint) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	report, err := d.state.MarshalBinary()
	if err != nil {
		return err
	}
	if err := writeEvent(d.fd, inputEvent(report)); err != nil {
		return fmt.Errorf("input report: %w", err)
	}
	return nil
}

func (s *Sink) Release(id uint) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	delete(s.devices, id)

	err := writeEvent(d.fd, destroyEvent())
	if cerr := unix.Close(d.fd); err == nil {
		err = cerr
	}
	unlock(d.lock)
	s.logger.Info("uhid device destroyed", "device", id)
	if err != nil {
		return fmt.Errorf("destroy device %d: %w", id, err)
	}
	return nil
}

func lockDevice(dir string, id uint) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lock device %d: %w", id, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("sbcpad-%d.lock", id))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock device %d: %w", id, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("device %d owned by another process: %w", id, sink.ErrUnavailable)
		}
		return nil, fmt.Errorf("lock device %d: %w", id, err)
	}
	return f, nil
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}

func writeEvent(fd int, ev []byte) error {
	n, err := unix.Write(fd, ev)
	if err != nil {
		return err
	}
	if n != len(ev) {
		return fmt.Errorf("short uhid write: %d of %d bytes", n, len(ev))
	}
	return nil
}

func createEvent(name, phys string, desc []byte, vendor, product uint32) []byte {
	b := make([]byte, eventSize)
	binary.NativeEndian.PutUint32(b[0:4], evCreate2)
	o := 4
	copy(b[o:o+nameSize-1], name)
	o += nameSize
	copy(b[o:o+physSize-1], phys)
	o += physSize
	o += uniqSize
	binary.NativeEndian.PutUint16(b[o:o+2], uint16(len(desc)))
	binary.NativeEndian.PutUint16(b[o+2:o+4], busUSB)
	binary.NativeEndian.PutUint32(b[o+4:o+8], vendor)
	binary.NativeEndian.PutUint32(b[o+8:o+12], product)
	// version and country stay zero
	o += 2 + 2 + 4*4
	copy(b[o:o+maxDescSize], desc)
	return b
}

func inputEvent(report []byte) []byte {
	b := make([]byte, 4+2+maxDataSize)
	binary.NativeEndian.PutUint32(b[0:4], evInput2)
	binary.NativeEndian.PutUint16(b[4:6], uint16(len(report)))
	copy(b[6:], report)
	return b
}

func destroyEvent() []byte {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, evDestroy)
	return b
}
