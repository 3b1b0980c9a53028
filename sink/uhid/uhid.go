// Package uhid drives a virtual HID joystick through the Linux user-space HID
// driver (/dev/uhid). Each acquired device id becomes one HID device; the
// device is exclusively owned through an flock'ed lock file so two processes
// cannot drive the same id.
package uhid

import (
	"os"

	"github.com/Alia5/sbcpad/device/joystick"
	"github.com/Alia5/sbcpad/profile"
	"github.com/Alia5/sbcpad/translate"
)

// Config describes the virtual devices created by the sink.
type Config struct {
	// Path is the uhid character device.
	Path string
	// LockDir holds the per-id lock files.
	LockDir string
	Name    string
	Buttons int
	AxisMax int
	Vendor  uint32
	Product uint32
}

// DefaultConfig returns a configuration for a joystick with the given button
// capacity.
func DefaultConfig(buttons int) Config {
	return Config{
		Path:    "/dev/uhid",
		LockDir: os.TempDir(),
		Name:    "sbcpad virtual joystick",
		Buttons: translate.Clamp(buttons, 1, joystick.MaxButtons),
		AxisMax: profile.DefaultAxisMax,
		Vendor:  0x1209,
		Product: 0x5bc0,
	}
}
