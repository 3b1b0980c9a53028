// Package joystick describes the virtual joystick presented to the host: a
// HID report descriptor with a configurable number of buttons and eight
// absolute 16-bit axes, and the matching input report encoding.
package joystick

import (
	"encoding/binary"
	"fmt"

	"github.com/Alia5/sbcpad/sink"
	"github.com/Alia5/sbcpad/usb/hid"
)

// MaxButtons is the largest button count a descriptor may declare.
const MaxButtons = 128

// axisUsages follows sink.Axis order.
var axisUsages = [sink.AxisCount]uint16{
	hid.UsageX, hid.UsageY, hid.UsageZ,
	hid.UsageRx, hid.UsageRy, hid.UsageRz,
	hid.UsageSlider, hid.UsageSlider,
}

// Descriptor returns the HID report descriptor for a joystick with the given
// number of buttons and axis range [0, axisMax].
func Descriptor(buttons, axisMax int) ([]byte, error) {
	if buttons < 1 || buttons > MaxButtons {
		return nil, fmt.Errorf("joystick: button count %d out of range [1, %d]", buttons, MaxButtons)
	}
	if axisMax < 1 || axisMax > 0xFFFF {
		return nil, fmt.Errorf("joystick: axis max %d out of range [1, 65535]", axisMax)
	}

	items := []hid.Item{
		hid.UsagePage{Page: hid.UsagePageButton},
		hid.UsageRange{Min: 1, Max: uint16(buttons)},
		hid.LogicalRange{Min: 0, Max: 1},
		hid.ReportSize{Bits: 1},
		hid.ReportCount{Count: uint16(buttons)},
		hid.Input{Flags: hid.MainData | hid.MainVar | hid.MainAbs},
	}
	if pad := buttonBytes(buttons)*8 - buttons; pad > 0 {
		items = append(items,
			hid.ReportCount{Count: uint16(pad)},
			hid.Input{Flags: hid.MainConst},
		)
	}

	items = append(items, hid.UsagePage{Page: hid.UsagePageGenericDesktop})
	for _, u := range axisUsages {
		items = append(items, hid.Usage{Usage: u})
	}
	items = append(items,
		hid.LogicalRange{Min: 0, Max: int32(axisMax)},
		hid.ReportSize{Bits: 16},
		hid.ReportCount{Count: sink.AxisCount},
		hid.Input{Flags: hid.MainData | hid.MainVar | hid.MainAbs},
	)

	return hid.Report{Items: []hid.Item{
		hid.UsagePage{Page: hid.UsagePageGenericDesktop},
		hid.Usage{Usage: hid.UsageJoystick},
		hid.Collection{Kind: hid.CollectionApplication, Items: items},
	}}.Bytes()
}

// State is the joystick input report content.
//
// Wire format: ceil(buttons/8) bytes of button bits (button 1 is bit 0 of
// byte 0), then eight little-endian uint16 axes in sink.Axis order.
type State struct {
	buttons []bool
	Axes    [sink.AxisCount]uint16
}

// NewState creates a zeroed state for a joystick with the given button count.
func NewState(buttons int) *State {
	return &State{buttons: make([]bool, buttons)}
}

// Buttons returns the button capacity.
func (s *State) Buttons() int { return len(s.buttons) }

// SetButton sets 1-based button n. It reports false when n is out of range.
func (s *State) SetButton(n uint, pressed bool) bool {
	if n == 0 || n > uint(len(s.buttons)) {
		return false
	}
	s.buttons[n-1] = pressed
	return true
}

// Button returns the state of 1-based button n.
func (s *State) Button(n uint) bool {
	if n == 0 || n > uint(len(s.buttons)) {
		return false
	}
	return s.buttons[n-1]
}

// ReportSize is the encoded report length in bytes.
func (s *State) ReportSize() int {
	return buttonBytes(len(s.buttons)) + 2*sink.AxisCount
}

// MarshalBinary encodes the input report.
func (s *State) MarshalBinary() ([]byte, error) {
	b := make([]byte, s.ReportSize())
	for i, p := range s.buttons {
		if p {
			b[i/8] |= 1 << (i % 8)
		}
	}
	o := buttonBytes(len(s.buttons))
	for _, v := range s.Axes {
		binary.LittleEndian.PutUint16(b[o:o+2], v)
		o += 2
	}
	return b, nil
}

func buttonBytes(buttons int) int {
	return (buttons + 7) / 8
}
