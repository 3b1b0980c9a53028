// Package profile describes how telemetry channels map onto the virtual
// device: which axis each analog channel drives, the channel's source range,
// the device axis range and the button layout.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/sbcpad/sink"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid profile")

// DefaultAxisMax is the upper axis bound of the reference device.
const DefaultAxisMax = 0x8000

// MaxAxisMax is the largest axis_max a 16-bit axis report can carry.
const MaxAxisMax = 0xFFFF

// Channel names published in raw_state analogs.
const (
	AimX        = "aim_x"
	AimY        = "aim_y"
	Rotation    = "rotation"
	SightX      = "sight_x"
	SightY      = "sight_y"
	LeftPedal   = "left_pedal"
	MiddlePedal = "middle_pedal"
	RightPedal  = "right_pedal"
)

// ChannelNames lists every analog channel in application order.
var ChannelNames = []string{AimX, AimY, Rotation, SightX, SightY, LeftPedal, MiddlePedal, RightPedal}

// Channel maps one analog telemetry channel to a device axis.
type Channel struct {
	Name   string    `json:"name" yaml:"name" toml:"name"`
	Axis   sink.Axis `json:"axis" yaml:"axis" toml:"axis"`
	Min    int       `json:"min" yaml:"min" toml:"min"`
	Max    int       `json:"max" yaml:"max" toml:"max"`
	Invert bool      `json:"invert,omitempty" yaml:"invert,omitempty" toml:"invert"`
}

// Profile is the complete device mapping.
type Profile struct {
	// ButtonCount fixes the passthrough button count. Zero derives it from
	// each message's buttons array.
	ButtonCount int `json:"button_count" yaml:"button_count" toml:"button_count"`
	// AxisMax is the inclusive upper bound of every device axis.
	AxisMax int `json:"axis_max" yaml:"axis_max" toml:"axis_max"`
	// PreserveStale disables releasing buttons left over from a longer
	// previous message.
	PreserveStale bool      `json:"preserve_stale" yaml:"preserve_stale" toml:"preserve_stale"`
	Channels      []Channel `json:"channels" yaml:"channels" toml:"channels"`
}

// Default returns the reference mapping.
func Default() Profile {
	return Profile{
		AxisMax: DefaultAxisMax,
		Channels: []Channel{
			{Name: AimX, Axis: sink.AxisRX, Min: -512, Max: 511},
			{Name: AimY, Axis: sink.AxisRY, Min: -512, Max: 511},
			{Name: Rotation, Axis: sink.AxisRZ, Min: -512, Max: 511},
			{Name: SightX, Axis: sink.AxisX, Min: -512, Max: 511},
			{Name: SightY, Axis: sink.AxisY, Min: -512, Max: 511},
			{Name: LeftPedal, Axis: sink.AxisZ, Min: 0, Max: 1023},
			{Name: MiddlePedal, Axis: sink.AxisSL0, Min: 0, Max: 1023},
			{Name: RightPedal, Axis: sink.AxisSL1, Min: 0, Max: 1023},
		},
	}
}

// Load reads a profile file over the defaults. The format is chosen by
// extension: .yaml/.yml, .toml or .json. Channels listed in the file replace
// the default entry of the same name; unlisted channels keep their defaults.
func Load(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var file Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &file)
	case ".toml":
		err = toml.Unmarshal(b, &file)
	case ".json":
		err = json.Unmarshal(b, &file)
	default:
		return Profile{}, fmt.Errorf("%w: unsupported profile format %q", ErrInvalid, ext)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	p := merge(Default(), file)
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func merge(base, over Profile) Profile {
	out := base
	out.ButtonCount = over.ButtonCount
	out.PreserveStale = over.PreserveStale
	if over.AxisMax != 0 {
		out.AxisMax = over.AxisMax
	}
	out.Channels = append([]Channel(nil), base.Channels...)
	for _, oc := range over.Channels {
		replaced := false
		for i := range out.Channels {
			if out.Channels[i].Name == oc.Name {
				out.Channels[i] = oc
				replaced = true
				break
			}
		}
		if !replaced {
			out.Channels = append(out.Channels, oc)
		}
	}
	return out
}

// Validate checks the profile for internal consistency.
func (p Profile) Validate() error {
	if p.AxisMax <= 0 || p.AxisMax > MaxAxisMax {
		return fmt.Errorf("%w: axis_max must be in [1, %d], got %d", ErrInvalid, MaxAxisMax, p.AxisMax)
	}
	if p.ButtonCount < 0 {
		return fmt.Errorf("%w: button_count must not be negative, got %d", ErrInvalid, p.ButtonCount)
	}
	names := map[string]bool{}
	axes := map[sink.Axis]string{}
	for _, c := range p.Channels {
		if !knownChannel(c.Name) {
			return fmt.Errorf("%w: unknown channel %q", ErrInvalid, c.Name)
		}
		if names[c.Name] {
			return fmt.Errorf("%w: channel %q mapped twice", ErrInvalid, c.Name)
		}
		names[c.Name] = true
		if int(c.Axis) >= sink.AxisCount {
			return fmt.Errorf("%w: channel %q: unknown axis %d", ErrInvalid, c.Name, c.Axis)
		}
		if other, ok := axes[c.Axis]; ok {
			return fmt.Errorf("%w: axis %s driven by both %q and %q", ErrInvalid, c.Axis, other, c.Name)
		}
		axes[c.Axis] = c.Name
	}
	return nil
}

// Channel looks up a channel by name.
func (p Profile) Channel(name string) (Channel, bool) {
	for _, c := range p.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return Channel{}, false
}

func knownChannel(name string) bool {
	for _, n := range ChannelNames {
		if n == name {
			return true
		}
	}
	return false
}
