// Package config defines the CLI structure and configuration for sbcpad.
package config

import (
	"github.com/Alia5/sbcpad/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"SBCPAD_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"SBCPAD_LOG_FILE"`
	RawFile string `help:"Raw telemetry line log file path (default: none)" env:"SBCPAD_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log    `embed:"" prefix:"log."`
	Config string `help:"Config file (.json, .yaml or .toml)" type:"path" env:"SBCPAD_CONFIG"`

	Run cmd.Run `cmd:"" default:"withargs" help:"Translate a telemetry stream into virtual joystick input (default)"`
}
