// Package config loads the buzzer daemon configuration.
//
// The file lives at os.UserConfigDir()/buzzer/config.yaml
// ($XDG_CONFIG_HOME/buzzer/config.yaml on Linux) unless a path is given.
// A missing file means all defaults:
//
//	beat: 120
//	capacity: 1024
//	debounce_ms: 20
//	control:
//	  network: unix
//	  address: /tmp/buzzer.sock
//	actuator:
//	  kind: log          # log | pwm | mcu | speaker
//	triggers:
//	  gpio: {enabled: false, pin: GPIO22}
//	  midi: {enabled: false}
//	  mcu:  {enabled: false}
//	log:
//	  level: info
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/chase3718/buzzer/internal/note"
)

const (
	appDir   = "buzzer"
	fileName = "config.yaml"
)

// Actuator kinds.
const (
	KindLog     = "log"
	KindPWM     = "pwm"
	KindMCU     = "mcu"
	KindSpeaker = "speaker"
)

type Config struct {
	Beat       int `yaml:"beat"`
	Capacity   int `yaml:"capacity"`
	DebounceMS int `yaml:"debounce_ms"`

	Control  Control  `yaml:"control"`
	Actuator Actuator `yaml:"actuator"`
	Triggers Triggers `yaml:"triggers"`
	Log      Log      `yaml:"log"`
}

// Control is where the control server listens and clients dial.
type Control struct {
	Network string `yaml:"network"`
	Address string `yaml:"address"`
}

type Actuator struct {
	Kind string `yaml:"kind"`

	// pwm
	Pin  string `yaml:"pin"`
	Duty int    `yaml:"duty"`

	// mcu
	Serial Serial `yaml:"serial"`

	// speaker
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

// Serial is the MCU link. It is shared by the mcu actuator and trigger.
type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type Triggers struct {
	GPIO GPIOTrigger `yaml:"gpio"`
	MIDI MIDITrigger `yaml:"midi"`
	MCU  MCUTrigger  `yaml:"mcu"`
}

type GPIOTrigger struct {
	Enabled bool   `yaml:"enabled"`
	Pin     string `yaml:"pin"`
}

type MIDITrigger struct {
	Enabled   bool     `yaml:"enabled"`
	Preferred []string `yaml:"preferred"`
	Excluded  []string `yaml:"excluded"`
}

type MCUTrigger struct {
	Enabled bool `yaml:"enabled"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Beat:       120,
		Capacity:   1024,
		DebounceMS: 20,
		Control: Control{
			Network: "unix",
			Address: filepath.Join(os.TempDir(), "buzzer.sock"),
		},
		Actuator: Actuator{
			Kind:       KindLog,
			Pin:        "GPIO12",
			Duty:       70,
			Serial:     Serial{Device: "/dev/ttyACM0", Baud: 500000},
			SampleRate: 44100,
			Volume:     0.3,
		},
		Triggers: Triggers{
			GPIO: GPIOTrigger{Pin: "GPIO22"},
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns the config file path under os.UserConfigDir().
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads path over the defaults and validates the result. An empty
// path means DefaultPath. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Beat <= 0 || c.Beat > note.MaxBeat:
		return fmt.Errorf("beat must be 1-%d, got %d", note.MaxBeat, c.Beat)
	case c.Capacity < 2:
		return fmt.Errorf("capacity must be at least 2, got %d", c.Capacity)
	case c.DebounceMS < 0:
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMS)
	case c.Control.Network == "" || c.Control.Address == "":
		return fmt.Errorf("control network and address are required")
	case c.Actuator.Duty < 0 || c.Actuator.Duty > 100:
		return fmt.Errorf("actuator duty must be 0-100, got %d", c.Actuator.Duty)
	}
	switch c.Actuator.Kind {
	case KindLog, KindPWM, KindMCU, KindSpeaker:
	default:
		return fmt.Errorf("unknown actuator kind %q", c.Actuator.Kind)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Debounce is DebounceMS as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Level parses the log level name.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// UsesSerial reports whether any component needs the MCU link.
func (c *Config) UsesSerial() bool {
	return c.Actuator.Kind == KindMCU || c.Triggers.MCU.Enabled
}

// Save writes cfg as YAML to path, creating the directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
