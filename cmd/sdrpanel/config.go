package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the sdrpanel daemon.
//
// Keep defaults and validation centralized so the rest of the code can assume
// a well-formed config.
type Config struct {
	// Touch controller and gesture thresholds
	Touch TouchFileConfig `yaml:"touch"`

	// On-screen button geometry
	Layout Layout `yaml:"layout"`

	// Radio CAT link
	Radio RadioConfig `yaml:"radio"`

	// IPC configuration (panel-ctl and scripts)
	IPC IPCConfig `yaml:"ipc"`

	// State websocket server
	StateWS StateWSConfig `yaml:"state_ws"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TouchFileConfig is the user-facing touch configuration as represented in YAML.
type TouchFileConfig struct {
	Device string `yaml:"device"` // evdev node of the touch controller; empty disables touch
	PollHz int    `yaml:"poll_hz"`

	ButtonTouchPx    int `yaml:"button_touch_px"`
	GestureTimeoutMS int `yaml:"gesture_timeout_ms"`

	// Controller axes are scaled to this resolution.
	ScreenWidth  int  `yaml:"screen_width"`
	ScreenHeight int  `yaml:"screen_height"`
	SwapXY       bool `yaml:"swap_xy,omitempty"`
	InvertX      bool `yaml:"invert_x,omitempty"`
	InvertY      bool `yaml:"invert_y,omitempty"`
}

type RadioConfig struct {
	SerialPort    string `yaml:"serial_port"` // empty runs without a radio (log only)
	Baud          int    `yaml:"baud"`
	TimeoutMS     int    `yaml:"timeout_ms"`
	InitialFreqHz int64  `yaml:"initial_freq_hz"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type StateWSConfig struct {
	Port int `yaml:"port"` // 0 disables the server
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go defaults and current CLI defaults.
func DefaultConfig() Config {
	return Config{
		Touch: TouchFileConfig{
			Device:           "/dev/input/event0",
			PollHz:           defaultPollHz,
			ButtonTouchPx:    defaultButtonTouchPx,
			GestureTimeoutMS: defaultGestureTimeoutMS,
			ScreenWidth:      defaultScreenWidth,
			ScreenHeight:     defaultScreenHeight,
		},
		Layout: Layout{
			LeftFrameLeft:   defaultLeftFrameLeft,
			LeftFrameRight:  defaultLeftFrameRight,
			RightFrameLeft:  defaultRightFrameLeft,
			RightFrameRight: defaultRightFrameRight,
			TopFrame:        defaultTopFrame,
			BottomFrame:     defaultBottomFrame,
			ButtonsPerStack: defaultButtonsPerStack,
		},
		Radio: RadioConfig{
			SerialPort:    "",
			Baud:          defaultSerialBaud,
			TimeoutMS:     defaultSerialTimeout,
			InitialFreqHz: defaultInitialFreqHz,
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/sdrpanel.sock",
		},
		StateWS: StateWSConfig{
			Port: 8081,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file on top of DefaultConfig.
//
// Notes:
//   - Unknown fields are rejected (helps catch typos) via KnownFields(true).
//   - Only one YAML document is allowed.
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Ensure there's no trailing garbage (only whitespace/comments are allowed after the document).
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies overrides from flags on top of a loaded config.
//
// Flags should pass pointers; each override is only applied if non-nil.
// main.go decides what flags exist.
type FlagOverrides struct {
	TouchDevice      *string
	PollHz           *int
	ButtonTouchPx    *int
	GestureTimeoutMS *int

	SerialPort    *string
	Baud          *int
	InitialFreqHz *int64

	IPCSocketPath *string
	StateWSPort   *int

	LogLevel *string
}

// Apply merges the overrides into cfg. If an override pointer is nil, it is ignored.
// If the pointer is non-nil, the value is applied (even if it is a “zero value”).
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}

	if o.TouchDevice != nil {
		cfg.Touch.Device = *o.TouchDevice
	}
	if o.PollHz != nil {
		cfg.Touch.PollHz = *o.PollHz
	}
	if o.ButtonTouchPx != nil {
		cfg.Touch.ButtonTouchPx = *o.ButtonTouchPx
	}
	if o.GestureTimeoutMS != nil {
		cfg.Touch.GestureTimeoutMS = *o.GestureTimeoutMS
	}

	if o.SerialPort != nil {
		cfg.Radio.SerialPort = *o.SerialPort
	}
	if o.Baud != nil {
		cfg.Radio.Baud = *o.Baud
	}
	if o.InitialFreqHz != nil {
		cfg.Radio.InitialFreqHz = *o.InitialFreqHz
	}

	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.StateWSPort != nil {
		cfg.StateWS.Port = *o.StateWSPort
	}

	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// This is intended to be called after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	// Touch
	if c.Touch.PollHz <= 0 || c.Touch.PollHz > 1000 {
		return errors.New("touch.poll_hz must be between 1 and 1000")
	}
	if c.Touch.ButtonTouchPx <= 0 {
		return errors.New("touch.button_touch_px must be > 0")
	}
	if c.Touch.GestureTimeoutMS <= 0 {
		return errors.New("touch.gesture_timeout_ms must be > 0")
	}
	if c.Touch.ScreenWidth <= 0 || c.Touch.ScreenHeight <= 0 {
		return errors.New("touch.screen_width and touch.screen_height must be > 0")
	}

	// Layout
	l := c.Layout
	if l.ButtonsPerStack <= 0 {
		return errors.New("layout.buttons_per_stack must be > 0")
	}
	if l.LeftFrameLeft >= l.LeftFrameRight {
		return errors.New("layout.left_frame_left must be < layout.left_frame_right")
	}
	if l.RightFrameLeft >= l.RightFrameRight {
		return errors.New("layout.right_frame_left must be < layout.right_frame_right")
	}
	if l.TopFrame >= l.BottomFrame {
		return errors.New("layout.top_frame must be < layout.bottom_frame")
	}
	if l.ButtonHeight() == 0 {
		return fmt.Errorf("layout: %d buttons do not fit between top_frame and bottom_frame", l.ButtonsPerStack)
	}

	// Radio
	if c.Radio.SerialPort != "" {
		if c.Radio.Baud <= 0 {
			return errors.New("radio.baud must be > 0")
		}
		if c.Radio.TimeoutMS <= 0 {
			return errors.New("radio.timeout_ms must be > 0")
		}
	}
	if c.Radio.InitialFreqHz <= 0 {
		return errors.New("radio.initial_freq_hz must be > 0")
	}

	// State websocket
	if c.StateWS.Port < 0 || c.StateWS.Port > 65535 {
		return errors.New("state_ws.port must be between 0 and 65535")
	}

	// Logging
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}

// ToTouchConfig converts the file config into the gesture engine config.
func (c *Config) ToTouchConfig() TouchConfig {
	return TouchConfig{
		ButtonTouchPx:  c.Touch.ButtonTouchPx,
		GestureTimeout: time.Duration(c.Touch.GestureTimeoutMS) * time.Millisecond,
	}
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
