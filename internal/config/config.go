// Package config loads the YAML settings file that tunes the simulation and
// the optional surfaces around it (window, audio, spectator server, history
// database). Every field has a default; a file only overrides what it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Nightwood/internal/sim"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of the settings file.
type Config struct {
	Sim      sim.Tuning     `yaml:"sim"`
	Window   WindowConfig   `yaml:"window"`
	Audio    AudioConfig    `yaml:"audio"`
	Spectate SpectateConfig `yaml:"spectate"`
	Store    StoreConfig    `yaml:"store"`
}

// WindowConfig sizes the ebiten window.
type WindowConfig struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Title        string `yaml:"title"`
	TPS          int    `yaml:"tps"`
	CaptureMouse bool   `yaml:"capture_mouse"`
}

// AudioConfig controls the synthesized sound.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"` // 0 silent, 1 full
}

// SpectateConfig controls the websocket spectator stream.
type SpectateConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Addr          string `yaml:"addr"`
	MaxConnsPerIP int    `yaml:"max_conns_per_ip"`
	MaxConns      int    `yaml:"max_conns"`
}

// StoreConfig points at the session history database. An empty path
// disables history.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Sim: sim.DefaultTuning(),
		Window: WindowConfig{
			Width:        1280,
			Height:       720,
			Title:        "Nightwood",
			TPS:          60,
			CaptureMouse: true,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.6,
		},
		Spectate: SpectateConfig{
			Addr:          "127.0.0.1:8090",
			MaxConnsPerIP: 5,
			MaxConns:      100,
		},
	}
}

// Load reads path over the defaults. A missing path is an error; callers
// that treat the file as optional should check os.IsNotExist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Sim.Validate(); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalidConfig)
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("window tps %d: %w", c.Window.TPS, ErrInvalidConfig)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio volume %v outside [0, 1]: %w", c.Audio.Volume, ErrInvalidConfig)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate %d: %w", c.Audio.SampleRate, ErrInvalidConfig)
	}
	if c.Spectate.Enabled {
		if c.Spectate.Addr == "" {
			return fmt.Errorf("spectate enabled without an addr: %w", ErrInvalidConfig)
		}
		if c.Spectate.MaxConnsPerIP <= 0 || c.Spectate.MaxConns <= 0 {
			return fmt.Errorf("spectate connection limits must be positive: %w", ErrInvalidConfig)
		}
	}
	return nil
}

// Marshal renders c as YAML, for writing an example settings file.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
