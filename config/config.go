package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-drift/sequencer"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// OutputConfig defines the MIDI output
type OutputConfig struct {
	PortName string  `json:"portName,omitempty"` // empty: first available port
	Kit      string  `json:"kit,omitempty"`      // drum machine note layout
	BPM      float64 `json:"bpm,omitempty"`      // tempo written to recordings
}

// VoiceConfig switches one voice on or off and places it on a channel
type VoiceConfig struct {
	Enabled  bool    `json:"enabled"`
	Channel  int     `json:"channel"`
	Velocity float64 `json:"velocity,omitempty"` // velocity scale, 0 means 1
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // .gpl file, empty for the built-in one
}

// Config is the main configuration structure
type Config struct {
	Output   OutputConfig           `json:"output,omitempty"`
	Seed     int64                  `json:"seed,omitempty"`     // 0 picks one at startup
	TimeUnit float64                `json:"timeUnit,omitempty"` // seconds
	Voices   map[string]VoiceConfig `json:"voices,omitempty"`
	UI       UIConfig               `json:"ui,omitempty"`
	Status   string                 `json:"status,omitempty"` // listen address, empty disables
	Debug    string                 `json:"debug,omitempty"`  // log file, empty disables
}

// voiceDefaults is the piece's own channel layout
func voiceDefaults() map[string]VoiceConfig {
	voices := make(map[string]VoiceConfig)
	for name, v := range sequencer.DefaultVoiceOptions() {
		voices[name] = VoiceConfig{Enabled: v.Enabled, Channel: v.Channel, Velocity: v.Velocity}
	}
	return voices
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Kit: sequencer.DefaultKit,
			BPM: 120,
		},
		TimeUnit: 0.5,
		Voices:   voiceDefaults(),
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drift"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path over the defaults. A missing file is
// not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// a voice entry only overrides the fields it names
	var partial struct {
		Voices map[string]json.RawMessage `json:"voices"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defaults := voiceDefaults()
	for name, raw := range partial.Voices {
		v, ok := defaults[name]
		if !ok {
			continue // left for Validate to reject
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%s: voice %q: %w", path, name, err)
		}
		cfg.Voices[name] = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges
func (c *Config) Validate() error {
	if c.TimeUnit < 0 {
		return fmt.Errorf("%w: timeUnit %v is negative", ErrInvalid, c.TimeUnit)
	}
	if c.Output.BPM < 0 {
		return fmt.Errorf("%w: bpm %v is negative", ErrInvalid, c.Output.BPM)
	}
	defaults := voiceDefaults()
	for name, v := range c.Voices {
		if _, ok := defaults[name]; !ok {
			return fmt.Errorf("%w: unknown voice %q", ErrInvalid, name)
		}
		if v.Channel < 1 || v.Channel > 16 {
			return fmt.Errorf("%w: voice %q channel %d not in 1-16", ErrInvalid, name, v.Channel)
		}
		if v.Velocity < 0 {
			return fmt.Errorf("%w: voice %q velocity %v is negative", ErrInvalid, name, v.Velocity)
		}
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Voice returns the settings of a voice, falling back to the defaults
func (c *Config) Voice(name string) VoiceConfig {
	v, ok := c.Voices[name]
	if !ok {
		v = voiceDefaults()[name]
	}
	if v.Velocity == 0 {
		v.Velocity = 1
	}
	return v
}
