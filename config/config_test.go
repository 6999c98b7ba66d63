package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-drift/sequencer"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TimeUnit != 0.5 || cfg.Output.Kit != "gm" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"seed": 7, "voices": {"kick": {"enabled": false, "channel": 11}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 7 || cfg.TimeUnit != 0.5 {
		t.Errorf("seed=%d unit=%v", cfg.Seed, cfg.TimeUnit)
	}
	kick := cfg.Voice("kick")
	if kick.Enabled || kick.Channel != 11 || kick.Velocity != 1 {
		t.Errorf("kick = %+v", kick)
	}
	if snare := cfg.Voice("snare"); !snare.Enabled || snare.Channel != 10 {
		t.Errorf("snare = %+v", snare)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative unit", func(c *Config) { c.TimeUnit = -1 }},
		{"negative bpm", func(c *Config) { c.Output.BPM = -5 }},
		{"unknown voice", func(c *Config) { c.Voices["cowbell"] = VoiceConfig{Channel: 1} }},
		{"channel zero", func(c *Config) { c.Voices["drone"] = VoiceConfig{Channel: 0} }},
		{"channel 17", func(c *Config) { c.Voices["drone"] = VoiceConfig{Channel: 17} }},
		{"negative velocity", func(c *Config) { c.Voices["drone"] = VoiceConfig{Channel: 2, Velocity: -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"voices": {"melody": {"enabled": true, "channel": 99}}}`), 0644)

	if _, err := LoadFrom(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}

	os.WriteFile(path, []byte(`{not json`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("malformed file: want error")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Output.PortName = "IAC Driver Bus 1"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 1234 || got.Output.PortName != "IAC Driver Bus 1" {
		t.Errorf("loaded %+v", got)
	}
}

func TestEveryVoiceHasADefault(t *testing.T) {
	for _, name := range sequencer.VoiceNames() {
		if v := DefaultConfig().Voice(name); v.Channel == 0 || !v.Enabled {
			t.Errorf("%s default = %+v", name, v)
		}
	}
}

func TestLoadFromPartialVoice(t *testing.T) {
	tests := []struct {
		name string
		data string
		want VoiceConfig
	}{
		{"only enabled", `{"voices": {"melody": {"enabled": false}}}`, VoiceConfig{Enabled: false, Channel: 3, Velocity: 1}},
		{"only channel", `{"voices": {"melody": {"channel": 5}}}`, VoiceConfig{Enabled: true, Channel: 5, Velocity: 1}},
		{"only velocity", `{"voices": {"melody": {"velocity": 0.5}}}`, VoiceConfig{Enabled: true, Channel: 3, Velocity: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				t.Fatal(err)
			}
			if got := cfg.Voice("melody"); got != tt.want {
				t.Errorf("melody = %+v, want %+v", got, tt.want)
			}
			if drone := cfg.Voice("drone"); drone.Channel != 2 || !drone.Enabled {
				t.Errorf("drone = %+v", drone)
			}
		})
	}
}
