package simulation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v; want nil", err)
	}
	if cfg.TickInterval() != 10*time.Millisecond {
		t.Errorf("TickInterval = %v; want 10ms", cfg.TickInterval())
	}
	if cfg.Width() != 400 || cfg.Height() != 420 {
		t.Errorf("size = %dx%d; want 400x420", cfg.Width(), cfg.Height())
	}
	if !cfg.SkipSeparating {
		t.Error("SkipSeparating = false; want true by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.ArenaWidth = 0 }},
		{"radius too large", func(c *Config) { c.BallRadius = 250 }},
		{"zero mass", func(c *Config) { c.BallMass = 0 }},
		{"negative speed", func(c *Config) { c.MaxInitialSpeed = -1 }},
		{"tick too slow", func(c *Config) { c.TickIntervalMs = 250 }},
		{"zero time step", func(c *Config) { c.TimeStep = 0 }},
		{"negative grace", func(c *Config) { c.GracePeriodMs = -5 }},
		{"no spawn attempts", func(c *Config) { c.SpawnAttempts = 0 }},
		{"negative count", func(c *Config) { c.BallCount = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil; want error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"arenaWidth": 800,
		"arenaHeight": 600,
		"ballCount": 25,
		"skipSeparating": false,
		"telemetryPath": "auto"
	}`)

	cfg, err := LoadConfig(path, "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ArenaWidth != 800 || cfg.ArenaHeight != 600 {
		t.Errorf("size = %dx%d; want 800x600", cfg.ArenaWidth, cfg.ArenaHeight)
	}
	if cfg.BallCount != 25 {
		t.Errorf("BallCount = %d; want 25", cfg.BallCount)
	}
	if cfg.SkipSeparating {
		t.Error("SkipSeparating = true; want false from file")
	}
	if cfg.TelemetryPath != "auto" {
		t.Errorf("TelemetryPath = %q; want auto", cfg.TelemetryPath)
	}
	// Missing fields keep their defaults.
	if cfg.BallRadius != 10 || cfg.TickIntervalMs != 10 {
		t.Errorf("defaults lost: radius %v, tick %d", cfg.BallRadius, cfg.TickIntervalMs)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", `{"gravity": 9.81}`},
		{"wrong type", `{"arenaWidth": "wide"}`},
		{"below minimum", `{"ballRadius": 0}`},
		{"not json", `arenaWidth = 3`},
		{"fails Validate", `{"arenaWidth": 10, "arenaHeight": 10}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.json", tt.content)
			if _, err := LoadConfig(path, ""); err == nil {
				t.Error("LoadConfig() error = nil; want error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Error("LoadConfig(missing) error = nil; want error")
	}
}

func TestLoadConfig_ExternalSchema(t *testing.T) {
	schema := writeFile(t, "schema.json", `{
		"$schema": "http://json-schema.org/draft-04/schema#",
		"type": "object",
		"required": ["ballCount"]
	}`)
	ok := writeFile(t, "ok.json", `{"ballCount": 3}`)
	missing := writeFile(t, "missing.json", `{}`)

	cfg, err := LoadConfig(ok, schema)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BallCount != 3 {
		t.Errorf("BallCount = %d; want 3", cfg.BallCount)
	}
	if _, err := LoadConfig(missing, schema); err == nil {
		t.Error("LoadConfig without required field: want error")
	}
}
