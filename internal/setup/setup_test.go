package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	cfg, err := Config("", golog.DiscardLogger)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if *cfg != *simulation.DefaultConfig() {
		t.Errorf("Config = %+v; want defaults", cfg)
	}
}

func TestConfig_EnvOverridesFlag(t *testing.T) {
	dir := t.TempDir()
	fromFlag := filepath.Join(dir, "flag.json")
	fromEnv := filepath.Join(dir, "env.json")
	if err := os.WriteFile(fromFlag, []byte(`{"ballCount": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fromEnv, []byte(`{"ballCount": 2}`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigEnv, "")
	cfg, err := Config(fromFlag, golog.DiscardLogger)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.BallCount != 1 {
		t.Errorf("BallCount = %d; want 1 from the flag", cfg.BallCount)
	}

	t.Setenv(ConfigEnv, fromEnv)
	cfg, err = Config(fromFlag, golog.DiscardLogger)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.BallCount != 2 {
		t.Errorf("BallCount = %d; want 2 from %s", cfg.BallCount, ConfigEnv)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := LoadEnv(golog.DiscardLogger); err != nil {
		t.Fatalf("LoadEnv without .env: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ARENA_TEST_VALUE=42\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARENA_TEST_VALUE", "")
	os.Unsetenv("ARENA_TEST_VALUE")
	if err := LoadEnv(golog.DiscardLogger); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("ARENA_TEST_VALUE"); got != "42" {
		t.Errorf("ARENA_TEST_VALUE = %q; want 42", got)
	}
}

func TestTelemetry_Disabled(t *testing.T) {
	sink, closeFn, err := Telemetry(context.Background(), simulation.DefaultConfig(), nil, golog.DiscardLogger)
	if err != nil {
		t.Fatalf("Telemetry: %v", err)
	}
	if sink != nil {
		t.Error("sink != nil with an empty telemetry path")
	}
	closeFn()
}
