// Package setup holds the start-up steps shared by the binaries.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/internal/telemetry"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

// ConfigEnv overrides the -config flag when set.
const ConfigEnv = "ARENA_CONFIG"

// SchemaEnv points to an external schema; the embedded one is used otherwise.
const SchemaEnv = "ARENA_SCHEMA"

// LoadEnv reads an optional .env file from the working directory.
func LoadEnv(logger golog.Logger) error {
	err := godotenv.Load()
	switch {
	case err == nil:
		logger.Infof("loaded environment from .env")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failed to load .env: %w", err)
	}
}

// Config resolves the configuration file (ARENA_CONFIG first, then path) and
// loads it. With neither set, DefaultConfig is returned.
func Config(path string, logger golog.Logger) (*simulation.Config, error) {
	if env := os.Getenv(ConfigEnv); env != "" {
		path = env
	}
	if path == "" {
		logger.Infof("no config file given, using defaults")
		return simulation.DefaultConfig(), nil
	}
	cfg, err := simulation.LoadConfig(path, os.Getenv(SchemaEnv))
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded config from %s", path)
	return cfg, nil
}

const closeTimeout = 5 * time.Second

// Telemetry wires the trajectory sink when cfg asks for one. The sink
// outlives ctx cancellation so that shutdown can still flush it. The
// returned close function flushes the sink and closes the file; it is never
// nil.
func Telemetry(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem, logger golog.Logger) (*telemetry.Sink, func(), error) {
	noop := func() {}
	if cfg.TelemetryPath == "" {
		return nil, noop, nil
	}
	f, path, err := telemetry.OpenFile(cfg.TelemetryPath)
	if err != nil {
		return nil, noop, err
	}
	sink, err := telemetry.NewSink(context.WithoutCancel(ctx), system, f, cfg.TelemetryBuffer, logger)
	if err != nil {
		f.Close()
		return nil, noop, err
	}
	logger.Infof("recording trajectories to %s", path)
	return sink, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := sink.Close(closeCtx); err != nil {
			logger.Warnf("telemetry close: %v", err)
		}
		if err := f.Close(); err != nil {
			logger.Warnf("telemetry file close: %v", err)
		}
	}, nil
}
