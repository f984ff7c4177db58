package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/arena"
)

//go:embed config.schema.json
var configSchema string

const embeddedSchemaURL = "config.schema.json"

// Config holds every tunable of the engine. It is read once at start-up;
// a running World never looks at it again except through its own copy.
type Config struct {
	// Arena Dimensions
	ArenaWidth  int `json:"arenaWidth" jsonschema:"minimum=1,description=Arena width in world units"`
	ArenaHeight int `json:"arenaHeight" jsonschema:"minimum=1,description=Arena height in world units"`

	// Population
	BallCount     int `json:"ballCount" jsonschema:"minimum=0,description=Bodies created by the binaries at start"`
	SpawnAttempts int `json:"spawnAttempts" jsonschema:"minimum=1,description=Placement tries before accepting an overlapping spawn"`

	// Bodies
	BallRadius      float64 `json:"ballRadius" jsonschema:"minimum=0.1"`
	BallMass        float64 `json:"ballMass" jsonschema:"minimum=0.001"`
	MaxInitialSpeed float64 `json:"maxInitialSpeed" jsonschema:"minimum=0,description=Upper bound of each initial velocity component (units per step)"`

	// Scheduling
	TickIntervalMs int     `json:"tickIntervalMs" jsonschema:"minimum=1,maximum=100,description=Delay between two steps of one body"`
	TimeStep       float64 `json:"timeStep" jsonschema:"minimum=0.001,description=Velocity multiplier applied per step"`
	GracePeriodMs  int     `json:"gracePeriodMs" jsonschema:"minimum=0,description=How long Dispose waits for body loops"`

	// Collisions. SkipSeparating is on by default, which departs from the
	// bare rule of updating every overlapping pair: a pair that already
	// moves apart keeps its velocities. Set it to false for the bare rule.
	SkipSeparating bool `json:"skipSeparating" jsonschema:"description=Ignore overlapping pairs that already move apart (default true; false applies the bare elastic rule to every overlap)"`

	// Seed for the random source, 0 picks a random seed.
	Seed uint64 `json:"seed"`

	// Telemetry: empty disables it, "auto" writes to the temp directory.
	TelemetryPath   string `json:"telemetryPath"`
	TelemetryBuffer int    `json:"telemetryBuffer" jsonschema:"minimum=1,description=Records in flight before new ones are dropped"`

	// Presentation
	ScaleFactor float64 `json:"scaleFactor" jsonschema:"minimum=0.1,maximum=10"`
}

func DefaultConfig() *Config {
	return &Config{
		ArenaWidth:      400,
		ArenaHeight:     420,
		BallCount:       10,
		SpawnAttempts:   100,
		BallRadius:      10,
		BallMass:        1,
		MaxInitialSpeed: 3,
		TickIntervalMs:  10,
		TimeStep:        1,
		GracePeriodMs:   500,
		SkipSeparating:  true,
		TelemetryBuffer: 1024,
		ScaleFactor:     1.5,
	}
}

// Width and Height make a Config usable as an arena.Dimensions provider.
func (c *Config) Width() int  { return c.ArenaWidth }
func (c *Config) Height() int { return c.ArenaHeight }

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMs) * time.Millisecond
}

// Validate checks the invariants the schema cannot express.
func (c *Config) Validate() error {
	a, err := arena.New(c.ArenaWidth, c.ArenaHeight)
	if err != nil {
		return err
	}
	var errs []error
	if !finitePositive(c.BallRadius) || !a.Fits(c.BallRadius) {
		errs = append(errs, fmt.Errorf("ballRadius %v does not fit a %dx%d arena", c.BallRadius, c.ArenaWidth, c.ArenaHeight))
	}
	if !finitePositive(c.BallMass) {
		errs = append(errs, fmt.Errorf("ballMass must be positive, got %v", c.BallMass))
	}
	if c.MaxInitialSpeed < 0 || math.IsInf(c.MaxInitialSpeed, 0) || math.IsNaN(c.MaxInitialSpeed) {
		errs = append(errs, fmt.Errorf("maxInitialSpeed must be a finite non-negative number, got %v", c.MaxInitialSpeed))
	}
	if c.TickIntervalMs < 1 || c.TickIntervalMs > 100 {
		errs = append(errs, fmt.Errorf("tickIntervalMs must be within [1, 100], got %d", c.TickIntervalMs))
	}
	if !finitePositive(c.TimeStep) {
		errs = append(errs, fmt.Errorf("timeStep must be positive, got %v", c.TimeStep))
	}
	if c.GracePeriodMs < 0 {
		errs = append(errs, fmt.Errorf("gracePeriodMs must not be negative, got %d", c.GracePeriodMs))
	}
	if c.SpawnAttempts < 1 {
		errs = append(errs, fmt.Errorf("spawnAttempts must be at least 1, got %d", c.SpawnAttempts))
	}
	if c.BallCount < 0 {
		errs = append(errs, fmt.Errorf("ballCount: %w", ErrNegativeCount))
	}
	return errors.Join(errs...)
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// LoadConfig loads configuration from a JSON file and validates it against
// the schema. An empty schemaFile selects the schema embedded in the binary.
// Fields missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal on top of the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile == "" {
		return jsonschema.CompileString(embeddedSchemaURL, configSchema)
	}
	return jsonschema.Compile(schemaFile)
}
