package simulation

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/arena"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

// Recorder receives a copy of every committed move. Implementations must
// return quickly and never block; the engine recovers their panics.
type Recorder interface {
	Record(ev Event)
}

// Option customises a World at construction.
type Option func(*World)

func WithLogger(logger golog.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRandom replaces the random source used to place new bodies.
func WithRandom(rng RandomSource) Option {
	return func(w *World) {
		if rng != nil {
			w.rng = rng
		}
	}
}

// WithRecorder attaches a best-effort telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(w *World) { w.recorder = r }
}

// World owns the roster of bodies and their lifecycle. It is the only handle
// outer layers use to create bodies, enumerate them and tear them down.
type World struct {
	arena         arena.Arena
	radius        float64
	mass          float64
	maxSpeed      float64
	timeStep      float64
	tick          time.Duration
	grace         time.Duration
	spawnAttempts int

	collider *Collider
	feed     *Feed
	logger   golog.Logger
	rng      RandomSource
	recorder Recorder

	// lifecycle serialises Start and Dispose.
	lifecycle sync.Mutex
	disposed  atomic.Bool
	nextID    int

	// rosterMu guards roster. Lock order: collider.mu, then rosterMu, then
	// a single body's mu.
	rosterMu sync.RWMutex
	roster   []*Body

	recordFailures atomic.Uint64
}

// NewWorld builds an empty world. dims is authoritative for the arena size;
// every other setting comes from cfg (DefaultConfig when nil).
func NewWorld(dims arena.Dimensions, cfg *Config, opts ...Option) (*World, error) {
	a, err := arena.FromDimensions(dims)
	if err != nil {
		return nil, fmt.Errorf("failed to build arena: %w", err)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.ArenaWidth, c.ArenaHeight = a.Width(), a.Height()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world config: %w", err)
	}

	w := &World{
		arena:         a,
		radius:        c.BallRadius,
		mass:          c.BallMass,
		maxSpeed:      c.MaxInitialSpeed,
		timeStep:      c.TimeStep,
		tick:          c.TickInterval(),
		grace:         c.GracePeriod(),
		spawnAttempts: c.SpawnAttempts,
		collider:      NewCollider(c.SkipSeparating),
		feed:          newFeed(),
		logger:        golog.DefaultLogger,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = NewRandomSource(c.Seed)
	}
	return w, nil
}

func (w *World) Width() int             { return w.arena.Width() }
func (w *World) Height() int            { return w.arena.Height() }
func (w *World) Arena() arena.Arena     { return w.arena }
func (w *World) Disposed() bool         { return w.disposed.Load() }
func (w *World) RecordFailures() uint64 { return w.recordFailures.Load() }

// Subscribe returns a subscription receiving the events of every body,
// including bodies created later.
func (w *World) Subscribe() *Subscription {
	return w.feed.Subscribe()
}

// AllBodies returns a snapshot of the roster in creation order.
func (w *World) AllBodies() []*Body {
	w.rosterMu.RLock()
	defer w.rosterMu.RUnlock()
	out := make([]*Body, len(w.roster))
	copy(out, w.roster)
	return out
}

func (w *World) Len() int {
	w.rosterMu.RLock()
	defer w.rosterMu.RUnlock()
	return len(w.roster)
}

// Start creates n bodies at random positions strictly inside the arena with
// random velocities. For each body, onCreated runs before the body joins the
// roster and before its loop starts, so a subscription taken in the callback
// sees every move. onCreated must not call Start or Dispose.
func (w *World) Start(n int, onCreated func(pos geometry.Vector2D, b *Body)) error {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if w.disposed.Load() {
		return ErrDisposed
	}
	if n < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, n)
	}
	if onCreated == nil {
		return ErrNilCallback
	}

	for i := 0; i < n; i++ {
		pos := w.spawnPosition()
		vel := randomVelocity(w.rng, w.maxSpeed)
		b := newBody(w, w.nextID, pos, vel, w.radius, w.mass)
		w.nextID++

		onCreated(pos, b)

		// Publish only the fully built body.
		w.rosterMu.Lock()
		w.roster = append(w.roster, b)
		w.rosterMu.Unlock()

		w.logger.Debugf("[%s] born at %s with velocity %s", b, pos, vel)
		b.start()
	}
	w.logger.Infof("world %dx%d: started %d bodies (%d total)", w.Width(), w.Height(), n, w.Len())
	return nil
}

// spawnPosition tries to find a spot that overlaps no existing body and
// settles for the last sample after spawnAttempts tries.
func (w *World) spawnPosition() geometry.Vector2D {
	existing := w.AllBodies()
	var pos geometry.Vector2D
	for attempt := 0; attempt < w.spawnAttempts; attempt++ {
		pos = randomInterior(w.rng, w.arena, w.radius)
		if !overlapsAny(pos, w.radius, existing) {
			return pos
		}
	}
	return pos
}

func overlapsAny(pos geometry.Vector2D, radius float64, bodies []*Body) bool {
	for _, b := range bodies {
		limit := radius + b.radius
		if pos.DistanceSquaredTo(b.Position()) <= limit*limit {
			return true
		}
	}
	return false
}

// Dispose stops every body, waits up to the grace period for their loops to
// exit, closes all notification feeds and clears the roster. It may only be
// called once; later calls return ErrDisposed.
func (w *World) Dispose() error {
	w.lifecycle.Lock()
	defer w.lifecycle.Unlock()

	if !w.disposed.CompareAndSwap(false, true) {
		return ErrDisposed
	}

	bodies := w.AllBodies()
	for _, b := range bodies {
		b.Stop()
	}
	if running := waitStopped(bodies, w.grace); running > 0 {
		w.logger.Warnf("%d of %d body loops still running after %s grace period", running, len(bodies), w.grace)
	}

	w.feed.close()
	for _, b := range bodies {
		b.feed.close()
	}

	w.rosterMu.Lock()
	w.roster = nil
	w.rosterMu.Unlock()

	w.logger.Infof("world disposed, %d bodies stopped", len(bodies))
	return nil
}

// waitStopped returns how many loops had not exited when grace ran out.
func waitStopped(bodies []*Body, grace time.Duration) int {
	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	for i, b := range bodies {
		select {
		case <-b.Done():
		case <-deadline.C:
			running := 0
			for _, rest := range bodies[i:] {
				select {
				case <-rest.Done():
				default:
					running++
				}
			}
			return running
		}
	}
	return 0
}

// resolveCollisions scans the roster for b. The caller holds collider.mu.
func (w *World) resolveCollisions(b *Body) int {
	w.rosterMu.RLock()
	defer w.rosterMu.RUnlock()
	return w.collider.resolve(b, w.roster)
}

func (w *World) record(ev Event) {
	if w.recorder == nil || w.disposed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			n := w.recordFailures.Add(1)
			if n == 1 || n%1000 == 0 {
				w.logger.Warnf("telemetry recorder failed (%d failures so far): %v", n, r)
			}
		}
	}()
	w.recorder.Record(ev)
}
