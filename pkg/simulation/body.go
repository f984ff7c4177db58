package simulation

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

// Body is one circular entity moving on its own goroutine.
//
// Position and velocity are guarded together by mu, so readers on other
// goroutines never observe a half-written vector. Every mutation also happens
// inside the world's collision critical section (see Collider).
type Body struct {
	id     int
	radius float64
	mass   float64
	world  *World

	mu  sync.RWMutex
	pos geometry.Vector2D
	vel geometry.Vector2D

	// seq is only touched by the body's own loop, under the collider lock.
	seq uint64

	moving   atomic.Bool
	started  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	feed *Feed
}

func newBody(w *World, id int, pos, vel geometry.Vector2D, radius, mass float64) *Body {
	b := &Body{
		id:     id,
		radius: radius,
		mass:   mass,
		world:  w,
		pos:    pos,
		vel:    vel,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		feed:   newFeed(),
	}
	b.moving.Store(true)
	return b
}

func (b *Body) ID() int                  { return b.id }
func (b *Body) Radius() float64          { return b.radius }
func (b *Body) Mass() float64            { return b.mass }
func (b *Body) IsMoving() bool           { return b.moving.Load() }
func (b *Body) String() string           { return fmt.Sprintf("body-%03d", b.id) }
func (b *Body) Subscribe() *Subscription { return b.feed.Subscribe() }

// Done is closed when the body's loop has exited.
func (b *Body) Done() <-chan struct{} { return b.done }

func (b *Body) Position() geometry.Vector2D {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pos
}

func (b *Body) Velocity() geometry.Vector2D {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vel
}

// SetVelocity replaces the velocity. It waits for any step or collision in
// progress so the new value is not overwritten by a stale one.
func (b *Body) SetVelocity(v geometry.Vector2D) error {
	if !v.IsFinite() {
		return fmt.Errorf("%w: %v", ErrNonFinite, v)
	}
	if !b.IsMoving() {
		return fmt.Errorf("%s: %w", b, ErrStopped)
	}
	b.world.collider.mu.Lock()
	defer b.world.collider.mu.Unlock()
	b.setVelocity(v)
	return nil
}

// Stop clears the movement flag. It never blocks and may be called any
// number of times; the loop exits at its next scheduling point.
func (b *Body) Stop() {
	b.moving.Store(false)
	b.stopOnce.Do(func() { close(b.stopCh) })
}

func (b *Body) state() (geometry.Vector2D, geometry.Vector2D) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pos, b.vel
}

func (b *Body) setVelocity(v geometry.Vector2D) {
	b.mu.Lock()
	b.vel = v
	b.mu.Unlock()
}

func (b *Body) commit(pos, vel geometry.Vector2D) {
	b.mu.Lock()
	b.pos = pos
	b.vel = vel
	b.mu.Unlock()
}

// ============================================================================
// Autonomous loop
// ============================================================================

// start launches the loop once.
func (b *Body) start() {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	go b.run(b.world.tick)
}

// run is Running until Stop, then returns at the next scheduling point.
// The stop channel makes that point immediate instead of one tick later.
func (b *Body) run(interval time.Duration) {
	defer close(b.done)
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-b.stopCh:
			return
		case <-timer.C:
		}
		if !b.IsMoving() {
			return
		}
		b.step()
		timer.Reset(interval)
	}
}

// step runs one advance and isolates its faults from every other body.
func (b *Body) step() {
	defer func() {
		if r := recover(); r != nil {
			if debugNumerics {
				panic(r)
			}
			b.world.logger.Errorf("[%s] recovered from panic in step: %v", b, r)
		}
	}()

	ev, err := b.advance()
	if err != nil {
		b.world.logger.Errorf("[%s] step rejected: %v", b, err)
		if debugNumerics {
			panic(err)
		}
		return
	}
	b.publish(ev)
}

// advance moves the body by one time step. The wall and collision outcomes
// are decided by the arena and the collider; advance only commits them.
func (b *Body) advance() (Event, error) {
	w := b.world
	w.collider.mu.Lock()
	defer w.collider.mu.Unlock()

	pos, vel := b.state()
	candidate := pos.Add(vel.Mul(w.timeStep))
	if !w.arena.Sane(candidate) {
		// Never let a corrupted velocity reach another step.
		b.setVelocity(geometry.Zero)
		return Event{}, fmt.Errorf("%w: candidate %v from %v with velocity %v", ErrNumericAnomaly, candidate, pos, vel)
	}

	next, nextVel := w.arena.Resolve(candidate, vel, b.radius)
	b.commit(next, nextVel)
	w.resolveCollisions(b)

	b.seq++
	return Event{
		BodyID:   b.id,
		Seq:      b.seq,
		Position: next,
		Velocity: b.Velocity(),
		At:       time.Now(),
	}, nil
}

// publish raises the notification for one commit. It runs outside the
// collision critical section.
func (b *Body) publish(ev Event) {
	b.feed.publish(ev)
	b.world.feed.publish(ev)
	b.world.record(ev)
}
