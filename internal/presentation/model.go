// Package presentation turns world events into ball view-models a canvas
// can draw directly.
package presentation

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/simulation"
)

// Engine is the part of *simulation.World the model drives.
type Engine interface {
	Start(n int, onCreated func(pos geometry.Vector2D, b *simulation.Body)) error
	Dispose() error
	Subscribe() *simulation.Subscription
	Width() int
	Height() int
}

// Ball is one body as seen by a canvas: the top-left corner of its bounding
// square and its diameter, already multiplied by the scale factor.
type Ball struct {
	ID       int
	Left     float64
	Top      float64
	Diameter float64
}

type entry struct {
	pos    geometry.Vector2D
	radius float64
}

// Model mirrors the world for a view. It owns the world once constructed.
type Model struct {
	world Engine
	sub   *simulation.Subscription
	done  chan struct{}

	mu      sync.RWMutex
	scale   float64
	entries map[int]entry

	closed atomic.Bool
}

func NewModel(world Engine, scale float64) *Model {
	if scale <= 0 {
		scale = 1
	}
	m := &Model{
		world:   world,
		sub:     world.Subscribe(),
		done:    make(chan struct{}),
		scale:   scale,
		entries: make(map[int]entry),
	}
	go m.apply()
	return m
}

// Start creates n more balls.
func (m *Model) Start(n int) error {
	if m.closed.Load() {
		return simulation.ErrDisposed
	}
	return m.world.Start(n, func(pos geometry.Vector2D, b *simulation.Body) {
		m.mu.Lock()
		m.entries[b.ID()] = entry{pos: pos, radius: b.Radius()}
		m.mu.Unlock()
	})
}

func (m *Model) apply() {
	defer close(m.done)
	for ev := range m.sub.C() {
		m.mu.Lock()
		if e, ok := m.entries[ev.BodyID]; ok {
			e.pos = ev.Position
			m.entries[ev.BodyID] = e
		}
		m.mu.Unlock()
	}
}

// Balls returns the current view-models ordered by ID.
func (m *Model) Balls() []Ball {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Ball, 0, len(m.entries))
	for id, e := range m.entries {
		out = append(out, Ball{
			ID:       id,
			Left:     (e.pos.X - e.radius) * m.scale,
			Top:      (e.pos.Y - e.radius) * m.scale,
			Diameter: 2 * e.radius * m.scale,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Model) Scale() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale
}

// SetScale changes the factor applied by Balls; non-positive values are ignored.
func (m *Model) SetScale(scale float64) {
	if scale <= 0 {
		return
	}
	m.mu.Lock()
	m.scale = scale
	m.mu.Unlock()
}

// CanvasSize is the arena size after scaling.
func (m *Model) CanvasSize() (float64, float64) {
	s := m.Scale()
	return float64(m.world.Width()) * s, float64(m.world.Height()) * s
}

func (m *Model) Closed() bool { return m.closed.Load() }

// Close disposes the world and waits for the last events to be applied.
// A second call returns simulation.ErrDisposed.
func (m *Model) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return simulation.ErrDisposed
	}
	err := m.world.Dispose()
	m.sub.Close()
	<-m.done
	return err
}
