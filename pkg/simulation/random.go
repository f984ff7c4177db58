package simulation

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/arena"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

// RandomSource samples initial positions and velocities.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// Float64 returns a number in [0, 1).
	Float64() float64
}

// NewRandomSource returns a PCG source. Seed 0 picks a random seed.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomInterior samples a position strictly inside the arena for a body of
// the given radius. Position is uniform in (radius, size-radius) on each axis.
func randomInterior(rng RandomSource, a arena.Arena, radius float64) geometry.Vector2D {
	return geometry.Vector2D{
		X: interior(rng, radius, float64(a.Width())-radius),
		Y: interior(rng, radius, float64(a.Height())-radius),
	}
}

func interior(rng RandomSource, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	v := lo + rng.Float64()*(hi-lo)
	if v <= lo {
		// Float64 can return exactly 0, nudge towards the middle.
		v = lo + (hi-lo)/2
	}
	return v
}

// randomVelocity samples each component uniformly in [-maxSpeed, maxSpeed].
func randomVelocity(rng RandomSource, maxSpeed float64) geometry.Vector2D {
	return geometry.Vector2D{
		X: (rng.Float64()*2 - 1) * maxSpeed,
		Y: (rng.Float64()*2 - 1) * maxSpeed,
	}
}
