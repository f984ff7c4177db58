package simulation

import (
	"sync"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

// Collider resolves overlaps between one body and the rest of the roster.
//
// A single mutex covers the whole roster scan: two resolutions never
// interleave their velocity reads and writes, which keeps three-body
// contacts consistent. Body loops also hold it while they move, so a
// velocity changed by a collision cannot be overwritten by a stale copy.
type Collider struct {
	mu sync.Mutex

	// SkipSeparating ignores overlapping pairs whose normal speeds already
	// move them apart.
	SkipSeparating bool
}

// NewCollider returns a Collider; skipSeparating sets SkipSeparating.
func NewCollider(skipSeparating bool) *Collider {
	return &Collider{SkipSeparating: skipSeparating}
}

// Resolve checks body against every other member of roster and applies the
// elastic collision response to each overlapping pair. It returns the number
// of pairs whose velocities were changed. Positions are never modified.
func (c *Collider) Resolve(body *Body, roster []*Body) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(body, roster)
}

// resolve is Resolve without locking; the caller holds c.mu.
func (c *Collider) resolve(body *Body, roster []*Body) int {
	resolved := 0
	for _, other := range roster {
		if other == nil || other == body || !other.IsMoving() {
			continue
		}
		if c.resolvePair(body, other) {
			resolved++
		}
	}
	return resolved
}

func (c *Collider) resolvePair(a, b *Body) bool {
	pa, va := a.state()
	pb, vb := b.state()

	d := pb.Sub(pa)
	dist := d.Len()
	if dist > a.radius+b.radius {
		return false
	}
	n := contactNormal(a, b, d, dist)
	if c.SkipSeparating && va.Dot(n)-vb.Dot(n) < 0 {
		return false
	}
	na, nb := Elastic(va, vb, a.mass, b.mass, n)
	a.setVelocity(na)
	b.setVelocity(nb)
	return true
}

// contactNormal is the unit vector from a towards b. Coincident centres get
// a fixed axis whose sign depends on the ids, so the pair agrees on it.
func contactNormal(a, b *Body, d geometry.Vector2D, dist float64) geometry.Vector2D {
	if dist < geometry.Epsilon {
		if a.id < b.id {
			return geometry.Vector2D{X: 1, Y: 0}
		}
		return geometry.Vector2D{X: -1, Y: 0}
	}
	return d.Normalize()
}

// Elastic returns the post-collision velocities of two bodies with masses
// m1 and m2 meeting along the unit normal n (pointing from body 1 to body 2).
// Only the normal components change:
//
//	v1' = ((m1-m2)v1 + 2 m2 v2) / (m1+m2)
//	v2' = ((m2-m1)v2 + 2 m1 v1) / (m1+m2)
//
// With equal masses the normal speeds are exchanged.
func Elastic(vel1, vel2 geometry.Vector2D, m1, m2 float64, n geometry.Vector2D) (geometry.Vector2D, geometry.Vector2D) {
	v1 := vel1.Dot(n)
	v2 := vel2.Dot(n)

	var nv1, nv2 float64
	if m1 == m2 {
		nv1, nv2 = v2, v1
	} else {
		total := m1 + m2
		nv1 = ((m1-m2)*v1 + 2*m2*v2) / total
		nv2 = ((m2-m1)*v2 + 2*m1*v1) / total
	}
	return vel1.Add(n.Mul(nv1 - v1)), vel2.Add(n.Mul(nv2 - v2))
}
