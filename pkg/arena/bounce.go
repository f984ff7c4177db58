package arena

import "github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"

// Resolve clamps pos so the circle of the given radius stays inside a
// width x height arena and reflects the velocity component of every axis
// that was violated. Each axis is handled on its own, so a body driven into
// a corner bounces off both walls in the same call.
//
// Resolve only reads its arguments and is safe for concurrent use.
func Resolve(pos, vel geometry.Vector2D, radius, width, height float64) (geometry.Vector2D, geometry.Vector2D) {
	x, hitX := clampAxis(pos.X, radius, width)
	y, hitY := clampAxis(pos.Y, radius, height)
	if hitX {
		vel = vel.FlipX()
	}
	if hitY {
		vel = vel.FlipY()
	}
	return geometry.Vector2D{X: x, Y: y}, vel
}

// clampAxis keeps p within [radius, size-radius] and reports a wall hit.
func clampAxis(p, radius, size float64) (float64, bool) {
	switch {
	case p-radius < 0:
		return radius, true
	case p+radius > size:
		return size - radius, true
	}
	return p, false
}
