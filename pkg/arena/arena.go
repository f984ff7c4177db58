// Package arena holds the rectangular region bodies are confined to and the
// pure wall-bounce resolver used by every body loop.
package arena

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

var ErrInvalidSize = errors.New("arena dimensions must be positive")

// Dimensions supplies the integer arena size. Arena implements it, and so can
// any upstream configuration source.
type Dimensions interface {
	Width() int
	Height() int
}

// Arena is an immutable width x height rectangle anchored at the origin.
type Arena struct {
	width, height int
	bounds        r2.Rect
}

var _ Dimensions = Arena{}

// New validates the size and builds the Arena.
func New(width, height int) (Arena, error) {
	if width <= 0 || height <= 0 {
		return Arena{}, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	return Arena{
		width:  width,
		height: height,
		bounds: r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: float64(width), Y: float64(height)}),
	}, nil
}

// FromDimensions copies the size reported by any provider.
func FromDimensions(d Dimensions) (Arena, error) {
	if d == nil {
		return Arena{}, fmt.Errorf("%w: nil dimensions provider", ErrInvalidSize)
	}
	return New(d.Width(), d.Height())
}

func (a Arena) Width() int  { return a.width }
func (a Arena) Height() int { return a.height }

// Bounds returns the arena rectangle.
func (a Arena) Bounds() r2.Rect { return a.bounds }

// Diagonal is the length of the arena diagonal.
func (a Arena) Diagonal() float64 { return a.bounds.Size().Norm() }

// Fits reports whether a body of the given radius has room to exist at all.
func (a Arena) Fits(radius float64) bool {
	return radius > 0 && 2*radius <= float64(a.width) && 2*radius <= float64(a.height)
}

// Contains reports whether a body of the given radius centred on pos
// satisfies radius <= x <= width-radius and radius <= y <= height-radius.
func (a Arena) Contains(pos geometry.Vector2D, radius float64) bool {
	return pos.X >= radius && pos.X <= float64(a.width)-radius &&
		pos.Y >= radius && pos.Y <= float64(a.height)-radius
}

// Sane reports whether pos is finite and no further than one diagonal
// outside the arena. Anything else can only come from corrupted state.
func (a Arena) Sane(pos geometry.Vector2D) bool {
	if !pos.IsFinite() {
		return false
	}
	return a.bounds.ExpandedByMargin(a.Diagonal()).ContainsPoint(r2.Point{X: pos.X, Y: pos.Y})
}

// Resolve applies the wall rules for this arena. See Resolve.
func (a Arena) Resolve(pos, vel geometry.Vector2D, radius float64) (geometry.Vector2D, geometry.Vector2D) {
	return Resolve(pos, vel, radius, float64(a.width), float64(a.height))
}
