// Package ui holds the small set of ebiten widgets used by the viewer.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	colorBorder = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorTrack  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	colorFill   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorMuted  = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	colorOn     = color.RGBA{R: 100, G: 200, B: 100, A: 255}
)

// Widget is anything the Panel can lay out.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Bounds() *Rect
}

// Rect is a widget's hit box in screen pixels.
type Rect struct {
	X, Y float64
	W, H float64
}

func (r *Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// latch turns a held mouse button into a single click.
type latch struct {
	down bool
}

// fire reports true only on the frame the button goes down over the widget.
func (l *latch) fire(pressed, over bool) bool {
	if !pressed || !over {
		l.down = false
		return false
	}
	if l.down {
		return false
	}
	l.down = true
	return true
}

func cursor() (float64, float64, bool) {
	mx, my := ebiten.CursorPosition()
	return float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
}
