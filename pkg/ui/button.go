package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Rect
	Label    string
	OnClick  func()
	Disabled bool

	hover bool
	latch latch

	// Styling
	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Rect:       Rect{X: x, Y: y, W: width, H: height},
		Label:      label,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Bounds() *Rect { return &b.Rect }

// Update checks for mouse interaction
func (b *Button) Update() {
	b.handle(cursor())
}

// handle returns true when the click fired OnClick.
func (b *Button) handle(mx, my float64, pressed bool) bool {
	b.hover = b.Contains(mx, my)
	if !b.latch.fire(pressed, b.hover) || b.Disabled || b.OnClick == nil {
		return false
	}
	b.OnClick()
	return true
}

// Draw renders the button
func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	switch {
	case b.Disabled:
		bg = colorMuted
	case b.hover:
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, colorBorder, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+8), int(b.Y+b.H/2-8))
}
