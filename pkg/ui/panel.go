package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Panel is a horizontal control bar: widgets are placed left to right and
// vertically centred in the bar.
type Panel struct {
	Rect
	Padding float64
	Widgets []Widget

	BGColor     color.RGBA
	BorderColor color.RGBA
}

func NewPanel(x, y, width, height float64) *Panel {
	return &Panel{
		Rect:        Rect{X: x, Y: y, W: width, H: height},
		Padding:     10,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// Add positions w after the last widget and returns it.
func (p *Panel) Add(w Widget) Widget {
	x := p.X + p.Padding
	if n := len(p.Widgets); n > 0 {
		last := p.Widgets[n-1].Bounds()
		x = last.X + last.W + p.Padding
	}
	r := w.Bounds()
	r.X = x
	r.Y = p.Y + (p.H-r.H)/2
	p.Widgets = append(p.Widgets, w)
	return w
}

func (p *Panel) Update() {
	for _, w := range p.Widgets {
		w.Update()
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), 1, p.BorderColor, true)
	for _, w := range p.Widgets {
		w.Draw(screen)
	}
}
