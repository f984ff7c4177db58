package ui

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider picks an integer in [Min, Max] by clicking or dragging on its track.
// The label and current value are printed above the track.
type Slider struct {
	Rect
	Label    string
	Value    int
	Min, Max int
}

const sliderLabelHeight = 16

func NewSlider(x, y, width float64, label string, min, max, value int) *Slider {
	s := &Slider{
		Rect:  Rect{X: x, Y: y, W: width, H: 16 + sliderLabelHeight},
		Label: label,
		Min:   min,
		Max:   max,
	}
	s.Set(value)
	return s
}

func (s *Slider) Bounds() *Rect { return &s.Rect }

// Set clamps v into [Min, Max].
func (s *Slider) Set(v int) {
	s.Value = max(s.Min, min(s.Max, v))
}

func (s *Slider) track() Rect {
	return Rect{X: s.X, Y: s.Y + sliderLabelHeight, W: s.W, H: s.H - sliderLabelHeight}
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	s.handle(cursor())
}

func (s *Slider) handle(mx, my float64, pressed bool) {
	t := s.track()
	if !pressed || !t.Contains(mx, my) || t.W <= 0 {
		return
	}
	p := (mx - t.X) / t.W
	s.Set(s.Min + int(math.Round(p*float64(s.Max-s.Min))))
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %d", s.Label, s.Value), int(s.X), int(s.Y))

	t := s.track()
	vector.FillRect(screen, float32(t.X), float32(t.Y), float32(t.W), float32(t.H), colorTrack, true)
	ratio := 0.0
	if s.Max > s.Min {
		ratio = float64(s.Value-s.Min) / float64(s.Max-s.Min)
	}
	vector.FillRect(screen, float32(t.X), float32(t.Y), float32(t.W*ratio), float32(t.H), colorFill, true)
}
