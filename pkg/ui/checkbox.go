package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox toggles a boolean; the label is drawn to the right of the box
// and is part of the hit box.
type Checkbox struct {
	Rect
	Label    string
	Value    bool
	OnChange func(bool)

	latch latch
}

const checkboxSize = 16

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Rect:  Rect{X: x, Y: y, W: checkboxSize + 8 + float64(6*len(label)), H: checkboxSize},
		Label: label,
		Value: value,
	}
}

func (c *Checkbox) Bounds() *Rect { return &c.Rect }

func (c *Checkbox) Update() {
	c.handle(cursor())
}

func (c *Checkbox) handle(mx, my float64, pressed bool) {
	if !c.latch.fire(pressed, c.Contains(mx, my)) {
		return
	}
	c.Value = !c.Value
	if c.OnChange != nil {
		c.OnChange(c.Value)
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen, float32(c.X), float32(c.Y), checkboxSize, checkboxSize, 2, colorBorder, true)
	if c.Value {
		vector.FillRect(screen, float32(c.X+3), float32(c.Y+3), checkboxSize-6, checkboxSize-6, colorOn, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+checkboxSize+8), int(c.Y))
}
