package ui

import "testing"

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 30}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 20, true},
		{110, 50, true},
		{60, 35, true},
		{9, 35, false},
		{60, 51, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v; want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestButton_ClickFiresOnce(t *testing.T) {
	clicks := 0
	b := NewButton(0, 0, 80, 30, "Start", func() { clicks++ })

	b.handle(40, 15, true)
	b.handle(40, 15, true) // held
	if clicks != 1 {
		t.Fatalf("clicks = %d; want 1 while held", clicks)
	}
	b.handle(40, 15, false)
	b.handle(40, 15, true)
	if clicks != 2 {
		t.Errorf("clicks = %d; want 2 after release and press", clicks)
	}
	b.handle(200, 15, false)
	b.handle(200, 15, true)
	if clicks != 2 {
		t.Errorf("clicks = %d; want 2 after a press outside", clicks)
	}

	b.Disabled = true
	b.handle(40, 15, false)
	if b.handle(40, 15, true) {
		t.Error("disabled button fired")
	}
}

func TestCheckbox_Toggle(t *testing.T) {
	var seen []bool
	c := NewCheckbox(0, 0, "skip", true)
	c.OnChange = func(v bool) { seen = append(seen, v) }

	c.handle(5, 5, true)
	c.handle(5, 5, true)
	c.handle(5, 5, false)
	c.handle(5, 5, true)
	if len(seen) != 2 || seen[0] != false || seen[1] != true {
		t.Errorf("OnChange values = %v; want [false true]", seen)
	}
}

func TestSlider(t *testing.T) {
	s := NewSlider(0, 0, 100, "Balls", 0, 50, 80)
	if s.Value != 50 {
		t.Errorf("Value = %d; want clamped to 50", s.Value)
	}

	s.handle(50, 5, true) // on the label, not the track
	if s.Value != 50 {
		t.Errorf("Value = %d; want unchanged when clicking the label", s.Value)
	}
	s.handle(50, sliderLabelHeight+4, true)
	if s.Value != 25 {
		t.Errorf("Value = %d; want 25 at the middle of the track", s.Value)
	}
	s.handle(0, sliderLabelHeight+4, true)
	if s.Value != 0 {
		t.Errorf("Value = %d; want 0 at the left edge", s.Value)
	}
	s.handle(100, sliderLabelHeight+4, false)
	if s.Value != 0 {
		t.Errorf("Value = %d; want unchanged without a press", s.Value)
	}
}

func TestPanel_Add(t *testing.T) {
	p := NewPanel(0, 0, 600, 50)
	a := p.Add(NewButton(0, 0, 80, 30, "A", nil)).Bounds()
	b := p.Add(NewButton(0, 0, 60, 30, "B", nil)).Bounds()

	if a.X != 10 || a.Y != 10 {
		t.Errorf("first widget at (%v, %v); want (10, 10)", a.X, a.Y)
	}
	if b.X != 100 {
		t.Errorf("second widget X = %v; want 100", b.X)
	}
}
