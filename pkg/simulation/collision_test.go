package simulation

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-ball-arena/pkg/geometry"
)

func vec(x, y float64) geometry.Vector2D { return geometry.Vector2D{X: x, Y: y} }

// still builds a body that is never started.
func still(id int, pos, vel geometry.Vector2D, mass float64) *Body {
	return newBody(nil, id, pos, vel, 10, mass)
}

func TestCollider_HeadOnExchange(t *testing.T) {
	tests := []struct {
		name         string
		gap          float64
		va, vb       geometry.Vector2D
		wantA, wantB geometry.Vector2D
	}{
		{"symmetric", 15, vec(2, 0), vec(-2, 0), vec(-2, 0), vec(2, 0)},
		{"unequal speeds", 19, vec(2, 0), vec(-1, 0), vec(-1, 0), vec(2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := still(0, vec(100, 100), tt.va, 1)
			b := still(1, vec(100+tt.gap, 100), tt.vb, 1)

			c := NewCollider(true)
			if got := c.Resolve(a, []*Body{a, b}); got != 1 {
				t.Fatalf("Resolve = %d; want 1", got)
			}
			if v := a.Velocity(); !v.Eq(tt.wantA) {
				t.Errorf("a velocity = %v; want %v", v, tt.wantA)
			}
			if v := b.Velocity(); !v.Eq(tt.wantB) {
				t.Errorf("b velocity = %v; want %v", v, tt.wantB)
			}
			// Positions are never touched by the collider.
			if p := a.Position(); !p.Eq(vec(100, 100)) {
				t.Errorf("a position = %v; want unchanged", p)
			}
			if p := b.Position(); !p.Eq(vec(100+tt.gap, 100)) {
				t.Errorf("b position = %v; want unchanged", p)
			}
		})
	}
}

func TestCollider_SecondScanDoesNotUndo(t *testing.T) {
	a := still(0, vec(100, 100), vec(2, 0), 1)
	b := still(1, vec(115, 100), vec(-2, 0), 1)
	roster := []*Body{a, b}

	c := NewCollider(true)
	c.Resolve(a, roster)
	if got := c.Resolve(b, roster); got != 0 {
		t.Errorf("second Resolve = %d; want 0 for a separating pair", got)
	}
	if v := a.Velocity(); !v.Eq(vec(-2, 0)) {
		t.Errorf("a velocity = %v; want (-2, 0)", v)
	}

	// Without the guard the partner's scan swaps the speeds back.
	c = NewCollider(false)
	c.Resolve(b, roster)
	if v := a.Velocity(); !v.Eq(vec(2, 0)) {
		t.Errorf("a velocity = %v; want (2, 0) with SkipSeparating off", v)
	}
}

func TestCollider_NoActionAtDistance(t *testing.T) {
	a := still(0, vec(100, 100), vec(1, 1), 1)
	b := still(1, vec(120.5, 100), vec(-1, 1), 1)

	if got := NewCollider(true).Resolve(a, []*Body{a, b}); got != 0 {
		t.Errorf("Resolve = %d; want 0", got)
	}
	if v := a.Velocity(); !v.Eq(vec(1, 1)) {
		t.Errorf("a velocity = %v; want (1, 1)", v)
	}
	if v := b.Velocity(); !v.Eq(vec(-1, 1)) {
		t.Errorf("b velocity = %v; want (-1, 1)", v)
	}
}

func TestCollider_TouchingCounts(t *testing.T) {
	a := still(0, vec(100, 100), vec(1, 0), 1)
	b := still(1, vec(120, 100), vec(0, 0), 1)

	if got := NewCollider(true).Resolve(a, []*Body{a, b}); got != 1 {
		t.Fatalf("Resolve = %d; want 1 for bodies exactly r1+r2 apart", got)
	}
	if v := b.Velocity(); !v.Eq(vec(1, 0)) {
		t.Errorf("b velocity = %v; want (1, 0)", v)
	}
}

func TestCollider_ZeroDistance(t *testing.T) {
	a := still(0, vec(50, 50), vec(1, 0), 1)
	b := still(1, vec(50, 50), vec(-1, 0), 1)

	NewCollider(true).Resolve(a, []*Body{a, b})

	for _, body := range []*Body{a, b} {
		v := body.Velocity()
		if !v.IsFinite() {
			t.Fatalf("%s velocity = %v; want finite", body, v)
		}
	}
	if v := a.Velocity(); !v.Eq(vec(-1, 0)) {
		t.Errorf("a velocity = %v; want (-1, 0)", v)
	}
	if v := b.Velocity(); !v.Eq(vec(1, 0)) {
		t.Errorf("b velocity = %v; want (1, 0)", v)
	}
}

func TestCollider_SkipsStoppedAndSelf(t *testing.T) {
	a := still(0, vec(100, 100), vec(2, 0), 1)
	b := still(1, vec(110, 100), vec(-2, 0), 1)
	b.Stop()

	if got := NewCollider(true).Resolve(a, []*Body{a, b, nil}); got != 0 {
		t.Errorf("Resolve = %d; want 0", got)
	}
	if v := b.Velocity(); !v.Eq(vec(-2, 0)) {
		t.Errorf("stopped body velocity = %v; want unchanged", v)
	}
}

func TestElastic(t *testing.T) {
	tests := []struct {
		name   string
		v1, v2 geometry.Vector2D
		m1, m2 float64
		n      geometry.Vector2D
	}{
		{"equal head on", vec(3, 0), vec(-1, 0), 1, 1, vec(1, 0)},
		{"equal glancing", vec(2, 1), vec(-1, 3), 1, 1, vec(math.Sqrt2/2, math.Sqrt2/2)},
		{"heavy vs light", vec(1, 0), vec(-4, 0), 5, 1, vec(1, 0)},
		{"light vs heavy oblique", vec(0.5, -2), vec(1, 1), 0.2, 3, vec(0.6, 0.8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o1, o2 := Elastic(tt.v1, tt.v2, tt.m1, tt.m2, tt.n)

			pBefore := tt.v1.Mul(tt.m1).Add(tt.v2.Mul(tt.m2))
			pAfter := o1.Mul(tt.m1).Add(o2.Mul(tt.m2))
			if !pBefore.Eq(pAfter) {
				t.Errorf("momentum = %v; want %v", pAfter, pBefore)
			}

			eBefore := tt.m1*tt.v1.LenSqr() + tt.m2*tt.v2.LenSqr()
			eAfter := tt.m1*o1.LenSqr() + tt.m2*o2.LenSqr()
			if math.Abs(eBefore-eAfter) > 1e-9 {
				t.Errorf("kinetic energy = %v; want %v", eAfter/2, eBefore/2)
			}

			// Tangential components are untouched.
			tan := vec(-tt.n.Y, tt.n.X)
			if math.Abs(o1.Dot(tan)-tt.v1.Dot(tan)) > 1e-9 {
				t.Errorf("v1 tangential = %v; want %v", o1.Dot(tan), tt.v1.Dot(tan))
			}
			if math.Abs(o2.Dot(tan)-tt.v2.Dot(tan)) > 1e-9 {
				t.Errorf("v2 tangential = %v; want %v", o2.Dot(tan), tt.v2.Dot(tan))
			}
		})
	}
}

func TestElastic_EqualMassesExchangeNormalSpeeds(t *testing.T) {
	n := vec(1, 0)
	o1, o2 := Elastic(vec(3, 4), vec(-1, -2), 1, 1, n)
	if !o1.Eq(vec(-1, 4)) {
		t.Errorf("v1' = %v; want (-1, 4)", o1)
	}
	if !o2.Eq(vec(3, -2)) {
		t.Errorf("v2' = %v; want (3, -2)", o2)
	}
}

func BenchmarkCollider_Resolve(b *testing.B) {
	roster := make([]*Body, 0, 100)
	for i := 0; i < 100; i++ {
		roster = append(roster, still(i, vec(float64(i%10)*25, float64(i/10)*25), vec(1, -1), 1))
	}
	c := NewCollider(true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Resolve(roster[i%len(roster)], roster)
	}
}
