package page

import (
	"math"
	"testing"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestUnitRoundTripKeepsPixels(t *testing.T) {
	p := Page{Width: 8.27, Height: 11.69, Unit: Inches, PPI: 300}
	px := p.SizePixels()
	if !approx(px.X, 2481, 1e-9) || !approx(px.Y, 3507, 1e-9) {
		t.Fatalf("size_pixels = %+v, want 2481x3507", px)
	}

	p.SetUnit(Centimeters)
	if !approx(p.Width, 21.0058, 1e-4) || !approx(p.Height, 29.6926, 1e-4) {
		t.Fatalf("centimeters = %gx%g", p.Width, p.Height)
	}
	if got := p.SizePixels(); !approx(got.X, px.X, 1e-9) || !approx(got.Y, px.Y, 1e-9) {
		t.Fatalf("pixels drifted in cm: %+v", got)
	}

	p.SetUnit(Inches)
	if !approx(p.Width, 8.27, 1e-9) || !approx(p.Height, 11.69, 1e-9) {
		t.Fatalf("inches = %gx%g", p.Width, p.Height)
	}
	if got := p.SizePixels(); !approx(got.X, px.X, 1e-9) || !approx(got.Y, px.Y, 1e-9) {
		t.Fatalf("pixels drifted after round trip: %+v", got)
	}
}

func TestUnitRoundTripAllUnits(t *testing.T) {
	units := []Unit{Pixels, Inches, Centimeters}
	for _, from := range units {
		for _, to := range units {
			p := Page{Width: 12, Height: 8, Unit: from, PPI: 240}
			before := p.SizePixels()
			p.SetUnit(to)
			p.SetUnit(from)
			after := p.SizePixels()
			if !approx(before.X, after.X, 1e-9) || !approx(before.Y, after.Y, 1e-9) {
				t.Errorf("%v→%v→%v: %+v != %+v", from, to, from, before, after)
			}
		}
	}
}

func TestSizeMMAndAspect(t *testing.T) {
	p := WithSizeInches(12, 8)
	mm := p.SizeMM()
	if !approx(mm.X, 304.8, 1e-9) || !approx(mm.Y, 203.2, 1e-9) {
		t.Fatalf("SizeMM = %+v", mm)
	}
	if !approx(p.AspectRatio(), 1.5, 1e-12) {
		t.Fatalf("AspectRatio = %g", p.AspectRatio())
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(0, 10, Pixels, 72); err == nil {
		t.Fatalf("零宽度应报错")
	}
	if _, err := New(10, 10, Pixels, 0); err == nil {
		t.Fatalf("ppi=0 应报错")
	}
	p, err := New(1000, 1500, Pixels, 72)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.SizePixels(); got.X != 1000 || got.Y != 1500 {
		t.Fatalf("pixel page size = %+v", got)
	}
}
