package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestFitAndCenterWithinPreservesAspect(t *testing.T) {
	src := R(0, 0, 200, 100)
	target := R(10, 10, 100, 100)

	got := src.FitAndCenterWithin(target)
	want := R(10, 35, 100, 50)
	if !got.ApproxEqual(want, eps) {
		t.Fatalf("FitAndCenterWithin = %+v, want %+v", got, want)
	}
	if math.Abs(got.AspectRatio()-src.AspectRatio()) > eps {
		t.Fatalf("aspect changed: %g -> %g", src.AspectRatio(), got.AspectRatio())
	}
}

func TestConstrainTo(t *testing.T) {
	outer := R(0, 0, 100, 100)
	cases := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", R(10, 10, 20, 20), R(10, 10, 20, 20)},
		{"left overflow", R(-5, 10, 20, 20), R(0, 10, 20, 20)},
		{"bottom right overflow", R(90, 95, 20, 20), R(80, 80, 20, 20)},
		{"wider than outer", R(30, 0, 150, 10), R(0, 0, 150, 10)},
	}
	for _, tc := range cases {
		if got := tc.in.ConstrainTo(outer); !got.ApproxEqual(tc.want, eps) {
			t.Errorf("%s: got %+v want %+v", tc.name, got, tc.want)
		}
	}
}

func TestLocalWorldRoundTrip(t *testing.T) {
	parent := R(40, 60, 300, 200)
	r := R(50, 70, 10, 20)
	local := r.ToLocalSpace(parent)
	if !local.ApproxEqual(R(10, 10, 10, 20), eps) {
		t.Fatalf("local = %+v", local)
	}
	if back := local.ToWorldSpace(parent); !back.ApproxEqual(r, eps) {
		t.Fatalf("world = %+v, want %+v", back, r)
	}
}

func TestRotateBBAroundCenter(t *testing.T) {
	r := R(0, 0, 40, 20)
	got := r.RotateBBAroundCenter(math.Pi / 2)
	want := RectFromCenterSize(r.Center(), V(20, 40))
	if !got.ApproxEqual(want, 1e-9) {
		t.Fatalf("quarter turn = %+v, want %+v", got, want)
	}

	diag := R(0, 0, 10, 10).RotateBBAroundCenter(math.Pi / 4)
	side := 10 * math.Sqrt2
	if math.Abs(diag.Width()-side) > 1e-9 || math.Abs(diag.Height()-side) > 1e-9 {
		t.Fatalf("45deg bb = %gx%g, want %g", diag.Width(), diag.Height(), side)
	}
}

func TestRotatePointIsClockwiseOnScreen(t *testing.T) {
	got := RotatePoint(V(1, 0), V(0, 0), math.Pi/2)
	if !got.ApproxEqual(V(0, 1), 1e-12) {
		t.Fatalf("RotatePoint = %+v, want (0,1)", got)
	}
}

func TestRotateBBAroundPoint(t *testing.T) {
	r := R(10, 0, 10, 10)
	got := r.RotateBBAroundPoint(math.Pi, V(0, 0))
	if !got.ApproxEqual(R(-20, -10, 10, 10), 1e-9) {
		t.Fatalf("half turn = %+v", got)
	}
}

func TestTranslateEdges(t *testing.T) {
	r := R(10, 20, 30, 40)
	if got := r.TranslateLeftTo(0); !got.ApproxEqual(R(0, 20, 30, 40), eps) {
		t.Errorf("left: %+v", got)
	}
	if got := r.TranslateRightTo(100); !got.ApproxEqual(R(70, 20, 30, 40), eps) {
		t.Errorf("right: %+v", got)
	}
	if got := r.TranslateTopTo(0); !got.ApproxEqual(R(10, 0, 30, 40), eps) {
		t.Errorf("top: %+v", got)
	}
	if got := r.TranslateBottomTo(100); !got.ApproxEqual(R(10, 60, 30, 40), eps) {
		t.Errorf("bottom: %+v", got)
	}
}

func TestScaleAroundCenter(t *testing.T) {
	got := R(0, 0, 10, 20).Scale(2)
	if !got.ApproxEqual(R(-5, -10, 20, 40), eps) {
		t.Fatalf("Scale = %+v", got)
	}
}

func TestNormalizeRepairsInvalidRects(t *testing.T) {
	inverted := Rect{Min: V(10, 10), Max: V(0, 5)}
	got := inverted.Normalize(Rect{})
	if !got.ApproxEqual(Rect{Min: V(0, 5), Max: V(10, 10)}, eps) {
		t.Fatalf("inverted = %+v", got)
	}

	nan := Rect{Min: V(math.NaN(), 0), Max: V(1, 1)}
	fallback := R(3, 3, 4, 4)
	if got := nan.Normalize(fallback); !got.ApproxEqual(fallback, eps) {
		t.Fatalf("nan fallback = %+v", got)
	}

	flat := R(5, 5, 0, 0).Normalize(Rect{})
	if flat.Width() < MinExtent || flat.Height() < MinExtent {
		t.Fatalf("flat rect not clamped: %+v", flat)
	}
	if !flat.Center().ApproxEqual(V(5, 5), eps) {
		t.Fatalf("clamp moved center: %+v", flat.Center())
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	outer := R(100, 200, 400, 300)
	inner := R(200, 260, 100, 150)
	n := outer.Normalized(inner)
	if !n.ApproxEqual(Rect{Min: V(0.25, 0.2), Max: V(0.5, 0.7)}, eps) {
		t.Fatalf("Normalized = %+v", n)
	}
	if back := outer.Denormalized(n); !back.ApproxEqual(inner, eps) {
		t.Fatalf("Denormalized = %+v", back)
	}
}
