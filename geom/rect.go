package geom

import "math"

// MinExtent is the smallest width or height a normalized rect may have.
const MinExtent = 1.0

// Rect is an axis-aligned rectangle with Min <= Max on both axes.
type Rect struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// R builds a rect from its min corner and size.
func R(x, y, w, h float64) Rect {
	return Rect{Min: Vec2{X: x, Y: y}, Max: Vec2{X: x + w, Y: y + h}}
}

// RectFromMinSize builds a rect from a min corner and a size.
func RectFromMinSize(min, size Vec2) Rect { return Rect{Min: min, Max: min.Add(size)} }

// RectFromCenterSize builds a rect centered on c.
func RectFromCenterSize(c, size Vec2) Rect {
	half := size.Scale(0.5)
	return Rect{Min: c.Sub(half), Max: c.Add(half)}
}

// RectFromPoints returns the smallest rect containing both points.
func RectFromPoints(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

// BoundingRect returns the union of all rects. The zero Rect is returned for no input.
func BoundingRect(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Union(r)
	}
	return out
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Size() Vec2      { return Vec2{X: r.Width(), Y: r.Height()} }
func (r Rect) Center() Vec2    { return Vec2{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2} }

// AspectRatio returns width / height, or 1 for degenerate rects.
func (r Rect) AspectRatio() float64 {
	if r.Height() == 0 {
		return 1
	}
	return r.Width() / r.Height()
}

func (r Rect) Left() float64   { return r.Min.X }
func (r Rect) Right() float64  { return r.Max.X }
func (r Rect) Top() float64    { return r.Min.Y }
func (r Rect) Bottom() float64 { return r.Max.Y }

// Corners returns top-left, top-right, bottom-left, bottom-right.
func (r Rect) Corners() [4]Vec2 {
	return [4]Vec2{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y},
		r.Max,
	}
}

func (r Rect) Translate(d Vec2) Rect { return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)} }

// WithCenter moves r so that its center is c.
func (r Rect) WithCenter(c Vec2) Rect { return r.Translate(c.Sub(r.Center())) }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether o lies entirely inside r within eps.
func (r Rect) ContainsRect(o Rect, eps float64) bool {
	return o.Min.X >= r.Min.X-eps && o.Min.Y >= r.Min.Y-eps &&
		o.Max.X <= r.Max.X+eps && o.Max.Y <= r.Max.Y+eps
}

// Intersects reports whether the rects overlap (touching counts).
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Intersect returns the overlapping area. Disjoint rects yield a zero-sized rect at the clamp point.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: Vec2{X: math.Max(r.Min.X, o.Min.X), Y: math.Max(r.Min.Y, o.Min.Y)},
		Max: Vec2{X: math.Min(r.Max.X, o.Max.X), Y: math.Min(r.Max.Y, o.Max.Y)},
	}
	if out.Max.X < out.Min.X {
		out.Max.X = out.Min.X
	}
	if out.Max.Y < out.Min.Y {
		out.Max.Y = out.Min.Y
	}
	return out
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Vec2{X: math.Min(r.Min.X, o.Min.X), Y: math.Min(r.Min.Y, o.Min.Y)},
		Max: Vec2{X: math.Max(r.Max.X, o.Max.X), Y: math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Extend grows r to include p.
func (r Rect) Extend(p Vec2) Rect { return r.Union(Rect{Min: p, Max: p}) }

// Shrink insets every edge by d (per axis).
func (r Rect) Shrink(d Vec2) Rect { return Rect{Min: r.Min.Add(d), Max: r.Max.Sub(d)} }

// Expand outsets every edge by d.
func (r Rect) Expand(d float64) Rect { return r.Shrink(Splat(-d)) }

// Scale scales r uniformly around its center.
func (r Rect) Scale(k float64) Rect { return RectFromCenterSize(r.Center(), r.Size().Scale(k)) }

// ConstrainTo applies the minimum translation that keeps r inside outer.
// A rect larger than outer on an axis is aligned to outer's min edge on that axis.
func (r Rect) ConstrainTo(outer Rect) Rect {
	var d Vec2
	switch {
	case r.Width() > outer.Width() || r.Min.X < outer.Min.X:
		d.X = outer.Min.X - r.Min.X
	case r.Max.X > outer.Max.X:
		d.X = outer.Max.X - r.Max.X
	}
	switch {
	case r.Height() > outer.Height() || r.Min.Y < outer.Min.Y:
		d.Y = outer.Min.Y - r.Min.Y
	case r.Max.Y > outer.Max.Y:
		d.Y = outer.Max.Y - r.Max.Y
	}
	return r.Translate(d)
}

// FitAndCenterWithin scales r uniformly, preserving its aspect ratio, so that it
// fills target on one axis, then centers it in target.
func (r Rect) FitAndCenterWithin(target Rect) Rect {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return RectFromCenterSize(target.Center(), Vec2{})
	}
	k := math.Min(target.Width()/w, target.Height()/h)
	return RectFromCenterSize(target.Center(), Vec2{X: w * k, Y: h * k})
}

// WithAspectRatio returns the largest rect with the given aspect ratio that is centered in r.
func (r Rect) WithAspectRatio(aspect float64) Rect {
	if aspect <= 0 || !isFinite(aspect) {
		return r
	}
	return RectFromCenterSize(Vec2{}, Vec2{X: aspect, Y: 1}).FitAndCenterWithin(r)
}

// ToLocalSpace expresses r relative to parent's min corner.
func (r Rect) ToLocalSpace(parent Rect) Rect { return r.Translate(parent.Min.Scale(-1)) }

// ToWorldSpace is the inverse of ToLocalSpace.
func (r Rect) ToWorldSpace(parent Rect) Rect { return r.Translate(parent.Min) }

// TranslateLeftTo moves r horizontally so that its left edge is at x.
func (r Rect) TranslateLeftTo(x float64) Rect { return r.Translate(Vec2{X: x - r.Min.X}) }

// TranslateRightTo moves r horizontally so that its right edge is at x.
func (r Rect) TranslateRightTo(x float64) Rect { return r.Translate(Vec2{X: x - r.Max.X}) }

// TranslateTopTo moves r vertically so that its top edge is at y.
func (r Rect) TranslateTopTo(y float64) Rect { return r.Translate(Vec2{Y: y - r.Min.Y}) }

// TranslateBottomTo moves r vertically so that its bottom edge is at y.
func (r Rect) TranslateBottomTo(y float64) Rect { return r.Translate(Vec2{Y: y - r.Max.Y}) }

// TranslateCenterXTo moves r horizontally so that its center is at x.
func (r Rect) TranslateCenterXTo(x float64) Rect { return r.Translate(Vec2{X: x - r.Center().X}) }

// TranslateCenterYTo moves r vertically so that its center is at y.
func (r Rect) TranslateCenterYTo(y float64) Rect { return r.Translate(Vec2{Y: y - r.Center().Y}) }

// IsFinite reports whether all coordinates are finite.
func (r Rect) IsFinite() bool { return r.Min.IsFinite() && r.Max.IsFinite() }

// IsValid reports whether r is finite with Min <= Max.
func (r Rect) IsValid() bool {
	return r.IsFinite() && r.Min.X <= r.Max.X && r.Min.Y <= r.Max.Y
}

// Normalize repairs r: inverted axes are swapped, non-finite coordinates fall back
// to fallback, and each extent is clamped to at least MinExtent around the center.
func (r Rect) Normalize(fallback Rect) Rect {
	if !r.IsFinite() {
		r = fallback
		if !r.IsFinite() {
			r = Rect{Max: Splat(MinExtent)}
		}
	}
	r = RectFromPoints(r.Min, r.Max)
	c := r.Center()
	if r.Width() < MinExtent {
		r.Min.X, r.Max.X = c.X-MinExtent/2, c.X+MinExtent/2
	}
	if r.Height() < MinExtent {
		r.Min.Y, r.Max.Y = c.Y-MinExtent/2, c.Y+MinExtent/2
	}
	return r
}

// ApproxEqual compares both corners within eps.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return r.Min.ApproxEqual(o.Min, eps) && r.Max.ApproxEqual(o.Max, eps)
}

// Lerp maps a normalized point (0..1 on each axis) into r.
func (r Rect) Lerp(t Vec2) Vec2 {
	return Vec2{X: r.Min.X + t.X*r.Width(), Y: r.Min.Y + t.Y*r.Height()}
}

// Normalized expresses o in r's unit square.
func (r Rect) Normalized(o Rect) Rect {
	w, h := r.Width(), r.Height()
	if w == 0 || h == 0 {
		return Rect{}
	}
	return Rect{
		Min: Vec2{X: (o.Min.X - r.Min.X) / w, Y: (o.Min.Y - r.Min.Y) / h},
		Max: Vec2{X: (o.Max.X - r.Min.X) / w, Y: (o.Max.Y - r.Min.Y) / h},
	}
}

// Denormalized maps a rect in r's unit square back into r's space.
func (r Rect) Denormalized(n Rect) Rect { return Rect{Min: r.Lerp(n.Min), Max: r.Lerp(n.Max)} }

// UnitRect is the normalized full rect [0,1]².
var UnitRect = Rect{Max: Vec2{X: 1, Y: 1}}
