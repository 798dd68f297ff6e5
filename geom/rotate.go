package geom

import "seehuhn.de/go/geom/matrix"

// aboutPoint builds the affine map rotating by theta radians around pivot.
// Positive angles turn clockwise on screen because the y axis points down.
func aboutPoint(theta float64, pivot Vec2) matrix.Matrix {
	return matrix.Translate(-pivot.X, -pivot.Y).
		Mul(matrix.Rotate(theta)).
		Mul(matrix.Translate(pivot.X, pivot.Y))
}

func apply(m matrix.Matrix, p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// RotatePoint rotates p around pivot by theta radians.
func RotatePoint(p, pivot Vec2, theta float64) Vec2 {
	if theta == 0 {
		return p
	}
	return apply(aboutPoint(theta, pivot), p)
}

// RotatedCorners returns the corners of r rotated by theta around its center,
// ordered top-left, top-right, bottom-left, bottom-right.
func (r Rect) RotatedCorners(theta float64) [4]Vec2 {
	corners := r.Corners()
	if theta == 0 {
		return corners
	}
	m := aboutPoint(theta, r.Center())
	for i, c := range corners {
		corners[i] = apply(m, c)
	}
	return corners
}

// RotateBBAroundCenter returns the smallest axis-aligned rect enclosing r rotated around its center.
func (r Rect) RotateBBAroundCenter(theta float64) Rect {
	return r.RotateBBAroundPoint(theta, r.Center())
}

// RotateBBAroundPoint returns the smallest axis-aligned rect enclosing r rotated around pivot.
func (r Rect) RotateBBAroundPoint(theta float64, pivot Vec2) Rect {
	if theta == 0 {
		return r
	}
	m := aboutPoint(theta, pivot)
	corners := r.Corners()
	out := RectFromPoints(apply(m, corners[0]), apply(m, corners[1]))
	out = out.Extend(apply(m, corners[2]))
	return out.Extend(apply(m, corners[3]))
}

// ContainsRotated reports whether p lies inside r rotated by theta around its center.
func (r Rect) ContainsRotated(p Vec2, theta float64) bool {
	if theta == 0 {
		return r.Contains(p)
	}
	return r.Contains(RotatePoint(p, r.Center(), -theta))
}
