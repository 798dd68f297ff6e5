package transform

import (
	"math"

	"github.com/ByLCY/photobook/geom"
)

// 各控制点影响的边：-1 表示最小边，+1 表示最大边，0 表示该轴不受影响。
func handleAxes(h Handle) (sx, sy float64) {
	switch h {
	case TopLeft:
		return -1, -1
	case TopRight:
		return 1, -1
	case BottomLeft:
		return -1, 1
	case BottomRight:
		return 1, 1
	case MiddleTop:
		return 0, -1
	case MiddleBottom:
		return 0, 1
	case MiddleLeft:
		return -1, 0
	case MiddleRight:
		return 1, 0
	}
	return 0, 0
}

// Resize returns r after dragging handle h by d (page units) under mode.
// The result never drops below geom.MinExtent on either axis.
func Resize(r geom.Rect, h Handle, d geom.Vec2, mode ResizeMode) geom.Rect {
	var out geom.Rect
	switch mode {
	case ConstrainedAspectRatio:
		out = resizeConstrained(r, h, d)
		if !out.IsFinite() || out.Width() < geom.MinExtent || out.Height() < geom.MinExtent {
			return r
		}
		return out
	case MirrorAxis:
		out = resizeMirror(r, h, d)
	default:
		out = resizeFree(r, h, d)
	}
	return clampAxes(r, out)
}

func (s *State) resize(h Handle, d geom.Vec2, mode ResizeMode) {
	s.Rect = Resize(s.Rect, h, d, mode)
}

func resizeFree(r geom.Rect, h Handle, d geom.Vec2) geom.Rect {
	sx, sy := handleAxes(h)
	switch sx {
	case -1:
		r.Min.X += d.X
	case 1:
		r.Max.X += d.X
	}
	switch sy {
	case -1:
		r.Min.Y += d.Y
	case 1:
		r.Max.Y += d.Y
	}
	return r
}

func resizeMirror(r geom.Rect, h Handle, d geom.Vec2) geom.Rect {
	sx, sy := handleAxes(h)
	switch sx {
	case -1:
		r.Min.X += d.X
		r.Max.X -= d.X
	case 1:
		r.Max.X += d.X
		r.Min.X -= d.X
	}
	switch sy {
	case -1:
		r.Min.Y += d.Y
		r.Max.Y -= d.Y
	case 1:
		r.Max.Y += d.Y
		r.Min.Y -= d.Y
	}
	return r
}

// resizeConstrained 保持宽高比：角点取拖动量较大的轴并固定对角，边中点按比例缩放两轴并固定对边。
func resizeConstrained(r geom.Rect, h Handle, d geom.Vec2) geom.Rect {
	w, ht := r.Width(), r.Height()
	if w <= 0 || ht <= 0 {
		return r
	}
	aspect := w / ht
	sx, sy := handleAxes(h)
	gx, gy := sx*d.X, sy*d.Y

	var nw, nh float64
	switch {
	case sx != 0 && sy != 0:
		if math.Abs(d.X) >= math.Abs(d.Y) {
			nw = w + gx
			nh = nw / aspect
		} else {
			nh = ht + gy
			nw = nh * aspect
		}
	case sx != 0:
		nw = w + gx
		nh = nw / aspect
	default:
		nh = ht + gy
		nw = nh * aspect
	}

	var minX, minY float64
	switch sx {
	case -1:
		minX = r.Max.X - nw
	case 1:
		minX = r.Min.X
	default:
		minX = r.Center().X - nw/2
	}
	switch sy {
	case -1:
		minY = r.Max.Y - nh
	case 1:
		minY = r.Min.Y
	default:
		minY = r.Center().Y - nh/2
	}
	return geom.R(minX, minY, nw, nh)
}

// clampAxes 逐轴检查，某一轴非法（过小或非有限）时保留原来的边。
func clampAxes(prev, next geom.Rect) geom.Rect {
	okX := !math.IsNaN(next.Min.X) && !math.IsNaN(next.Max.X) &&
		!math.IsInf(next.Min.X, 0) && !math.IsInf(next.Max.X, 0) &&
		next.Width() >= geom.MinExtent
	okY := !math.IsNaN(next.Min.Y) && !math.IsNaN(next.Max.Y) &&
		!math.IsInf(next.Min.Y, 0) && !math.IsInf(next.Max.Y, 0) &&
		next.Height() >= geom.MinExtent
	if !okX {
		next.Min.X, next.Max.X = prev.Min.X, prev.Max.X
	}
	if !okY {
		next.Min.Y, next.Max.Y = prev.Min.Y, prev.Max.Y
	}
	return next
}
