package canvas

import (
	"math"

	"github.com/ByLCY/photobook/geom"
)

// ZoomStep 是滚轮每一格的缩放倍率。
const ZoomStep = 1.1

// initialMargin 让页面四周留出约 10% 的空白。
const initialMargin = 1.1

// InitialZoom returns the zoom that fits page inside available with a margin.
func InitialZoom(available geom.Rect, page geom.Vec2) float64 {
	if page.X <= 0 || page.Y <= 0 {
		return 1
	}
	z := math.Min(available.Width()/(page.X*initialMargin), available.Height()/(page.Y*initialMargin))
	if z <= 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return 1
	}
	return z
}

// EnsureZoom 在第一次显示时计算初始缩放，之后不再重新计算。
func (s *State) EnsureZoom(available geom.Rect) {
	if s.zoomReady {
		return
	}
	s.Zoom = InitialZoom(available, s.Page.SizePixels())
	s.Offset = geom.Vec2{}
	s.zoomReady = true
}

// PageScreenRect 返回页面在屏幕上的矩形：以画布中心加平移量为中心。
func (s *State) PageScreenRect(available geom.Rect) geom.Rect {
	return geom.RectFromCenterSize(available.Center().Add(s.Offset), s.Page.SizePixels().Scale(s.Zoom))
}

// ScreenToPage converts a screen point into page pixels.
func (s *State) ScreenToPage(available geom.Rect, p geom.Vec2) geom.Vec2 {
	return p.Sub(s.PageScreenRect(available).Min).Div(s.zoom())
}

// PageToScreen converts a page point into screen coordinates.
func (s *State) PageToScreen(available geom.Rect, p geom.Vec2) geom.Vec2 {
	return s.PageScreenRect(available).Min.Add(p.Scale(s.zoom()))
}

func (s *State) zoom() float64 {
	if s.Zoom <= 0 || math.IsNaN(s.Zoom) {
		return 1
	}
	return s.Zoom
}

// ZoomAt 按滚轮方向缩放，并保持指针下的页面点不动。
// scroll > 0 放大一格，scroll < 0 缩小一格。工具处于 Active 时不缩放。
func (s *State) ZoomAt(available geom.Rect, pointer geom.Vec2, scroll float64) bool {
	if scroll == 0 || s.Tool.Active {
		return false
	}
	k := ZoomStep
	if scroll < 0 {
		k = 1 / ZoomStep
	}
	center := available.Center().Add(s.Offset)
	s.Offset = s.Offset.Add(pointer.Sub(center).Scale(1 - k))
	s.Zoom = s.zoom() * k
	return true
}

// Pan translates the view by a screen-space delta.
func (s *State) Pan(delta geom.Vec2) {
	s.Offset = s.Offset.Add(delta)
}
