package transform

import (
	"math"

	"github.com/ByLCY/photobook/geom"
)

// State 是图层的几何状态：页面坐标下的矩形、旋转角（弧度，不做归一化）以及交互中的临时状态。
type State struct {
	Rect              geom.Rect  `json:"rect"`
	Rotation          float64    `json:"rotation"`
	LastFrameRotation float64    `json:"-"`
	ActiveHandle      Handle     `json:"-"`
	IsMoving          bool       `json:"-"`
	HandleMode        HandleMode `json:"handle_mode"`
	// NoRotate 禁止双击切换到旋转模式（裁剪框使用）。
	NoRotate bool   `json:"-"`
	ID       uint64 `json:"-"`

	grabbed          bool
	rotating         bool
	changeInRotation float64
}

// New returns a state for rect with a fresh id and Resize(Free) handles.
func New(rect geom.Rect) State {
	return State{Rect: rect, HandleMode: ResizeHandles(Free), ID: NewID()}
}

// WithRotation returns a copy of s rotated to theta.
func (s State) WithRotation(theta float64) State {
	s.Rotation = theta
	s.LastFrameRotation = theta
	return s
}

// ScreenRect maps the page-space rect into the screen-space container.
func (s *State) ScreenRect(container geom.Rect, scale float64) geom.Rect {
	return geom.Rect{
		Min: container.Min.Add(s.Rect.Min.Scale(scale)),
		Max: container.Min.Add(s.Rect.Max.Scale(scale)),
	}
}

// Interacting reports whether a handle or move gesture is in progress.
func (s *State) Interacting() bool { return s.IsMoving || s.ActiveHandle != HandleNone }

// Reset 清除所有交互中的临时状态，保留几何信息。
func (s *State) Reset() {
	s.ActiveHandle = HandleNone
	s.IsMoving = false
	s.grabbed = false
	s.rotating = false
	s.changeInRotation = 0
}

// HandlePositions returns the handle centers for a screen-space rect rotated by theta.
func HandlePositions(inner geom.Rect, theta float64) [8]HandlePos {
	c := inner.RotatedCorners(theta)
	mid := func(a, b geom.Vec2) geom.Vec2 { return a.Add(b).Scale(0.5) }
	return [8]HandlePos{
		{TopLeft, c[0]},
		{TopRight, c[1]},
		{BottomLeft, c[2]},
		{BottomRight, c[3]},
		{MiddleTop, mid(c[0], c[1])},
		{MiddleBottom, mid(c[2], c[3])},
		{MiddleLeft, mid(c[0], c[2])},
		{MiddleRight, mid(c[1], c[3])},
	}
}

// Update 处理一帧输入：container 是页面在屏幕上的矩形，scale 是页面像素到屏幕像素的缩放。
// active 为 false 时只计算绘制矩形，不响应拖动。
func (s *State) Update(in Input, container geom.Rect, scale float64, active bool) Response {
	s.LastFrameRotation = s.Rotation
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}

	wasMoving := s.IsMoving
	wasHandle := s.ActiveHandle
	wasRotating := wasHandle != HandleNone && s.HandleMode.Rotate

	inner := s.ScreenRect(container, scale)
	draw := inner.RotateBBAroundCenter(s.Rotation)
	handles := HandlePositions(inner, s.Rotation)
	hit := draw.Expand(HandleSize / 2)

	resp := Response{Inner: inner, DrawRect: draw, Handles: handles}

	over := in.HasPointer && hit.Contains(in.Pos)
	if in.Pressed && over {
		s.grabbed = true
	}
	if !in.Down {
		s.grabbed = false
	}
	resp.MouseDown = s.grabbed && in.Down
	resp.Clicked = in.Clicked && over
	resp.DoubleClicked = in.DoubleClicked && over

	if !active {
		s.Reset()
		return s.finish(resp, wasMoving, wasHandle, wasRotating)
	}

	if resp.DoubleClicked && !s.NoRotate {
		s.HandleMode = s.HandleMode.Toggled()
	}

	if !resp.MouseDown {
		s.ActiveHandle = HandleNone
		s.IsMoving = false
		s.rotating = false
		return s.finish(resp, wasMoving, wasHandle, wasRotating)
	}

	if s.ActiveHandle == HandleNone && !s.IsMoving && in.Pressed {
		for _, h := range handles {
			if h.Rect().Contains(in.Pos) {
				s.ActiveHandle = h.Handle
				break
			}
		}
	}

	switch {
	case s.ActiveHandle != HandleNone && s.HandleMode.Rotate:
		s.rotate(in.Pos, inner.Center())
	case s.ActiveHandle != HandleNone:
		s.resize(s.ActiveHandle, in.Delta.Div(scale), s.effectiveMode(in))
	case s.IsMoving || draw.Contains(in.Pos):
		s.IsMoving = true
		s.Rect = s.Rect.Translate(in.Delta.Div(scale))
	}

	resp.Inner = s.ScreenRect(container, scale)
	resp.DrawRect = resp.Inner.RotateBBAroundCenter(s.Rotation)
	resp.Handles = HandlePositions(resp.Inner, s.Rotation)
	return s.finish(resp, wasMoving, wasHandle, wasRotating)
}

func (s *State) finish(resp Response, wasMoving bool, wasHandle Handle, wasRotating bool) Response {
	nowHandle := s.ActiveHandle != HandleNone
	nowRotating := nowHandle && s.HandleMode.Rotate
	nowResizing := nowHandle && !s.HandleMode.Rotate
	wasResizing := wasHandle != HandleNone && !wasRotating

	resp.BeganMoving = s.IsMoving && !wasMoving
	resp.EndedMoving = wasMoving && !s.IsMoving
	resp.BeganRotating = nowRotating && !wasRotating
	resp.EndedRotating = wasRotating && !nowRotating
	resp.BeganResizing = nowResizing && !wasResizing
	resp.EndedResizing = wasResizing && !nowResizing
	return resp
}

// effectiveMode applies modifier precedence: Shift, then Alt, then the handle mode.
func (s *State) effectiveMode(in Input) ResizeMode {
	switch {
	case in.Shift:
		return ConstrainedAspectRatio
	case in.Alt:
		return MirrorAxis
	default:
		return s.HandleMode.Resize
	}
}

func (s *State) rotate(pointer, center geom.Vec2) {
	angle := pointer.Sub(center).Angle()
	if !s.rotating {
		s.changeInRotation = s.Rotation - angle
		s.rotating = true
	}
	s.Rotation = s.changeInRotation + angle
}
