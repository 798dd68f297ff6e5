package transform

import (
	"sync/atomic"

	"github.com/ByLCY/photobook/geom"
)

// HandleSize 是控制点在屏幕空间中的边长（像素），不随缩放变化。
const HandleSize = 10.0

// Handle 标识八个控制点之一；HandleNone 表示没有激活的控制点。
type Handle int

const (
	HandleNone Handle = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	MiddleTop
	MiddleBottom
	MiddleLeft
	MiddleRight
)

// Handles 以固定顺序列出全部控制点。
var Handles = [8]Handle{TopLeft, TopRight, BottomLeft, BottomRight, MiddleTop, MiddleBottom, MiddleLeft, MiddleRight}

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case MiddleTop:
		return "middle-top"
	case MiddleBottom:
		return "middle-bottom"
	case MiddleLeft:
		return "middle-left"
	case MiddleRight:
		return "middle-right"
	default:
		return "none"
	}
}

// IsCorner reports whether h is one of the four corner handles.
func (h Handle) IsCorner() bool {
	return h == TopLeft || h == TopRight || h == BottomLeft || h == BottomRight
}

// ResizeMode 决定拖动控制点时矩形的变化方式。
type ResizeMode int

const (
	Free                   ResizeMode = iota // 被拖动的边随指针移动
	MirrorAxis                               // 对边做镜像移动（Alt）
	ConstrainedAspectRatio                   // 保持宽高比（Shift）
)

func (m ResizeMode) String() string {
	switch m {
	case MirrorAxis:
		return "mirror-axis"
	case ConstrainedAspectRatio:
		return "constrained-aspect-ratio"
	default:
		return "free"
	}
}

// HandleMode 是 Resize(ResizeMode) 与 Rotate 的二选一。
type HandleMode struct {
	Rotate bool       `json:"rotate"`
	Resize ResizeMode `json:"resize"`
}

// ResizeHandles returns the Resize(m) handle mode.
func ResizeHandles(m ResizeMode) HandleMode { return HandleMode{Resize: m} }

// RotateHandles is the Rotate handle mode.
var RotateHandles = HandleMode{Rotate: true}

// Toggled switches between Resize(Free) and Rotate.
func (m HandleMode) Toggled() HandleMode {
	if m.Rotate {
		return ResizeHandles(Free)
	}
	return RotateHandles
}

var stableIDs atomic.Uint64

// NewID returns a process-wide unique id for interaction tracking.
func NewID() uint64 { return stableIDs.Add(1) }

// Input 是一帧内与变换相关的指针状态（屏幕坐标）。
type Input struct {
	Pos           geom.Vec2
	Delta         geom.Vec2
	HasPointer    bool
	Pressed       bool // 本帧主键按下
	Down          bool // 主键保持按下
	Released      bool // 本帧主键抬起
	Clicked       bool
	DoubleClicked bool
	Shift         bool
	Alt           bool
}

// HandlePos pairs a handle with its center in screen space.
type HandlePos struct {
	Handle Handle
	Center geom.Vec2
}

// Rect returns the hit area of the handle.
func (h HandlePos) Rect() geom.Rect {
	return geom.RectFromCenterSize(h.Center, geom.Splat(HandleSize))
}

// Response 描述一帧交互的可观察结果。
type Response struct {
	// Inner 是未旋转的屏幕矩形，DrawRect 是其旋转后的外接矩形。
	Inner    geom.Rect
	DrawRect geom.Rect
	Handles  [8]HandlePos

	BeganMoving   bool
	BeganResizing bool
	BeganRotating bool
	EndedMoving   bool
	EndedResizing bool
	EndedRotating bool
	MouseDown     bool
	Clicked       bool
	DoubleClicked bool
}

// Ended reports whether a move, resize or rotate gesture finished this frame.
func (r Response) Ended() bool { return r.EndedMoving || r.EndedResizing || r.EndedRotating }

// Began reports whether a gesture started this frame.
func (r Response) Began() bool { return r.BeganMoving || r.BeganResizing || r.BeganRotating }
