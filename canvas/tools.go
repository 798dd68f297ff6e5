package canvas

import (
	"fmt"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/layer"
)

// Tool 是工具栏中的工具。
type Tool int

const (
	ToolSelect Tool = iota
	ToolText
	ToolRectangle
	ToolEllipse
	ToolLine
)

var toolNames = [...]string{
	ToolSelect:    "Select",
	ToolText:      "Text",
	ToolRectangle: "Rectangle",
	ToolEllipse:   "Ellipse",
	ToolLine:      "Line",
}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ToolState 是工具状态机：Idle(tool) 或 Active(tool, start)。
// Start 与 Current 都是页面坐标。
type ToolState struct {
	Tool    Tool
	Active  bool
	Start   geom.Vec2
	Current geom.Vec2
}

// Idle returns the idle state for t.
func Idle(t Tool) ToolState { return ToolState{Tool: t} }

// Activate returns the active state for t started at p.
func Activate(t Tool, p geom.Vec2) ToolState {
	return ToolState{Tool: t, Active: true, Start: p, Current: p}
}

// PreviewRect 返回拖动中的预览矩形（页面坐标）。
func (t ToolState) PreviewRect() geom.Rect { return geom.RectFromPoints(t.Start, t.Current) }

// TextToolSettings 是新建文本图层的默认样式。
type TextToolSettings struct {
	FontSize   float64
	FontFamily string
	Color      layer.Color
	HAlign     layer.HAlign
	VAlign     layer.VAlign
}

// DefaultTextTool returns the default text tool settings.
func DefaultTextTool() TextToolSettings {
	t := layer.NewText("", 0)
	return TextToolSettings{FontSize: t.FontSize, FontFamily: t.FontFamily, Color: t.Color}
}

// ShapeToolSettings 是新建矩形/椭圆的默认样式。
type ShapeToolSettings struct {
	Fill         layer.Color
	Stroke       *layer.Stroke
	CornerRadius float64
}

// DefaultShapeTool returns a light gray fill with a 2 px black outline.
func DefaultShapeTool() ShapeToolSettings {
	return ShapeToolSettings{Fill: layer.LightGray, Stroke: &layer.Stroke{Width: 2, Color: layer.Black, Placement: layer.StrokeMiddle}}
}

// LineToolSettings 是新建直线的描边。
type LineToolSettings struct {
	Stroke layer.Stroke
}

// DefaultLineTool returns a 2 px black line.
func DefaultLineTool() LineToolSettings {
	return LineToolSettings{Stroke: layer.Stroke{Width: 2, Color: layer.Black}}
}

// ToolPress 处理主键按下（页面坐标）。Select 工具只在没有选中图层时开始框选。
func (s *State) ToolPress(p geom.Vec2) bool {
	if s.Tool.Active {
		return false
	}
	if s.Tool.Tool == ToolSelect && s.HasSelection() {
		return false
	}
	s.Tool = Activate(s.Tool.Tool, p)
	return true
}

// ToolDrag 更新拖动中的预览位置。
func (s *State) ToolDrag(p geom.Vec2) {
	if s.Tool.Active {
		s.Tool.Current = p
	}
}

// ToolRelease 在主键抬起时提交当前工具的操作，返回应记录的历史类型。
// 工具回到 Idle(Select)。ok 为 false 表示没有需要记录的改动。
func (s *State) ToolRelease(p geom.Vec2) (kind history.Kind, ok bool) {
	if !s.Tool.Active {
		return 0, false
	}
	t := s.Tool
	t.Current = p
	s.Tool = Idle(ToolSelect)
	rect := t.PreviewRect()

	switch t.Tool {
	case ToolSelect:
		s.SelectIntersecting(rect)
		if s.HasSelection() {
			return history.SelectLayer, true
		}
		return history.DeselectLayer, true
	case ToolText:
		txt := layer.NewText("", s.TextTool.FontSize)
		txt.FontFamily = s.TextTool.FontFamily
		txt.Color = s.TextTool.Color
		txt.HAlign, txt.VAlign = s.TextTool.HAlign, s.TextTool.VAlign
		l := layer.NewTextLayer(rect.Normalize(rect), txt)
		s.AddLayer(l)
		s.Select(l.ID, false)
		s.TextEdit = TextEdit{Mode: EditBegin, Layer: l.ID}
		return history.AddText, true
	case ToolRectangle, ToolEllipse:
		settings, kind := s.RectTool, layer.ShapeRect
		if t.Tool == ToolEllipse {
			settings, kind = s.EllipseTool, layer.ShapeEllipse
		}
		sh := &layer.Shape{Type: kind, Fill: settings.Fill, CornerRadius: settings.CornerRadius}
		if settings.Stroke != nil {
			st := *settings.Stroke
			sh.Stroke = &st
		}
		l := layer.NewShapeLayer(rect.Normalize(rect), sh)
		s.AddLayer(l)
		s.Select(l.ID, false)
		return history.AddShape, true
	case ToolLine:
		l := layer.NewLineLayer(t.Start, p, s.LineTool.Stroke)
		s.AddLayer(l)
		s.Select(l.ID, false)
		return history.AddShape, true
	}
	return 0, false
}
