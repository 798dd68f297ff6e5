package template

import (
	"errors"
	"slices"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/page"
)

// 模板是一组按页面相对坐标描述的区域（图片或文本），实例化时生成对应的模板图层。

// ErrUnknown is returned when a template name is not in the catalogue.
var ErrUnknown = errors.New("未知的模板")

// RegionKind 区分图片区域与文本区域。
type RegionKind int

const (
	RegionImage RegionKind = iota
	RegionText
)

func (k RegionKind) String() string {
	if k == RegionText {
		return "text"
	}
	return "image"
}

// Region 的位置与尺寸都是相对页面的 [0,1] 坐标。
type Region struct {
	Kind     RegionKind `json:"kind"`
	Position geom.Vec2  `json:"relative_position"`
	Size     geom.Vec2  `json:"relative_size"`
	// 仅文本区域使用
	SampleText string  `json:"sample_text,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
}

// Normalized returns the region as a normalized rect.
func (r Region) Normalized() geom.Rect {
	return geom.RectFromMinSize(r.Position, r.Size)
}

// Rect maps the region onto a page rectangle.
func (r Region) Rect(pageRect geom.Rect) geom.Rect {
	return pageRect.Denormalized(r.Normalized())
}

// Template 是命名的页面预设。
type Template struct {
	Name    string    `json:"name"`
	Page    page.Page `json:"page"`
	Regions []Region  `json:"regions"`
}

// Images returns the image regions in declaration order.
func (t Template) Images() []Region {
	var out []Region
	for _, r := range t.Regions {
		if r.Kind == RegionImage {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a copy that shares no region slice with t.
func (t Template) Clone() Template {
	t.Regions = slices.Clone(t.Regions)
	return t
}
