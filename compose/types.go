package compose

import (
	"math"

	"seehuhn.de/go/geom/matrix"

	"github.com/ByLCY/photobook/geom"
)

// 该文件定义导出用的页面描述，供渲染器与调试 JSON 共用。所有长度单位均为毫米。

// Result 保存全部待渲染页面。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Page 记录页面尺寸与按绘制顺序（自底向上）排列的元素。
type Page struct {
	Number int     `json:"number"` // 从 1 开始
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	PPI    int     `json:"ppi"`
	Items  []Item  `json:"items"`
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Frame 是元素在页面上的未旋转矩形，Rotation 为绕中心顺时针旋转的弧度。
type Frame struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Center returns the frame center in page coordinates.
func (f Frame) Center() (float64, float64) {
	return f.X + f.Width/2, f.Y + f.Height/2
}

// Matrix maps frame-local coordinates (origin at the top-left corner, y down)
// to page coordinates.
func (f Frame) Matrix() matrix.Matrix {
	cx, cy := f.Center()
	return matrix.Translate(-f.Width/2, -f.Height/2).
		Mul(matrix.Rotate(f.Rotation)).
		Mul(matrix.Translate(cx, cy))
}

// Bounds returns the axis-aligned page rectangle covered by the rotated frame.
func (f Frame) Bounds() geom.Rect {
	return geom.R(f.X, f.Y, f.Width, f.Height).RotateBBAroundCenter(f.Rotation)
}

// Degrees returns the rotation in degrees.
func (f Frame) Degrees() float64 { return f.Rotation * 180 / math.Pi }

// Item 是一个已定位的可绘制元素，Image/Text/Shape 三者恰有一个非空。
type Item struct {
	Layer uint64    `json:"layer"`
	Frame Frame     `json:"frame"`
	Image *ImageBox `json:"image,omitempty"`
	Text  *TextBox  `json:"text,omitempty"`
	Shape *ShapeBox `json:"shape,omitempty"`
}

// Kind returns the name of the populated variant.
func (it Item) Kind() string {
	switch {
	case it.Image != nil:
		return "image"
	case it.Text != nil:
		return "text"
	case it.Shape != nil:
		return "shape"
	}
	return "unknown"
}

// ImageBox 描述一张照片：Crop 是位图帧中的归一化子矩形，先裁剪再按 Orientation 旋转。
type ImageBox struct {
	Path        string    `json:"path"`
	Crop        geom.Rect `json:"crop"`
	Orientation int       `json:"orientation"`
}

// TextBox 表示一个已经排好行的文本块。
type TextBox struct {
	Content    string     `json:"content"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	LineHeight float64    `json:"lineHeight"`
	Color      Color      `json:"color"`
	Align      string     `json:"align"`  // left/center/right
	VAlign     string     `json:"valign"` // top/middle/bottom
	Lines      []TextLine `json:"lines"`
}

// Height returns the total height of the typeset lines.
func (tb TextBox) Height() float64 {
	var h float64
	for _, l := range tb.Lines {
		h += l.GapBefore + l.Height
	}
	return h
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// ShapeBox 描述矩形、椭圆或直线。直线端点为相对 Frame 左上角的坐标。
type ShapeBox struct {
	Kind         string  `json:"kind"` // rect/ellipse/line
	CornerRadius float64 `json:"cornerRadius,omitempty"`
	Fill         *Color  `json:"fill,omitempty"` // 为空表示不填充
	Stroke       *Stroke `json:"stroke,omitempty"`
	X1           float64 `json:"x1,omitempty"`
	Y1           float64 `json:"y1,omitempty"`
	X2           float64 `json:"x2,omitempty"`
	Y2           float64 `json:"y2,omitempty"`
}

// Stroke 描述描边，Placement 为 inside/middle/outside。
type Stroke struct {
	Width     float64 `json:"width"`
	Color     Color   `json:"color"`
	Placement string  `json:"placement"`
}
