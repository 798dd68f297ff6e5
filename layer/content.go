package layer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/template"
)

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

var (
	Black       = Color{A: 255}
	White       = Color{R: 255, G: 255, B: 255, A: 255}
	LightGray   = Color{R: 211, G: 211, B: 211, A: 255}
	Transparent = Color{}
)

// RGBA converts to the standard library color type.
func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// IsTransparent reports whether nothing would be painted.
func (c Color) IsTransparent() bool { return c.A == 0 }

// ParseHex 解析 #rrggbb 或 #rrggbbaa。
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var c Color
	switch len(s) {
	case 6:
		c.A = 255
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return Color{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("颜色格式应为 #rrggbb 或 #rrggbbaa: %q", s)
	}
	return c, nil
}

// HAlign 文本水平对齐。
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign 文本垂直对齐。
type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Kind 是图层内容的类型标签。
type Kind int

const (
	KindPhoto Kind = iota
	KindText
	KindShape
	KindTemplatePhoto
	KindTemplateText
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindTemplatePhoto:
		return "template_photo"
	case KindTemplateText:
		return "template_text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Content 是图层内容的封闭变体：*Photo、*Text、*Shape、*TemplatePhoto、*TemplateText。
type Content interface {
	Kind() Kind
	Clone() Content
}

// Photo 内容：Crop 是位图帧（EXIF 旋转之前）中的归一化子矩形。
type Photo struct {
	Photo photo.Photo `json:"photo"`
	Crop  geom.Rect   `json:"crop"`
}

// NewPhotoContent returns photo content with the full-frame crop.
func NewPhotoContent(p photo.Photo) *Photo { return &Photo{Photo: p, Crop: geom.UnitRect} }

func (p *Photo) Kind() Kind { return KindPhoto }

func (p *Photo) Clone() Content {
	c := *p
	return &c
}

// DisplayCrop returns the crop expressed in the displayed (post-EXIF) frame.
func (p *Photo) DisplayCrop() geom.Rect {
	return p.Photo.Metadata.Orientation.MapRect(p.Crop)
}

// AspectRatio 返回裁剪后在显示方向下的宽高比。
func (p *Photo) AspectRatio() float64 {
	w, h := p.Photo.Metadata.DisplaySize()
	dc := p.DisplayCrop()
	cw, ch := w*dc.Width(), h*dc.Height()
	if cw <= 0 || ch <= 0 {
		return p.Photo.AspectRatio()
	}
	return cw / ch
}

// Text 内容。
type Text struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"font_size"`
	FontFamily string  `json:"font_family"`
	Color      Color   `json:"color"`
	HAlign     HAlign  `json:"h_align"`
	VAlign     VAlign  `json:"v_align"`
}

// DefaultFontFamily is used when a text layer names no family.
const DefaultFontFamily = "Go"

// NewText returns text content with default styling.
func NewText(s string, fontSize float64) *Text {
	if fontSize <= 0 {
		fontSize = 24
	}
	return &Text{Text: s, FontSize: fontSize, FontFamily: DefaultFontFamily, Color: Black}
}

func (t *Text) Kind() Kind { return KindText }

func (t *Text) Clone() Content {
	c := *t
	return &c
}

// ShapeKind 区分矩形、椭圆与直线。
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
	ShapeLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeEllipse:
		return "ellipse"
	case ShapeLine:
		return "line"
	default:
		return "rect"
	}
}

// StrokePlacement 描边相对于形状边界的位置。
type StrokePlacement int

const (
	StrokeInside StrokePlacement = iota
	StrokeMiddle
	StrokeOutside
)

// Stroke 描述描边，Width 必须为正。
type Stroke struct {
	Width     float64         `json:"width"`
	Color     Color           `json:"color"`
	Placement StrokePlacement `json:"placement"`
}

// Shape 内容。直线必须有描边；直线的两个端点是矩形的对角，AntiDiagonal 为 true 时取右上与左下。
type Shape struct {
	Type         ShapeKind `json:"kind"`
	CornerRadius float64   `json:"corner_radius,omitempty"`
	AntiDiagonal bool      `json:"anti_diagonal,omitempty"`
	Fill         Color     `json:"fill"`
	Stroke       *Stroke   `json:"stroke,omitempty"`
}

func (s *Shape) Kind() Kind { return KindShape }

func (s *Shape) Clone() Content {
	c := *s
	if s.Stroke != nil {
		st := *s.Stroke
		c.Stroke = &st
	}
	return &c
}

// Validate 检查形状约束。
func (s *Shape) Validate() error {
	if s.CornerRadius < 0 {
		return fmt.Errorf("圆角半径不能为负: %g", s.CornerRadius)
	}
	if s.Stroke != nil && s.Stroke.Width <= 0 {
		return fmt.Errorf("描边宽度必须为正: %g", s.Stroke.Width)
	}
	if s.Type == ShapeLine && s.Stroke == nil {
		return fmt.Errorf("直线必须设置描边")
	}
	return nil
}

// LineEndpoints returns the two endpoints a line shape draws between.
func (s *Shape) LineEndpoints(r geom.Rect) (geom.Vec2, geom.Vec2) {
	if s.AntiDiagonal {
		return geom.V(r.Max.X, r.Min.Y), geom.V(r.Min.X, r.Max.Y)
	}
	return r.Min, r.Max
}

// LineRect 把直线的起点与终点规范化为矩形与对角线方向。
func LineRect(start, end geom.Vec2) (geom.Rect, bool) {
	anti := (end.X-start.X)*(end.Y-start.Y) < 0
	return geom.RectFromPoints(start, end), anti
}

// ScaleMode 决定模板图片区域内照片的缩放方式。
type ScaleMode int

const (
	ScaleFit ScaleMode = iota
	ScaleFill
	ScaleStretch
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleFill:
		return "fill"
	case ScaleStretch:
		return "stretch"
	default:
		return "fit"
	}
}

// TemplatePhoto 是模板中的图片区域，Photo 为空表示尚未放入照片。
type TemplatePhoto struct {
	Region    template.Region `json:"region"`
	Photo     *Photo          `json:"photo,omitempty"`
	ScaleMode ScaleMode       `json:"scale_mode"`
}

func (t *TemplatePhoto) Kind() Kind { return KindTemplatePhoto }

func (t *TemplatePhoto) Clone() Content {
	c := *t
	if t.Photo != nil {
		c.Photo = t.Photo.Clone().(*Photo)
	}
	return &c
}

// PhotoRect 按缩放模式计算照片在区域 rect 内的绘制矩形。
func (t *TemplatePhoto) PhotoRect(rect geom.Rect) geom.Rect {
	if t.Photo == nil {
		return rect
	}
	img := geom.RectFromCenterSize(rect.Center(), geom.V(t.Photo.AspectRatio(), 1))
	switch t.ScaleMode {
	case ScaleFill:
		fit := img.FitAndCenterWithin(rect)
		if fit.Width() <= 0 || fit.Height() <= 0 {
			return rect
		}
		return fit.Scale(math.Max(rect.Width()/fit.Width(), rect.Height()/fit.Height()))
	case ScaleStretch:
		return rect
	default:
		return img.FitAndCenterWithin(rect)
	}
}

// TemplateText 是模板中的文本区域。
type TemplateText struct {
	Region template.Region `json:"region"`
	Text   Text            `json:"text"`
}

func (t *TemplateText) Kind() Kind { return KindTemplateText }

func (t *TemplateText) Clone() Content {
	c := *t
	return &c
}

var (
	_ Content = (*Photo)(nil)
	_ Content = (*Text)(nil)
	_ Content = (*Shape)(nil)
	_ Content = (*TemplatePhoto)(nil)
	_ Content = (*TemplateText)(nil)
)
