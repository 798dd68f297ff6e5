package compose

import (
	"fmt"

	"github.com/ByLCY/photobook/binding"
	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/page"
)

// defaultLineHeight 是行高相对字号的倍数，排版后端未给出行高时使用。
const defaultLineHeight = 1.2

// Build 把画布页面转换为以毫米为单位、可直接渲染的页面描述。
func Build(pages []*canvas.State, opts BuildOptions) (*Result, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("没有可导出的页面")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("compose: 缺少排版后端 Typesetter")
	}

	res := &Result{Meta: opts.Meta, Pages: make([]Page, 0, len(pages))}
	if res.Meta.Title == "" {
		res.Meta.Title = opts.Project
	}
	for i, st := range pages {
		ctx := binding.Context{PageNumber: i + 1, PageCount: len(pages), Project: opts.Project}
		p, err := buildPage(st, ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		res.Pages = append(res.Pages, p)
	}
	return res, nil
}

func buildPage(st *canvas.State, ctx binding.Context, opts BuildOptions) (Page, error) {
	k := st.Page.MMPerPixel()
	size := st.Page.SizeMM()
	out := Page{Number: ctx.PageNumber, Width: size.X, Height: size.Y, PPI: st.Page.PPI}
	if out.PPI < 1 {
		out.PPI = page.DefaultPPI
	}

	for _, l := range st.Layers.Layers() {
		if !l.Visible && !opts.Debug.IncludeHidden {
			continue
		}
		item, ok, err := buildItem(l, k, ctx, opts.Typesetter)
		if err != nil {
			return Page{}, fmt.Errorf("图层 %s (%s): %w", l.Name, l.ID, err)
		}
		if ok {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func buildItem(l *layer.Layer, k float64, ctx binding.Context, ts Typesetter) (Item, bool, error) {
	rect := l.Rect()
	item := Item{Layer: uint64(l.ID), Frame: toFrame(rect, l.Transform.Rotation, k)}

	switch c := l.Content.(type) {
	case *layer.Photo:
		item.Image = imageBox(c, geom.UnitRect)
	case *layer.TemplatePhoto:
		// 空的模板图片区域只在编辑器中显示占位
		if c.Photo == nil {
			return Item{}, false, nil
		}
		drawn := c.PhotoRect(rect)
		visible := drawn.Intersect(rect)
		if visible.Width() <= 0 || visible.Height() <= 0 {
			return Item{}, false, nil
		}
		item.Frame = toFrame(visible, l.Transform.Rotation, k)
		item.Image = imageBox(c.Photo, drawn.Normalized(visible))
	case *layer.Text:
		tb, err := textBox(c, item.Frame.Width, k, ctx, ts)
		if err != nil {
			return Item{}, false, err
		}
		item.Text = tb
	case *layer.TemplateText:
		tb, err := textBox(&c.Text, item.Frame.Width, k, ctx, ts)
		if err != nil {
			return Item{}, false, err
		}
		item.Text = tb
	case *layer.Shape:
		item.Shape = shapeBox(c, rect, k)
	default:
		return Item{}, false, fmt.Errorf("未知的图层内容 %T", l.Content)
	}
	return item, true, nil
}

func toFrame(r geom.Rect, rotation, k float64) Frame {
	return Frame{
		X:        r.Min.X * k,
		Y:        r.Min.Y * k,
		Width:    r.Width() * k,
		Height:   r.Height() * k,
		Rotation: rotation,
	}
}

// imageBox 把显示帧中的可见部分 visible（相对已裁剪图像归一化）换算为位图帧裁剪。
func imageBox(p *layer.Photo, visible geom.Rect) *ImageBox {
	o := p.Photo.Metadata.Orientation.OrDefault()
	display := p.DisplayCrop().Denormalized(visible)
	return &ImageBox{
		Path:        p.Photo.Path,
		Crop:        o.UnmapRect(display),
		Orientation: int(o),
	}
}

func textBox(t *layer.Text, width, k float64, ctx binding.Context, ts Typesetter) (*TextBox, error) {
	content := binding.Expand(t.Text, ctx)
	fontSize := t.FontSize * k
	lines, err := ts.LayoutLines(content, width, t.FontFamily, fontSize)
	if err != nil {
		return nil, err
	}
	lineHeight := fontSize * defaultLineHeight
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = lineHeight
		}
	}
	return &TextBox{
		Content:    content,
		Font:       t.FontFamily,
		FontSize:   fontSize,
		LineHeight: lineHeight,
		Color:      colorOf(t.Color),
		Align:      hAlignName(t.HAlign),
		VAlign:     vAlignName(t.VAlign),
		Lines:      lines,
	}, nil
}

func shapeBox(s *layer.Shape, rect geom.Rect, k float64) *ShapeBox {
	sb := &ShapeBox{Kind: s.Type.String(), CornerRadius: s.CornerRadius * k}
	if !s.Fill.IsTransparent() && s.Type != layer.ShapeLine {
		c := colorOf(s.Fill)
		sb.Fill = &c
	}
	if s.Stroke != nil {
		sb.Stroke = &Stroke{
			Width:     s.Stroke.Width * k,
			Color:     colorOf(s.Stroke.Color),
			Placement: placementName(s.Stroke.Placement),
		}
	}
	if s.Type == layer.ShapeLine {
		a, b := s.LineEndpoints(rect)
		sb.X1, sb.Y1 = (a.X-rect.Min.X)*k, (a.Y-rect.Min.Y)*k
		sb.X2, sb.Y2 = (b.X-rect.Min.X)*k, (b.Y-rect.Min.Y)*k
	}
	return sb
}

func colorOf(c layer.Color) Color { return Color{R: c.R, G: c.G, B: c.B, A: c.A} }

func hAlignName(a layer.HAlign) string {
	switch a {
	case layer.AlignCenter:
		return "center"
	case layer.AlignRight:
		return "right"
	}
	return "left"
}

func vAlignName(a layer.VAlign) string {
	switch a {
	case layer.AlignMiddle:
		return "middle"
	case layer.AlignBottom:
		return "bottom"
	}
	return "top"
}

func placementName(p layer.StrokePlacement) string {
	switch p {
	case layer.StrokeMiddle:
		return "middle"
	case layer.StrokeOutside:
		return "outside"
	}
	return "inside"
}
