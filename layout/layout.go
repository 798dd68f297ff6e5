package layout

// 快速布局：把当前页面中参与布局的图层重新排布到页面矩形内。
// 所有算法都是确定性的，只依赖宽高比、顺序、页面、间距与边距。

import (
	"fmt"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
)

// Item 是参与布局的一个元素。
type Item struct {
	ID          layer.ID
	AspectRatio float64
}

// Placement 是布局输出：元素 id 与其在页面坐标中的矩形。
type Placement struct {
	ID   layer.ID
	Rect geom.Rect
}

// Margin 以页面像素为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// MarginAll 四边相同的边距。
func MarginAll(v float64) Margin { return Margin{Top: v, Right: v, Bottom: v, Left: v} }

func (m Margin) transpose() Margin {
	return Margin{Top: m.Left, Right: m.Bottom, Bottom: m.Right, Left: m.Top}
}

// Inset returns r shrunk by the margin.
func (m Margin) Inset(r geom.Rect) geom.Rect {
	return geom.Rect{
		Min: geom.V(r.Min.X+m.Left, r.Min.Y+m.Top),
		Max: geom.V(r.Max.X-m.Right, r.Max.Y-m.Bottom),
	}
}

// Params 是一次布局的外部参数。
type Params struct {
	Page   geom.Rect // 页面矩形（像素）
	Gap    float64
	Margin Margin
}

// DefaultParams 按页面尺寸给出默认间距与边距（短边的 2%）。
func DefaultParams(page geom.Rect) Params {
	unit := 0.02 * min(page.Width(), page.Height())
	return Params{Page: page, Gap: unit, Margin: MarginAll(unit)}
}

// Kind 区分布局算法。
type Kind int

const (
	VerticalStack Kind = iota
	HorizontalStack
	Grid
	CenterWeightedGrid
	Highlight
	Zigzag
)

var kindNames = [...]string{
	VerticalStack:      "VerticalStack",
	HorizontalStack:    "HorizontalStack",
	Grid:               "Grid",
	CenterWeightedGrid: "CenterWeightedGrid",
	Highlight:          "Highlight",
	Zigzag:             "Zigzag",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Layout 描述一种可应用的快速布局。值类型，可比较，可序列化。
type Layout struct {
	Kind    Kind    `json:"kind"`
	Padding float64 `json:"padding,omitempty"` // 仅 Highlight 使用，区域内的相对留白
}

func (l Layout) String() string {
	if l.Kind == Highlight {
		return fmt.Sprintf("%s(%.2g)", l.Kind, l.Padding)
	}
	return l.Kind.String()
}

// Available 返回 n 个元素时可选的布局。n=0 返回空，调用方应提示先添加照片。
func Available(n int) []Layout {
	if n <= 0 {
		return nil
	}
	out := []Layout{{Kind: VerticalStack}, {Kind: HorizontalStack}}
	if n >= 2 {
		out = append(out, Layout{Kind: Highlight, Padding: 0.1}, Layout{Kind: Highlight, Padding: 0.2})
	}
	if n >= 3 {
		out = append(out, Layout{Kind: Grid}, Layout{Kind: CenterWeightedGrid}, Layout{Kind: Zigzag})
	}
	return out
}

// Apply 计算每个元素的新矩形，输出顺序与 items 相同。
func (l Layout) Apply(items []Item, p Params) []Placement {
	if len(items) == 0 || !p.Page.IsValid() {
		return nil
	}
	w, h := p.Page.Width(), p.Page.Height()
	var out []Placement
	switch l.Kind {
	case VerticalStack, HorizontalStack:
		dir := Vertical
		if l.Kind == HorizontalStack {
			dir = Horizontal
		}
		out = Stack{
			Width: w, Height: h, Gap: p.Gap, Margin: p.Margin,
			Direction: dir, Distribution: Distribution{Kind: DistributeCenter},
		}.Layout(items)
	case Grid, CenterWeightedGrid:
		g := GridLayout{Width: w, Height: h, Gap: p.Gap, Margin: p.Margin, Direction: Vertical}
		if l.Kind == CenterWeightedGrid {
			g.Weighting = WeightCenter
		}
		out = g.Layout(items)
	case Highlight:
		out = highlight(items, p.Margin.Inset(geom.R(0, 0, w, h)), p.Gap, l.Padding)
	case Zigzag:
		out = zigzag(items, p.Margin.Inset(geom.R(0, 0, w, h)))
	default:
		return nil
	}
	for i := range out {
		out[i].Rect = out[i].Rect.Translate(p.Page.Min)
	}
	return out
}

// Rects 与 Apply 相同，但以 id 为键返回。
func (l Layout) Rects(items []Item, p Params) map[layer.ID]geom.Rect {
	placed := l.Apply(items, p)
	out := make(map[layer.ID]geom.Rect, len(placed))
	for _, pl := range placed {
		out[pl.ID] = pl.Rect
	}
	return out
}

func aspectOf(it Item) float64 {
	if it.AspectRatio > 0 && !isNaNOrInf(it.AspectRatio) {
		return it.AspectRatio
	}
	return 1
}

// fitIn 返回宽高比为 aspect、在 cell 中居中的最大矩形。
func fitIn(aspect float64, cell geom.Rect) geom.Rect {
	if cell.Width() <= 0 || cell.Height() <= 0 {
		return geom.RectFromCenterSize(cell.Center(), geom.Vec2{})
	}
	return cell.WithAspectRatio(aspect)
}
