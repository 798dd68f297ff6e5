package layout

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ByLCY/photobook/geom"
)

// Direction 是主轴方向。
type Direction int

const (
	Vertical Direction = iota
	Horizontal
)

// DistributionKind 决定元素沿主轴如何分布。
type DistributionKind int

const (
	// DistributeCenter 按自然尺寸依次排列，整体在主轴上居中。
	DistributeCenter DistributionKind = iota
	// DistributeGrid 主轴等分为 n 个单元格，元素在各自单元格内居中。
	DistributeGrid
	// DistributeWeighted 按 Sizes 给出的单元格主轴尺寸排列。
	DistributeWeighted
)

// Distribution 描述主轴分布；Sizes 只在 DistributeWeighted 时使用。
type Distribution struct {
	Kind  DistributionKind
	Sizes []float64
}

// Stack 沿一个方向排列元素，交叉轴上居中对齐。
// X/Y 为整体偏移，Margin 在偏移之内生效。
type Stack struct {
	Width, Height float64
	Gap           float64
	Margin        Margin
	Direction     Direction
	Distribution  Distribution
	X, Y          float64
}

// Layout 计算各元素位置，输出顺序与 items 相同。
func (s Stack) Layout(items []Item) []Placement {
	if len(items) == 0 {
		return nil
	}
	if s.Direction == Horizontal {
		return transposePlacements(s.transposed().Layout(transposeItems(items)))
	}

	width := math.Max(s.Width-s.Margin.Left-s.Margin.Right, 0)
	height := math.Max(s.Height-s.Margin.Top-s.Margin.Bottom, 0)
	gap := clampGap(s.Gap, height, len(items))
	out := make([]Placement, len(items))

	switch s.Distribution.Kind {
	case DistributeGrid, DistributeWeighted:
		n := float64(len(items))
		cell := math.Max((height-gap*(n-1))/n, 0)
		y := 0.0
		for i, it := range items {
			h := cell
			if s.Distribution.Kind == DistributeWeighted {
				h = weightedSize(s.Distribution.Sizes, i, cell)
			}
			out[i] = Placement{ID: it.ID, Rect: fitIn(aspectOf(it), geom.R(0, y, width, h))}
			y += h + gap
		}
	default:
		dims := verticalDims(width, height, gap, items)
		heights := make([]float64, len(dims))
		for i, d := range dims {
			heights[i] = d.Y
		}
		block := floats.Sum(heights) + gap*float64(len(items)-1)
		y := math.Max(height-block, 0) / 2
		for i, it := range items {
			x := (width - dims[i].X) / 2
			out[i] = Placement{ID: it.ID, Rect: geom.RectFromMinSize(geom.V(x, y), dims[i])}
			y += dims[i].Y + gap
		}
	}

	off := geom.V(s.X+s.Margin.Left, s.Y+s.Margin.Top)
	for i := range out {
		out[i].Rect = out[i].Rect.Translate(off)
	}
	return out
}

// clampGap 保证 n 个元素之间的间距之和不超过可用长度。
func clampGap(gap, avail float64, n int) float64 {
	gap = math.Max(gap, 0)
	if n > 1 {
		gap = math.Min(gap, avail/float64(n-1))
	}
	return gap
}

func weightedSize(sizes []float64, i int, fallback float64) float64 {
	if i < len(sizes) {
		return sizes[i]
	}
	return fallback
}

// verticalDims 给出竖向排列时每个元素的自然尺寸：宽度撑满，高度由宽高比得出。
// 总高度（含间距）超出可用高度时整体等比缩小并向下取整。
func verticalDims(width, height, gap float64, items []Item) []geom.Vec2 {
	dims := make([]geom.Vec2, len(items))
	heights := make([]float64, len(items))
	for i, it := range items {
		dims[i] = geom.V(width, width/aspectOf(it))
		heights[i] = dims[i].Y
	}
	gaps := gap * float64(len(items)-1)
	total := floats.Sum(heights)
	if total+gaps <= height || total <= 0 {
		return dims
	}
	widths := make([]float64, len(items))
	for i, d := range dims {
		widths[i] = d.X
	}
	k := math.Max(height-gaps, 0) / total
	if maxW := floats.Max(widths); maxW > 0 {
		k = math.Min(k, width/maxW)
	}
	for i := range dims {
		dims[i] = geom.V(math.Floor(dims[i].X*k), math.Floor(dims[i].Y*k))
	}
	return dims
}

func (s Stack) transposed() Stack {
	t := s
	t.Width, t.Height = s.Height, s.Width
	t.X, t.Y = s.Y, s.X
	t.Margin = s.Margin.transpose()
	t.Direction = Vertical
	return t
}

// 横向排列等价于把坐标轴对调后的竖向排列。
func transposeItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{ID: it.ID, AspectRatio: 1 / aspectOf(it)}
	}
	return out
}

func transposeRect(r geom.Rect) geom.Rect {
	return geom.Rect{Min: geom.V(r.Min.Y, r.Min.X), Max: geom.V(r.Max.Y, r.Max.X)}
}

func transposePlacements(ps []Placement) []Placement {
	for i := range ps {
		ps[i].Rect = transposeRect(ps[i].Rect)
	}
	return ps
}

func isNaNOrInf(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
