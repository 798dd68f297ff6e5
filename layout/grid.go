package layout

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ByLCY/photobook/geom"
)

// Weighting 决定网格行高的计算方式。
type Weighting int

const (
	// WeightEqual 每列独立等分高度。
	WeightEqual Weighting = iota
	// WeightCenter 每行取各列自然高度的最小值，整个网格块垂直居中。
	WeightCenter
)

// GridLayout 把元素按 ⌈√n⌉ 个一组切分成列（横向时为行），每列是一个竖向 Stack。
type GridLayout struct {
	Width, Height float64
	Gap           float64
	Margin        Margin
	Weighting     Weighting
	Direction     Direction
}

// Layout 计算各元素位置，输出顺序与 items 相同。
func (g GridLayout) Layout(items []Item) []Placement {
	if len(items) == 0 {
		return nil
	}
	if g.Direction == Horizontal {
		t := g
		t.Width, t.Height = g.Height, g.Width
		t.Margin = g.Margin.transpose()
		t.Direction = Vertical
		return transposePlacements(t.Layout(transposeItems(items)))
	}

	columns := chunk(items, int(math.Ceil(math.Sqrt(float64(len(items))))))
	nc := float64(len(columns))
	availWidth := math.Max(g.Width-g.Margin.Left-g.Margin.Right, 0)
	gap := clampGap(g.Gap, availWidth, len(columns))
	colWidth := math.Max((availWidth-gap*(nc-1))/nc, 0)
	stackHeight := math.Max(g.Height-g.Margin.Top-g.Margin.Bottom, 0)

	rowGap := clampGap(g.Gap, stackHeight, len(columns[0]))

	dist := Distribution{Kind: DistributeGrid}
	offsetY := 0.0
	if g.Weighting == WeightCenter {
		rows := commonRowHeights(columns, colWidth, stackHeight, rowGap)
		block := floats.Sum(rows) + rowGap*float64(len(rows)-1)
		offsetY = math.Max(stackHeight-block, 0) / 2
		dist = Distribution{Kind: DistributeWeighted, Sizes: rows}
	}

	out := make([]Placement, 0, len(items))
	for i, col := range columns {
		out = append(out, Stack{
			Width:        colWidth,
			Height:       stackHeight,
			Gap:          rowGap,
			Direction:    Vertical,
			Distribution: dist,
			X:            g.Margin.Left + float64(i)*(colWidth+gap),
			Y:            g.Margin.Top + offsetY,
		}.Layout(col)...)
	}
	return out
}

// commonRowHeights 对每一行取各列自然高度的最小值。
func commonRowHeights(columns [][]Item, width, height, gap float64) []float64 {
	var rows []float64
	for _, col := range columns {
		for i, d := range verticalDims(width, height, gap, col) {
			if i >= len(rows) {
				rows = append(rows, d.Y)
				continue
			}
			rows[i] = math.Min(rows[i], d.Y)
		}
	}
	return rows
}

func chunk(items []Item, size int) [][]Item {
	size = max(size, 1)
	var out [][]Item
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

// highlight 第一个元素占左侧 60% 宽的区域，其余元素在右侧 40% 的列中等高排列，
// 右列的纵向范围与主图一致。padding 是各区域内的相对留白。
func highlight(items []Item, inner geom.Rect, gap, padding float64) []Placement {
	padding = math.Max(0, math.Min(padding, 0.9))
	avail := math.Max(inner.Width()-gap, 0)
	left := geom.RectFromMinSize(inner.Min, geom.V(avail*0.6, inner.Height()))
	if len(items) == 1 {
		left = inner
	}
	out := make([]Placement, len(items))
	hero := padded(items[0], left, padding)
	out[0] = Placement{ID: items[0].ID, Rect: hero}
	if len(items) == 1 {
		return out
	}

	rightX := left.Max.X + gap
	rightW := avail * 0.4
	cell := hero.Height() / float64(len(items)-1)
	for i, it := range items[1:] {
		region := geom.R(rightX, hero.Min.Y+float64(i)*cell, rightW, cell)
		out[i+1] = Placement{ID: it.ID, Rect: padded(it, region, padding)}
	}
	return out
}

// padded 在 region 缩小 padding 比例后的尺寸内保持宽高比，并在 region 中居中。
func padded(it Item, region geom.Rect, padding float64) geom.Rect {
	box := geom.RectFromCenterSize(region.Center(), region.Size().Scale(1-padding))
	return fitIn(aspectOf(it), box)
}

var zigzagColumns = [2]float64{0.1, 0.6}

const zigzagSize = 0.3

// zigzag 元素交替落在左右两列，纵向逐个下移；元素多于 4 个时压缩步长以留在页面内。
func zigzag(items []Item, inner geom.Rect) []Placement {
	step := 0.2
	if n := len(items); n > 4 {
		step = 0.6 / float64(n-1)
	}
	out := make([]Placement, len(items))
	for i, it := range items {
		at := geom.V(zigzagColumns[i%2], 0.1+step*float64(i))
		region := inner.Denormalized(geom.RectFromMinSize(at, geom.Splat(zigzagSize)))
		out[i] = Placement{ID: it.ID, Rect: fitIn(aspectOf(it), region)}
	}
	return out
}
