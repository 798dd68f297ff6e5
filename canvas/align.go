package canvas

import (
	"fmt"
	"slices"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
)

// Alignment 是对齐面板中的六种对齐方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenterH
	AlignCenterV
	AlignRight
	AlignTop
	AlignBottom
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenterH:
		return "CenterH"
	case AlignCenterV:
		return "CenterV"
	case AlignRight:
		return "Right"
	case AlignTop:
		return "Top"
	case AlignBottom:
		return "Bottom"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// Distribution 是水平或竖直等距分布。
type Distribution int

const (
	DistributeHorizontal Distribution = iota
	DistributeVertical
)

func alignRect(r geom.Rect, to geom.Rect, a Alignment) geom.Rect {
	switch a {
	case AlignLeft:
		return r.TranslateLeftTo(to.Left())
	case AlignCenterH:
		return r.TranslateCenterXTo(to.Center().X)
	case AlignCenterV:
		return r.TranslateCenterYTo(to.Center().Y)
	case AlignRight:
		return r.TranslateRightTo(to.Right())
	case AlignTop:
		return r.TranslateTopTo(to.Top())
	case AlignBottom:
		return r.TranslateBottomTo(to.Bottom())
	}
	return r
}

// Align 对齐选中的图层：只有一个时相对页面，多个时相对选区外接框。
func (s *State) Align(a Alignment) bool {
	selected := s.Layers.Selected()
	if len(selected) == 0 {
		return false
	}
	target := s.Page.Rect()
	if len(selected) > 1 {
		rects := make([]geom.Rect, len(selected))
		for i, l := range selected {
			rects[i] = l.Rect()
		}
		target = geom.BoundingRect(rects...)
	}
	for _, l := range selected {
		l.SetRect(alignRect(l.Rect(), target, a))
	}
	s.SyncMultiSelect()
	return true
}

// Distribute 在最外侧两个图层之间等距排列其余选中图层，至少需要三个。
func (s *State) Distribute(d Distribution) bool {
	selected := s.Layers.Selected()
	if len(selected) < 3 {
		return false
	}
	start := func(r geom.Rect) float64 { return r.Left() }
	end := func(r geom.Rect) float64 { return r.Right() }
	size := func(r geom.Rect) float64 { return r.Width() }
	moveTo := geom.Rect.TranslateLeftTo
	if d == DistributeVertical {
		start = func(r geom.Rect) float64 { return r.Top() }
		end = func(r geom.Rect) float64 { return r.Bottom() }
		size = func(r geom.Rect) float64 { return r.Height() }
		moveTo = geom.Rect.TranslateTopTo
	}

	sorted := slices.Clone(selected)
	slices.SortStableFunc(sorted, func(a, b *layer.Layer) int {
		switch x, y := start(a.Rect()), start(b.Rect()); {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})

	// 右（下）端固定为结束位置最远的图层，它不一定是最后开始的那个
	last := len(sorted) - 1
	for i := 1; i < len(sorted); i++ {
		if end(sorted[i].Rect()) > end(sorted[last].Rect()) {
			last = i
		}
	}
	anchor := sorted[last]
	sorted = append(slices.Delete(sorted, last, last+1), anchor)

	lo, hi, total := start(sorted[0].Rect()), end(anchor.Rect()), 0.0
	for _, l := range sorted {
		total += size(l.Rect())
	}
	space := (hi - lo - total) / float64(len(sorted)-1)

	pos := end(sorted[0].Rect()) + space
	for _, l := range sorted[1 : len(sorted)-1] {
		r := moveTo(l.Rect(), pos)
		l.SetRect(r)
		pos = end(r) + space
	}
	s.SyncMultiSelect()
	return true
}
