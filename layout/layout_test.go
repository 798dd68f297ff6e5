package layout

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
)

func items(aspects ...float64) []Item {
	out := make([]Item, len(aspects))
	for i, a := range aspects {
		out[i] = Item{ID: layer.ID(i + 1), AspectRatio: a}
	}
	return out
}

func assertRects(t *testing.T, got []Placement, want []geom.Rect) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d placements, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Rect.ApproxEqual(want[i], 1e-9) {
			t.Fatalf("placement %d = %+v, want %+v", i, got[i].Rect, want[i])
		}
	}
}

// 竖向等分：1000x1500 页面、边距 100、间距 50，三张照片各占一个 800x400 的单元格。
func TestVerticalStackGridCells(t *testing.T) {
	in := items(1, 2, 0.5)
	got := Stack{
		Width: 1000, Height: 1500, Gap: 50, Margin: MarginAll(100),
		Direction: Vertical, Distribution: Distribution{Kind: DistributeGrid},
	}.Layout(in)

	cells := []geom.Rect{geom.R(100, 100, 800, 400), geom.R(100, 550, 800, 400), geom.R(100, 1000, 800, 400)}
	want := make([]geom.Rect, len(cells))
	for i, c := range cells {
		want[i] = c.WithAspectRatio(in[i].AspectRatio)
		if !c.ContainsRect(got[i].Rect, 1e-9) {
			t.Fatalf("照片 %d 超出单元格: %+v", i, got[i].Rect)
		}
	}
	assertRects(t, got, want)
	// 宽高比为 2 的照片正好填满单元格
	if got[1].Rect != cells[1] {
		t.Fatalf("aspect 2 = %+v", got[1].Rect)
	}
}

func TestHorizontalStackIsTransposed(t *testing.T) {
	got := Stack{
		Width: 1500, Height: 1000, Gap: 50, Margin: MarginAll(100),
		Direction: Horizontal, Distribution: Distribution{Kind: DistributeGrid},
	}.Layout(items(1, 0.5, 2))
	assertRects(t, got, []geom.Rect{
		geom.R(100, 300, 400, 400),
		geom.R(550, 100, 400, 800),
		geom.R(1000, 400, 400, 200),
	})
}

func TestVerticalStackScalesOverflow(t *testing.T) {
	got := Stack{
		Width: 1000, Height: 1500, Gap: 50, Margin: MarginAll(100),
		Distribution: Distribution{Kind: DistributeCenter},
	}.Layout(items(1, 2, 0.5))
	// 自然高度 800+400+1600 超出 1300，缩放后向下取整：342、171、685，块居中偏移 1
	assertRects(t, got, []geom.Rect{
		geom.R(329, 101, 342, 342),
		geom.R(329, 493, 342, 171),
		geom.R(329, 714, 342, 685),
	})
}

func TestVerticalStackCentersWhenItFits(t *testing.T) {
	got := Stack{
		Width: 1000, Height: 1000, Gap: 20, Margin: MarginAll(0),
		Distribution: Distribution{Kind: DistributeCenter},
	}.Layout(items(4, 4))
	// 每张 1000x250，总高 520，上下各留 240
	assertRects(t, got, []geom.Rect{geom.R(0, 240, 1000, 250), geom.R(0, 510, 1000, 250)})
}

func TestGridEqual(t *testing.T) {
	got := GridLayout{Width: 1000, Height: 1000}.Layout(items(1, 1, 1, 1))
	assertRects(t, got, []geom.Rect{
		geom.R(0, 0, 500, 500),
		geom.R(0, 500, 500, 500),
		geom.R(500, 0, 500, 500),
		geom.R(500, 500, 500, 500),
	})
}

func TestGridCenterWeighted(t *testing.T) {
	got := GridLayout{Width: 1000, Height: 1000, Weighting: WeightCenter}.Layout(items(1, 2, 2, 1))
	// 两列自然高度 [500 250] 与 [250 500]，行高取最小值 [250 250]，整块居中
	assertRects(t, got, []geom.Rect{
		geom.R(125, 250, 250, 250),
		geom.R(0, 500, 500, 250),
		geom.R(500, 250, 500, 250),
		geom.R(625, 500, 250, 250),
	})
}

func TestHighlight(t *testing.T) {
	l := Layout{Kind: Highlight}
	got := l.Apply(items(1, 1, 1), Params{Page: geom.R(0, 0, 1000, 600)})
	assertRects(t, got, []geom.Rect{
		geom.R(0, 0, 600, 600),
		geom.R(650, 0, 300, 300),
		geom.R(650, 300, 300, 300),
	})

	l.Padding = 0.1
	got = l.Apply(items(1), Params{Page: geom.R(0, 0, 1000, 600)})
	assertRects(t, got, []geom.Rect{geom.R(230, 30, 540, 540)})
}

func TestZigzag(t *testing.T) {
	got := Layout{Kind: Zigzag}.Apply(items(1, 1, 1), Params{Page: geom.R(0, 0, 1000, 1000)})
	assertRects(t, got, []geom.Rect{
		geom.R(100, 100, 300, 300),
		geom.R(600, 300, 300, 300),
		geom.R(100, 500, 300, 300),
	})
}

func TestAvailable(t *testing.T) {
	if got := Available(0); len(got) != 0 {
		t.Fatalf("没有照片时不应提供布局: %v", got)
	}
	if diff := cmp.Diff([]Layout{{Kind: VerticalStack}, {Kind: HorizontalStack}}, Available(1)); diff != "" {
		t.Fatalf("n=1 (-want +got):\n%s", diff)
	}
	if got := Available(2); len(got) != 4 || got[2].Kind != Highlight {
		t.Fatalf("n=2 = %v", got)
	}
	kinds := map[Kind]bool{}
	for _, l := range Available(3) {
		kinds[l.Kind] = true
	}
	for _, k := range []Kind{VerticalStack, HorizontalStack, Grid, CenterWeightedGrid, Highlight, Zigzag} {
		if !kinds[k] {
			t.Fatalf("n=3 缺少 %s", k)
		}
	}
}

func allLayouts() []Layout {
	return []Layout{
		{Kind: VerticalStack}, {Kind: HorizontalStack}, {Kind: Grid}, {Kind: CenterWeightedGrid},
		{Kind: Highlight}, {Kind: Highlight, Padding: 0.2}, {Kind: Zigzag},
	}
}

func TestLayoutsStayInPageAndCoverEveryItem(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(12)
		aspects := make([]float64, n)
		for i := range aspects {
			aspects[i] = 0.2 + rng.Float64()*4.8
		}
		in := items(aspects...)
		w, h := 200+rng.Float64()*2800, 200+rng.Float64()*2800
		page := geom.R(rng.Float64()*50, rng.Float64()*50, w, h)
		p := Params{Page: page, Gap: rng.Float64() * 30, Margin: MarginAll(rng.Float64() * 50)}

		for _, l := range allLayouts() {
			got := l.Apply(in, p)
			if len(got) != n {
				t.Fatalf("%s: %d placements for %d items", l, len(got), n)
			}
			seen := map[layer.ID]bool{}
			for i, pl := range got {
				if pl.ID != in[i].ID || seen[pl.ID] {
					t.Fatalf("%s: id mapping broken at %d", l, i)
				}
				seen[pl.ID] = true
				if !page.ContainsRect(pl.Rect, 1e-6) {
					t.Fatalf("%s: rect %+v 超出页面 %+v (n=%d)", l, pl.Rect, page, n)
				}
			}
		}
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	in := items(1.5, 0.7, 1, 2.2, 0.4)
	p := DefaultParams(geom.R(0, 0, 2481, 3507))
	for _, l := range allLayouts() {
		if diff := cmp.Diff(l.Apply(in, p), l.Apply(in, p)); diff != "" {
			t.Fatalf("%s not deterministic:\n%s", l, diff)
		}
	}
	if got := (Layout{Kind: Grid}).Apply(nil, p); got != nil {
		t.Fatalf("empty input = %v", got)
	}
}

func TestRectsByID(t *testing.T) {
	m := Layout{Kind: VerticalStack}.Rects(items(1, 1), Params{Page: geom.R(0, 0, 100, 300)})
	if len(m) != 2 || m[1].Max.Y > m[2].Min.Y {
		t.Fatalf("rects = %v", m)
	}
}
