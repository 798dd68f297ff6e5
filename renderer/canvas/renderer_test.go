package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/photobook/compose"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/renderer"
)

var fontSizeMM = 12 * page.PtToMm

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer()
	lines, err := r.LayoutLines("hello world again", 10, "Go", fontSizeMM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for _, l := range lines {
		if l.Content != "" && (l.Content[0] == ' ' || l.Content[len(l.Content)-1] == ' ') {
			t.Fatalf("行首尾不应保留空白: %q", l.Content)
		}
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer()
	lines, err := r.LayoutLines("foo\n\nbar", 100, "Go", fontSizeMM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// TestLineHeightsInvariant 验证：首行 GapBefore == 0；其余行 GapBefore ≈ max(1.2·fontSize - textHeight, 0)。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer()
	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, "Go", fontSizeMM)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}

	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(fontSizeMM*lineSpacing-textHeight, 0)
	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g", i, lines[i].GapBefore, wantLeading)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g", i, lines[i].Height, textHeight)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（mm）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer()
	limit := 30.0
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	lines, err := r.LayoutLines(content, limit, "Go", fontSizeMM)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected the long word to be split, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer()
	first := "SAMPLE-A"
	measured, err := r.LayoutLines(first, 1e6, "Go", fontSizeMM)
	if err != nil || len(measured) != 1 {
		t.Fatalf("measure error: %v (%d lines)", err, len(measured))
	}
	limit := measured[0].Width

	lines, err := r.LayoutLines(first+"\nSAMPLE-B", limit, "Go", fontSizeMM)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 2 || lines[0].Content != first || lines[1].Content != "SAMPLE-B" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestUnknownFontFallsBackToGo(t *testing.T) {
	r := NewRenderer()
	a, err := r.LayoutLines("abc", 100, "Comic Sans", fontSizeMM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := r.LayoutLines("abc", 100, "Go", fontSizeMM)
	if a[0].Width != b[0].Width {
		t.Fatalf("未知字体应使用默认字体: %v vs %v", a[0].Width, b[0].Width)
	}
}

func TestCropImage(t *testing.T) {
	src := twoColorImage().(*image.RGBA)
	got := cropImage(src, geom.R(0.5, 0, 0.5, 1))
	if got.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("裁剪结果应从 (0,0) 开始: %v", got.Bounds())
	}
	if !near(got.At(0, 0), color.RGBA{B: 255}) || !near(got.At(19, 19), color.RGBA{B: 255}) {
		t.Fatalf("裁剪内容 = %v %v", got.At(0, 0), got.At(19, 19))
	}
	// 子图的原点不在 (0,0)，即使不裁剪也要平移
	sub := src.SubImage(image.Rect(20, 0, 40, 20))
	if got := cropImage(sub, geom.UnitRect); got.Bounds() != image.Rect(0, 0, 20, 20) || !near(got.At(0, 0), color.RGBA{B: 255}) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if got := cropImage(src, geom.R(0.999, 0.5, 0.001, 0.001)); got.Bounds().Dx() != 1 || got.Bounds().Dy() != 1 {
		t.Fatalf("极小裁剪至少保留一个像素: %v", got.Bounds())
	}
	if got := cropImage(src, geom.UnitRect); got != image.Image(src) {
		t.Fatalf("完整裁剪应返回原图")
	}
}

func TestToCanvasMatrix(t *testing.T) {
	f := compose.Frame{X: 10, Y: 20, Width: 40, Height: 20, Rotation: math.Pi / 2}
	m := toCanvasMatrix(f.Matrix())
	p := m.Dot(canvas.Point{X: 0, Y: 0})
	if math.Abs(p.X-40) > 1e-9 || math.Abs(p.Y-10) > 1e-9 {
		t.Fatalf("top-left maps to %v", p)
	}
}

// 40x20 的位图：左半红，右半蓝。
func twoColorImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := range 20 {
		for x := range 40 {
			c := color.RGBA{R: 255, A: 255}
			if x >= 20 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func memLoader(img image.Image) renderer.ImageLoader {
	return renderer.ImageLoaderFunc(func(ctx context.Context, path string) (image.Image, error) {
		if path != "mem.png" {
			return nil, errors.New("not found")
		}
		return img, nil
	})
}

func near(c color.Color, want color.RGBA) bool {
	r, g, b, _ := c.RGBA()
	d := func(a uint32, b uint8) bool { return math.Abs(float64(a>>8)-float64(b)) <= 8 }
	return d(r, want.R) && d(g, want.G) && d(b, want.B)
}

// 10mm 见方、254 ppi 的页面光栅化为 100x100 像素。
func testPage(items ...compose.Item) compose.Page {
	return compose.Page{Number: 1, Width: 10, Height: 10, PPI: 254, Items: items}
}

func TestRasterizePageDrawsShapesAndBackground(t *testing.T) {
	r := NewRenderer()
	red := compose.Color{R: 255, A: 255}
	img, err := r.RasterizePage(context.Background(), testPage(compose.Item{
		Frame: compose.Frame{X: 0, Y: 0, Width: 5, Height: 10},
		Shape: &compose.ShapeBox{Kind: "rect", Fill: &red},
	}))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("size = %v", b)
	}
	if !near(img.At(25, 50), color.RGBA{R: 255}) {
		t.Fatalf("左半应为红色: %v", img.At(25, 50))
	}
	if !near(img.At(75, 50), color.RGBA{R: 255, G: 255, B: 255}) {
		t.Fatalf("右半应为白色背景: %v", img.At(75, 50))
	}
}

func TestRasterizePageDrawsCroppedPhoto(t *testing.T) {
	r := NewRendererWithOptions(Options{Images: memLoader(twoColorImage())})
	img, err := r.RasterizePage(context.Background(), testPage(compose.Item{
		Frame: compose.Frame{Width: 10, Height: 10},
		Image: &compose.ImageBox{Path: "mem.png", Crop: geom.R(0.5, 0, 0.5, 1), Orientation: int(photo.Normal)},
	}))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	for _, y := range []int{10, 50, 90} {
		for _, x := range []int{10, 35, 65, 90} {
			if !near(img.At(x, y), color.RGBA{B: 255}) {
				t.Fatalf("裁剪后只应显示蓝色部分: (%d,%d) = %v", x, y, img.At(x, y))
			}
		}
	}
}

func TestRasterizePageRotatesPhoto(t *testing.T) {
	r := NewRendererWithOptions(Options{Images: memLoader(twoColorImage())})
	// 顺时针旋转 90° 后，原左半（红）位于上半部
	img, err := r.RasterizePage(context.Background(), testPage(compose.Item{
		Frame: compose.Frame{Width: 10, Height: 10, Rotation: math.Pi / 2},
		Image: &compose.ImageBox{Path: "mem.png", Crop: geom.UnitRect, Orientation: int(photo.Normal)},
	}))
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if !near(img.At(50, 20), color.RGBA{R: 255}) || !near(img.At(50, 80), color.RGBA{B: 255}) {
		t.Fatalf("top=%v bottom=%v", img.At(50, 20), img.At(50, 80))
	}
}

func TestRasterizeMissingImage(t *testing.T) {
	r := NewRendererWithOptions(Options{Images: memLoader(twoColorImage())})
	_, err := r.RasterizePage(context.Background(), testPage(compose.Item{
		Frame: compose.Frame{Width: 10, Height: 10},
		Image: &compose.ImageBox{Path: "missing.png", Crop: geom.UnitRect},
	}))
	if !errors.Is(err, renderer.ErrImage) {
		t.Fatalf("expected ErrImage, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer()
	black := compose.Color{A: 255}
	res := &compose.Result{
		Meta: compose.DocumentMeta{Title: "Album"},
		Pages: []compose.Page{
			testPage(compose.Item{
				Frame: compose.Frame{X: 1, Y: 1, Width: 8, Height: 4},
				Text:  &compose.TextBox{Content: "Hi", Font: "Go", FontSize: 3, Color: black, Lines: []compose.TextLine{{Content: "Hi", Height: 3.6}}},
			}),
			testPage(compose.Item{
				Frame: compose.Frame{Width: 10, Height: 10},
				Shape: &compose.ShapeBox{Kind: "line", Stroke: &compose.Stroke{Width: 0.5, Color: black}, X2: 10, Y2: 10},
			}),
		},
	}
	data, err := r.Render(context.Background(), res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}
	if _, err := r.Render(context.Background(), &compose.Result{}); err == nil {
		t.Fatalf("expected error for empty result")
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	r := NewRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RasterizePage(ctx, testPage(compose.Item{Frame: compose.Frame{Width: 1, Height: 1}, Shape: &compose.ShapeBox{Kind: "rect"}}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
