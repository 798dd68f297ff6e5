package compose

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/template"
)

// stubTypesetter 按显式换行拆分，每行宽度按字符数估算。
type stubTypesetter struct{}

func (stubTypesetter) LayoutLines(content string, width float64, font string, fontSize float64) ([]TextLine, error) {
	var lines []TextLine
	for _, part := range strings.Split(content, "\n") {
		lines = append(lines, TextLine{Content: part, Width: float64(len(part)) * fontSize / 2})
	}
	return lines, nil
}

// 254 ppi 时每像素 0.1mm。
func tenthMMPage() page.Page {
	return page.Page{Width: 1000, Height: 1000, Unit: page.Pixels, PPI: 254}
}

func testPhoto(w, h int) photo.Photo {
	return photo.Photo{Path: "/photos/a.jpg", Metadata: photo.Metadata{Width: w, Height: h, Orientation: photo.Normal}}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func buildPages(t *testing.T, states ...*canvas.State) *Result {
	t.Helper()
	res, err := Build(states, BuildOptions{Typesetter: stubTypesetter{}, Project: "Album"})
	if err != nil {
		t.Fatalf("构建页面失败: %v", err)
	}
	return res
}

func TestBuildPhotoFrame(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	l := layer.NewPhoto(testPhoto(400, 300), geom.R(100, 200, 400, 300))
	l.Transform.Rotation = math.Pi / 2
	s.AddLayer(l)

	res := buildPages(t, s)
	p := res.Pages[0]
	if math.Abs(p.Width-100) > 1e-9 || math.Abs(p.Height-100) > 1e-9 || p.PPI != 254 {
		t.Fatalf("page = %+v", p)
	}
	want := []Item{{
		Layer: uint64(l.ID),
		Frame: Frame{X: 10, Y: 20, Width: 40, Height: 30, Rotation: math.Pi / 2},
		Image: &ImageBox{Path: "/photos/a.jpg", Crop: geom.UnitRect, Orientation: int(photo.Normal)},
	}}
	if diff := cmp.Diff(want, p.Items, approx); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if res.Meta.Title != "Album" {
		t.Fatalf("标题应默认为项目名: %q", res.Meta.Title)
	}
}

func TestBuildSkipsHiddenLayers(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	hidden := layer.NewShapeLayer(geom.R(0, 0, 10, 10), &layer.Shape{Fill: layer.Black})
	hidden.Visible = false
	s.AddLayer(hidden)
	s.AddLayer(layer.NewShapeLayer(geom.R(0, 0, 10, 10), &layer.Shape{Type: layer.ShapeEllipse, Fill: layer.White}))

	res := buildPages(t, s)
	if n := len(res.Pages[0].Items); n != 1 || res.Pages[0].Items[0].Shape.Kind != "ellipse" {
		t.Fatalf("隐藏图层不应导出: %+v", res.Pages[0].Items)
	}

	all, err := Build([]*canvas.State{s}, BuildOptions{Typesetter: stubTypesetter{}, Debug: DebugOptions{IncludeHidden: true}})
	if err != nil || len(all.Pages[0].Items) != 2 {
		t.Fatalf("调试模式应包含隐藏图层: %v", err)
	}
}

func TestBuildExpandsPlaceholders(t *testing.T) {
	a := canvas.NewState(tenthMMPage())
	b := canvas.NewState(tenthMMPage())
	txt := layer.NewText("${project.name}\nPage ${page.number}/${page.count}", 50)
	txt.HAlign = layer.AlignCenter
	b.AddLayer(layer.NewTextLayer(geom.R(0, 0, 500, 200), txt))

	res := buildPages(t, a, b)
	if len(res.Pages) != 2 || res.Pages[1].Number != 2 {
		t.Fatalf("pages = %+v", res.Pages)
	}
	tb := res.Pages[1].Items[0].Text
	if tb == nil {
		t.Fatalf("expected text item")
	}
	if tb.Content != "Album\nPage 2/2" || len(tb.Lines) != 2 || tb.Lines[1].Content != "Page 2/2" {
		t.Fatalf("text = %+v", tb)
	}
	if math.Abs(tb.FontSize-5) > 1e-9 || math.Abs(tb.Lines[0].Height-6) > 1e-9 {
		t.Fatalf("字号与行高应换算为毫米: size=%v line=%v", tb.FontSize, tb.Lines[0].Height)
	}
	if tb.Align != "center" || tb.VAlign != "top" || tb.Font != layer.DefaultFontFamily {
		t.Fatalf("style = %+v", tb)
	}
	if math.Abs(tb.Height()-12) > 1e-9 {
		t.Fatalf("height = %v", tb.Height())
	}
	if txt.Text != "${project.name}\nPage ${page.number}/${page.count}" {
		t.Fatalf("导出不应修改图层文本")
	}
}

func TestBuildTemplatePhotoFillCrops(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	region := template.Region{Kind: template.RegionImage, Size: geom.V(1, 1)}
	tp := &layer.TemplatePhoto{Region: region, Photo: layer.NewPhotoContent(testPhoto(100, 100)), ScaleMode: layer.ScaleFill}
	s.AddLayer(layer.New("Image", tp, geom.R(0, 0, 200, 100)))
	s.AddLayer(layer.New("Image", &layer.TemplatePhoto{Region: region}, geom.R(0, 0, 200, 100)))

	items := buildPages(t, s).Pages[0].Items
	if len(items) != 1 {
		t.Fatalf("空模板区域不应导出: %d", len(items))
	}
	want := Item{
		Layer: items[0].Layer,
		Frame: Frame{Width: 20, Height: 10},
		Image: &ImageBox{Path: "/photos/a.jpg", Crop: geom.R(0, 0.25, 1, 0.5), Orientation: int(photo.Normal)},
	}
	if diff := cmp.Diff(want, items[0], approx); diff != "" {
		t.Fatalf("fill item mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRotatedPhotoCropStaysInBitmapFrame(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	p := testPhoto(400, 300)
	p.Metadata.Orientation = photo.Rotate90CW
	pc := layer.NewPhotoContent(p)
	pc.Crop = geom.R(0, 0, 1, 0.5)
	s.AddLayer(layer.New("Photo", pc, geom.R(0, 0, 150, 400)))

	img := buildPages(t, s).Pages[0].Items[0].Image
	if !img.Crop.ApproxEqual(geom.R(0, 0, 1, 0.5), 1e-9) || img.Orientation != int(photo.Rotate90CW) {
		t.Fatalf("image = %+v", img)
	}
}

func TestBuildLineShape(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	s.AddLayer(layer.NewLineLayer(geom.V(300, 100), geom.V(100, 300), layer.Stroke{Width: 20, Color: layer.Black}))

	sb := buildPages(t, s).Pages[0].Items[0].Shape
	want := &ShapeBox{
		Kind:   "line",
		Stroke: &Stroke{Width: 2, Color: Color{A: 255}, Placement: "inside"},
		X1:     20, Y1: 0, X2: 0, Y2: 20,
	}
	if diff := cmp.Diff(want, sb, approx); diff != "" {
		t.Fatalf("line mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameMatrix(t *testing.T) {
	f := Frame{X: 10, Y: 20, Width: 40, Height: 20, Rotation: math.Pi / 2}
	m := f.Matrix()
	// 局部左上角旋转 90° 后位于中心 (30,30) 的右上方
	x := m[0]*0 + m[2]*0 + m[4]
	y := m[1]*0 + m[3]*0 + m[5]
	if math.Abs(x-40) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Fatalf("top-left maps to (%v,%v)", x, y)
	}
	if b := f.Bounds(); !b.ApproxEqual(geom.R(20, 10, 20, 40), 1e-9) {
		t.Fatalf("bounds = %+v", b)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build(nil, BuildOptions{Typesetter: stubTypesetter{}}); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := Build([]*canvas.State{canvas.NewState(tenthMMPage())}, BuildOptions{}); err == nil {
		t.Fatalf("expected error without typesetter")
	}
}

func TestEncodeDebugJSON(t *testing.T) {
	s := canvas.NewState(tenthMMPage())
	s.AddLayer(layer.NewShapeLayer(geom.R(0, 0, 10, 10), &layer.Shape{Fill: layer.LightGray}))
	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, buildPages(t, s)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Pages) != 1 || decoded.Pages[0].Items[0].Kind() != "shape" {
		t.Fatalf("decoded = %+v", decoded)
	}
}
