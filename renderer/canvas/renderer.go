package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"
	"seehuhn.de/go/geom/matrix"

	"github.com/ByLCY/photobook/compose"
	"github.com/ByLCY/photobook/fonts"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/renderer"
)

// lineSpacing 是行高相对字号的倍数。
const lineSpacing = 1.2

// Renderer draws page descriptions via github.com/tdewolff/canvas.
type Renderer struct {
	images     renderer.ImageLoader
	background color.Color

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ renderer.Rasterizer = (*Renderer)(nil)
	_ compose.Typesetter  = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Images     renderer.ImageLoader // 为空时直接从磁盘解码
	Background color.Color          // 为空时为白色
}

// NewRenderer creates a renderer that reads photos from disk.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with an injected image loader.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		images:       opts.Images,
		background:   opts.Background,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.images == nil {
		r.images = renderer.ImageLoaderFunc(decodeFile)
	}
	if r.background == nil {
		r.background = color.White
	}
	return r
}

// Render renders every page into one PDF.
func (r *Renderer) Render(ctx context.Context, result *compose.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, pg := range result.Pages {
		if i > 0 {
			writer.NewPage(pg.Width, pg.Height)
		}
		c, err := r.drawCanvas(ctx, pg)
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// RasterizePage draws one page at its PPI.
func (r *Renderer) RasterizePage(ctx context.Context, pg compose.Page) (*image.RGBA, error) {
	if pg.Width <= 0 || pg.Height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", pg.Width, pg.Height)
	}
	c, err := r.drawCanvas(ctx, pg)
	if err != nil {
		return nil, err
	}
	ppi := pg.PPI
	if ppi < 1 {
		ppi = page.DefaultPPI
	}
	return rasterizer.Draw(c, canvas.DPI(float64(ppi)), canvas.DefaultColorSpace), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta compose.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawCanvas(ctx context.Context, pg compose.Page) (*canvas.Canvas, error) {
	c := canvas.New(pg.Width, pg.Height)
	cc := canvas.NewContext(c)
	cc.SetCoordSystem(canvas.CartesianIV) // 使坐标与页面保持左上角为原点

	cc.SetFillColor(r.background)
	cc.SetStrokeColor(canvas.Transparent)
	cc.DrawPath(0, 0, canvas.Rectangle(pg.Width, pg.Height))

	for _, item := range pg.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cc.Push()
		cc.SetView(toCanvasMatrix(item.Frame.Matrix()))
		var err error
		switch {
		case item.Image != nil:
			err = r.drawImage(ctx, cc, item.Frame, *item.Image)
		case item.Text != nil:
			err = r.drawText(cc, item.Frame, *item.Text)
		case item.Shape != nil:
			drawShape(cc, item.Frame, *item.Shape)
		}
		cc.Pop()
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", pg.Number, err)
		}
	}
	return c, nil
}

// toCanvasMatrix converts a PDF-style matrix (row vector convention) to canvas's layout.
func toCanvasMatrix(m matrix.Matrix) canvas.Matrix {
	return canvas.Matrix{
		{m[0], m[2], m[4]},
		{m[1], m[3], m[5]},
	}
}

func (r *Renderer) drawImage(ctx context.Context, cc *canvas.Context, f compose.Frame, box compose.ImageBox) error {
	src, err := r.images.LoadImage(ctx, box.Path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", renderer.ErrImage, box.Path, err)
	}
	img := photo.Orientation(box.Orientation).Apply(cropImage(src, box.Crop))
	size := img.Bounds().Size()
	if size.X == 0 || size.Y == 0 || f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	// 1 像素 = 1mm，再整体缩放到元素尺寸
	cc.ComposeView(canvas.Identity.Scale(f.Width/float64(size.X), f.Height/float64(size.Y)))
	cc.DrawImage(0, 0, img, canvas.DPMM(1))
	return nil
}

// cropImage 按位图帧的归一化矩形裁剪，至少保留一个像素。
// 结果的左上角总在 (0,0)：DrawImage 按图像边界定位，非零原点会画到元素之外。
func cropImage(src image.Image, crop geom.Rect) image.Image {
	b := src.Bounds()
	if crop == geom.UnitRect || crop.Width() <= 0 || crop.Height() <= 0 {
		if b.Min == (image.Point{}) {
			return src
		}
		crop = geom.UnitRect
	}
	px := func(v float64, n int) int {
		return int(math.Round(math.Min(math.Max(v, 0), 1) * float64(n)))
	}
	rect := image.Rect(
		b.Min.X+px(crop.Min.X, b.Dx()), b.Min.Y+px(crop.Min.Y, b.Dy()),
		b.Min.X+px(crop.Max.X, b.Dx()), b.Min.Y+px(crop.Max.Y, b.Dy()),
	)
	if rect.Dx() < 1 {
		rect.Max.X = min(rect.Min.X+1, b.Max.X)
		rect.Min.X = rect.Max.X - 1
	}
	if rect.Dy() < 1 {
		rect.Max.Y = min(rect.Min.Y+1, b.Max.Y)
		rect.Min.Y = rect.Max.Y - 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst
}

func (r *Renderer) drawText(cc *canvas.Context, f compose.Frame, tb compose.TextBox) error {
	face, err := r.fontFace(tb.Font, toPt(tb.FontSize), toColor(tb.Color))
	if err != nil {
		return err
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch tb.Align {
	case "center":
		textAlign = canvas.Center
		anchorX = f.Width / 2
	case "right":
		textAlign = canvas.Right
		anchorX = f.Width
	default:
		textAlign = canvas.Left
	}

	cursorY := 0.0
	switch tb.VAlign {
	case "middle":
		cursorY = (f.Height - tb.Height()) / 2
	case "bottom":
		cursorY = f.Height - tb.Height()
	}

	// 基线位置：行顶部加上字体上升部
	ascent := face.Metrics().Ascent
	for _, line := range tb.Lines {
		cursorY += line.GapBefore
		if line.Content != "" {
			cc.DrawText(anchorX, cursorY+ascent, canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += line.Height
	}
	return nil
}

func drawShape(cc *canvas.Context, f compose.Frame, sb compose.ShapeBox) {
	cc.SetFillColor(canvas.Transparent)
	if sb.Fill != nil {
		cc.SetFillColor(toColor(*sb.Fill))
	}
	cc.SetStrokeColor(canvas.Transparent)
	cc.SetStrokeWidth(0)
	var inset float64
	if sb.Stroke != nil {
		cc.SetStrokeColor(toColor(sb.Stroke.Color))
		cc.SetStrokeWidth(sb.Stroke.Width)
		switch sb.Stroke.Placement {
		case "inside":
			inset = sb.Stroke.Width / 2
		case "outside":
			inset = -sb.Stroke.Width / 2
		}
	}

	if sb.Kind == "line" {
		cc.SetFillColor(canvas.Transparent)
		p := &canvas.Path{}
		p.MoveTo(sb.X1, sb.Y1)
		p.LineTo(sb.X2, sb.Y2)
		cc.DrawPath(0, 0, p)
		return
	}

	w, h := f.Width-2*inset, f.Height-2*inset
	if w <= 0 || h <= 0 {
		return
	}
	var p *canvas.Path
	switch sb.Kind {
	case "ellipse":
		p = canvas.Ellipse(w/2, h/2)
	default:
		radius := math.Min(math.Max(sb.CornerRadius-inset, 0), math.Min(w, h)/2)
		if radius > 0 {
			p = canvas.RoundedRectangle(w, h, radius)
		} else {
			p = canvas.Rectangle(w, h)
		}
	}
	// 路径左上角对齐元素（内缩后的）左上角
	b := p.Bounds()
	cc.DrawPath(0, 0, p.Translate(inset-b.X0, inset-b.Y0))
}

// LayoutLines 实现 compose.Typesetter 接口，使用贪心换行算法。
// 约定：width 与 fontSize 均为毫米。字体系统使用 pt，在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font string, fontSize float64) ([]compose.TextLine, error) {
	face, err := r.fontFace(font, toPt(fontSize), color.Black)
	if err != nil {
		return nil, err
	}

	lines := greedyWrapTokens(content, width, face)
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = fontSize
	}
	leading := math.Max(fontSize*lineSpacing-textHeight, 0)
	if len(lines) == 0 {
		lines = []compose.TextLine{{Content: "", Width: 0}}
	}
	for i := range lines {
		lines[i].Height = textHeight
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) fontFace(family string, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	fam, err := r.ensureFontFamily(family)
	if err != nil {
		return nil, err
	}
	if sizePt <= 0 {
		sizePt = 1
	}
	return fam.Face(sizePt, col, canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	if !fonts.Has(name) {
		name = fonts.Default
	}
	key := strings.ToLower(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if fam, ok := r.fontFamilies[key]; ok {
		return fam, nil
	}
	data, err := fonts.Load(name, fonts.Regular)
	if err != nil {
		return nil, err
	}
	fam := canvas.NewFontFamily(name)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	r.fontFamilies[key] = fam
	return fam, nil
}

func decodeFile(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func toColor(c compose.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * page.MmToPt }
