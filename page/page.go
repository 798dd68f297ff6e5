package page

import (
	"fmt"

	"github.com/ByLCY/photobook/geom"
)

// DefaultPPI is used for new pages.
const DefaultPPI = 300

// Page is a rectangular canvas with a physical size and a print resolution.
// The stored size is expressed in Unit; SizePixels is the canonical extent
// used by the editor and the layout engine.
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
	PPI    int     `json:"ppi"`
}

// New validates and builds a page.
func New(width, height float64, unit Unit, ppi int) (Page, error) {
	p := Page{Width: width, Height: height, Unit: unit, PPI: ppi}
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return p, nil
}

// Validate reports a non-positive size or ppi.
func (p Page) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("页面尺寸必须为正数: %gx%g", p.Width, p.Height)
	}
	if p.PPI < 1 {
		return fmt.Errorf("ppi 必须 >= 1，实际 %d", p.PPI)
	}
	return nil
}

// A4 returns a portrait A4 page at 300 ppi.
func A4() Page { return Page{Width: 8.27, Height: 11.69, Unit: Inches, PPI: DefaultPPI} }

// WithSizeInches returns a page of the given size in inches at 300 ppi.
func WithSizeInches(w, h float64) Page { return Page{Width: w, Height: h, Unit: Inches, PPI: DefaultPPI} }

// Default is the page used when nothing else is configured.
func Default() Page { return A4() }

func (p Page) ppi() int {
	if p.PPI < 1 {
		return 1
	}
	return p.PPI
}

// Size returns the stored size in the page's unit.
func (p Page) Size() geom.Vec2 { return geom.Vec2{X: p.Width, Y: p.Height} }

// SizePixels returns the page extent in pixels.
func (p Page) SizePixels() geom.Vec2 {
	k := p.Unit.pixelsPerUnit(p.ppi())
	return geom.Vec2{X: p.Width * k, Y: p.Height * k}
}

// SizeMM returns the physical size in millimeters.
func (p Page) SizeMM() geom.Vec2 {
	px := p.SizePixels()
	return geom.Vec2{X: PixelsToMM(px.X, p.ppi()), Y: PixelsToMM(px.Y, p.ppi())}
}

// Rect is the page rectangle in pixel space, anchored at the origin.
func (p Page) Rect() geom.Rect { return geom.RectFromMinSize(geom.Vec2{}, p.SizePixels()) }

// AspectRatio returns width / height.
func (p Page) AspectRatio() float64 {
	if p.Height == 0 {
		return 1
	}
	return p.Width / p.Height
}

// SetSize stores a new size in the current unit.
func (p *Page) SetSize(w, h float64) {
	p.Width, p.Height = w, h
}

// SetUnit changes the unit and converts the stored size so SizePixels is unchanged.
func (p *Page) SetUnit(u Unit) {
	px := p.SizePixels()
	k := u.pixelsPerUnit(p.ppi())
	p.Width, p.Height = px.X/k, px.Y/k
	p.Unit = u
}

// SetPPI changes the resolution; the stored size keeps its unit and value.
func (p *Page) SetPPI(ppi int) {
	if ppi < 1 {
		ppi = 1
	}
	p.PPI = ppi
}

// MMPerPixel returns the physical size of one page pixel.
func (p Page) MMPerPixel() float64 { return MmPerInch / float64(p.ppi()) }

func (p Page) String() string {
	return fmt.Sprintf("%gx%g%s@%dppi", p.Width, p.Height, p.Unit.Suffix(), p.PPI)
}
