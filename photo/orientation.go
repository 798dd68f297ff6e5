package photo

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/ByLCY/photobook/geom"
)

// Orientation 是 EXIF Orientation 标签（1..8）。
type Orientation int

const (
	Normal      Orientation = 1 // 正常
	FlipH       Orientation = 2 // 水平翻转
	Rotate180   Orientation = 3
	FlipV       Orientation = 4 // 垂直翻转
	Transpose   Orientation = 5 // 水平翻转 + 270°
	Rotate90CW  Orientation = 6
	Transverse  Orientation = 7 // 水平翻转 + 90°
	Rotate270CW Orientation = 8
)

// Valid reports whether o is a defined EXIF orientation.
func (o Orientation) Valid() bool { return o >= Normal && o <= Rotate270CW }

// OrDefault maps undefined values to Normal.
func (o Orientation) OrDefault() Orientation {
	if !o.Valid() {
		return Normal
	}
	return o
}

// IsHorizontal reports whether the displayed image keeps the bitmap's width and height.
func (o Orientation) IsHorizontal() bool {
	switch o.OrDefault() {
	case Normal, FlipH, Rotate180, FlipV:
		return true
	}
	return false
}

// Radians 返回显示时需要施加的旋转角（屏幕坐标系下顺时针为正），翻转部分不计入。
func (o Orientation) Radians() float64 {
	switch o.OrDefault() {
	case Rotate180, FlipV:
		return math.Pi
	case Rotate90CW, Transverse:
		return math.Pi / 2
	case Transpose, Rotate270CW:
		return -math.Pi / 2
	}
	return 0
}

// DisplaySize returns the displayed size of a w×h bitmap.
func (o Orientation) DisplaySize(w, h float64) (float64, float64) {
	if o.IsHorizontal() {
		return w, h
	}
	return h, w
}

// MapPoint 把位图帧中的归一化坐标映射到显示帧。
func (o Orientation) MapPoint(p geom.Vec2) geom.Vec2 {
	x, y := p.X, p.Y
	switch o.OrDefault() {
	case FlipH:
		return geom.V(1-x, y)
	case Rotate180:
		return geom.V(1-x, 1-y)
	case FlipV:
		return geom.V(x, 1-y)
	case Transpose:
		return geom.V(y, x)
	case Rotate90CW:
		return geom.V(1-y, x)
	case Transverse:
		return geom.V(1-y, 1-x)
	case Rotate270CW:
		return geom.V(y, 1-x)
	}
	return p
}

// UnmapPoint 是 MapPoint 的逆映射：显示帧 → 位图帧。
func (o Orientation) UnmapPoint(p geom.Vec2) geom.Vec2 {
	switch o.OrDefault() {
	case Rotate90CW:
		return geom.V(p.Y, 1-p.X)
	case Rotate270CW:
		return geom.V(1-p.Y, p.X)
	}
	// 其余方向都是自逆的
	return o.MapPoint(p)
}

// MapRect maps a normalized bitmap-frame rect to the display frame.
func (o Orientation) MapRect(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(o.MapPoint(r.Min), o.MapPoint(r.Max))
}

// UnmapRect maps a normalized display-frame rect back to the bitmap frame.
func (o Orientation) UnmapRect(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(o.UnmapPoint(r.Min), o.UnmapPoint(r.Max))
}

// Apply 返回按显示方向重排像素后的新图像。
func (o Orientation) Apply(src image.Image) image.Image {
	o = o.OrDefault()
	if o == Normal {
		return src
	}
	rgba := toRGBA(src)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	dw, dh := w, h
	if !o.IsHorizontal() {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range h {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := range w {
			dx, dy := o.mapPixel(x, y, w, h)
			i := dy*dst.Stride + dx*4
			copy(dst.Pix[i:i+4], row[x*4:x*4+4])
		}
	}
	return dst
}

// toRGBA 返回原点在 (0,0) 的 RGBA 图像；解码得到的 YCbCr 等格式由 draw 的快速路径转换。
func toRGBA(src image.Image) *image.RGBA {
	if m, ok := src.(*image.RGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func (o Orientation) mapPixel(x, y, w, h int) (int, int) {
	switch o {
	case FlipH:
		return w - 1 - x, y
	case Rotate180:
		return w - 1 - x, h - 1 - y
	case FlipV:
		return x, h - 1 - y
	case Transpose:
		return y, x
	case Rotate90CW:
		return h - 1 - y, x
	case Transverse:
		return h - 1 - y, w - 1 - x
	case Rotate270CW:
		return y, w - 1 - x
	}
	return x, y
}
