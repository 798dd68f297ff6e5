package photo

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ByLCY/photobook/geom"
)

func TestOrientationRoundTrip(t *testing.T) {
	pts := []geom.Vec2{geom.V(0, 0), geom.V(0.25, 0.75), geom.V(1, 0.5), geom.V(0.1, 0.9)}
	for o := Normal; o <= Rotate270CW; o++ {
		for _, p := range pts {
			if got := o.UnmapPoint(o.MapPoint(p)); !got.ApproxEqual(p, 1e-12) {
				t.Fatalf("orientation %d: %+v -> %+v", o, p, got)
			}
		}
	}
}

// TestRotate90CropMapping 对应竖拍照片：显示帧的右半部分来自位图的上半部分。
func TestRotate90CropMapping(t *testing.T) {
	right := geom.Rect{Min: geom.V(0.5, 0), Max: geom.V(1, 1)}
	got := Rotate90CW.UnmapRect(right)
	want := geom.Rect{Min: geom.V(0, 0), Max: geom.V(1, 0.5)}
	if !got.ApproxEqual(want, 1e-12) {
		t.Fatalf("unmap = %+v, want %+v", got, want)
	}
	if back := Rotate90CW.MapRect(got); !back.ApproxEqual(right, 1e-12) {
		t.Fatalf("map back = %+v", back)
	}
}

func TestDisplaySizeAndRadians(t *testing.T) {
	md := Metadata{Width: 4000, Height: 3000, Orientation: Rotate90CW}
	w, h := md.DisplaySize()
	if w != 3000 || h != 4000 {
		t.Fatalf("display size = %gx%g", w, h)
	}
	if math.Abs(md.AspectRatio()-0.75) > 1e-12 {
		t.Fatalf("aspect = %g", md.AspectRatio())
	}
	if Rotate90CW.Radians() != math.Pi/2 || Rotate270CW.Radians() != -math.Pi/2 || Normal.Radians() != 0 {
		t.Fatalf("radians mismatch")
	}
	if Orientation(0).OrDefault() != Normal || Orientation(9).IsHorizontal() != true {
		t.Fatalf("非法方向应按 Normal 处理")
	}
}

// TestApplyMatchesPointMapping 像素重排与归一化坐标映射一致。
func TestApplyMatchesPointMapping(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, marker) // 左上角
	for o := Normal; o <= Rotate270CW; o++ {
		dst := o.Apply(src)
		b := dst.Bounds()
		dw, dh := o.DisplaySize(4, 2)
		if float64(b.Dx()) != dw || float64(b.Dy()) != dh {
			t.Fatalf("orientation %d: bounds %v", o, b)
		}
		// 像素中心 (0.5,0.5)/(4,2) 映射后的位置
		p := o.MapPoint(geom.V(0.5/4, 0.5/2))
		x, y := int(p.X*dw), int(p.Y*dh)
		if got := color.RGBAModel.Convert(dst.At(x, y)).(color.RGBA); got != marker {
			t.Fatalf("orientation %d: marker not at (%d,%d), got %v", o, x, y, got)
		}
	}
}

func TestApplyHandlesOffsetAndYCbCrSources(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := range 10 {
		for x := range 10 {
			big.SetRGBA(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), A: 255})
		}
	}
	// 原点在 (5,5) 的 3x2 子图
	src := big.SubImage(image.Rect(5, 5, 8, 7))
	for o := Normal; o <= Rotate270CW; o++ {
		dst := o.Apply(src)
		if o == Normal {
			continue
		}
		for y := range 2 {
			for x := range 3 {
				dx, dy := o.mapPixel(x, y, 3, 2)
				want := big.RGBAAt(5+x, 5+y)
				if got := dst.(*image.RGBA).RGBAAt(dx, dy); got != want {
					t.Fatalf("orientation %d: (%d,%d) -> (%d,%d) = %v, want %v", o, x, y, dx, dy, got, want)
				}
			}
		}
	}

	ycc := image.NewYCbCr(image.Rect(0, 0, 4, 2), image.YCbCrSubsampleRatio444)
	for i := range ycc.Y {
		ycc.Y[i] = 200
		ycc.Cb[i] = 128
		ycc.Cr[i] = 128
	}
	dst := Rotate90CW.Apply(ycc)
	if b := dst.Bounds(); b != image.Rect(0, 0, 2, 4) {
		t.Fatalf("bounds = %v", b)
	}
	if got := color.RGBAModel.Convert(dst.At(1, 3)).(color.RGBA); got.R < 190 || got.R > 210 || got.A != 255 {
		t.Fatalf("pixel = %v", got)
	}
}
