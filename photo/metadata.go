package photo

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Metadata 描述照片位图的尺寸与 EXIF 信息。Width/Height 是未旋转的位图尺寸。
type Metadata struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Orientation Orientation `json:"orientation"`
	FileName    string      `json:"file_name"`
	// DateTaken 为 EXIF DateTime，缺失时为零值。
	DateTaken time.Time `json:"date_taken,omitzero"`
	ModTime   time.Time `json:"mod_time,omitzero"`
}

// DisplaySize returns width and height after the EXIF orientation is applied.
func (m Metadata) DisplaySize() (float64, float64) {
	return m.Orientation.DisplaySize(float64(m.Width), float64(m.Height))
}

// AspectRatio 返回显示方向下的宽高比。
func (m Metadata) AspectRatio() float64 {
	w, h := m.DisplaySize()
	if w <= 0 || h <= 0 {
		return 1
	}
	return w / h
}

// Date returns the capture date, falling back to the file modification time.
func (m Metadata) Date() (time.Time, bool) {
	if !m.DateTaken.IsZero() {
		return m.DateTaken, true
	}
	if !m.ModTime.IsZero() {
		return m.ModTime, true
	}
	return time.Time{}, false
}

// ReadMetadata 读取图片尺寸与 EXIF（方向、拍摄时间）。没有 EXIF 的图片按 Normal 处理。
func ReadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("打开图片失败: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Metadata{}, fmt.Errorf("读取图片尺寸失败 %s: %w", path, err)
	}
	md := Metadata{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Orientation: Normal,
		FileName:    filepath.Base(path),
	}
	if st, err := f.Stat(); err == nil {
		md.ModTime = st.ModTime()
	}

	if _, err := f.Seek(0, 0); err != nil {
		return md, nil
	}
	x, err := exif.Decode(f)
	if err != nil {
		return md, nil
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			md.Orientation = Orientation(v).OrDefault()
		}
	}
	if t, err := x.DateTime(); err == nil {
		md.DateTaken = t
	}
	return md, nil
}
