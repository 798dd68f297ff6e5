package renderer

import (
	"context"
	"errors"
	"image"

	"github.com/ByLCY/photobook/compose"
)

// ErrImage 标记照片读取或解码失败，导出据此区分失败类型。
var ErrImage = errors.New("加载图片失败")

// Renderer 将页面描述输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(ctx context.Context, result *compose.Result) ([]byte, error)
}

// Rasterizer 把单页绘制为位图，按页面 PPI 决定像素尺寸。
type Rasterizer interface {
	RasterizePage(ctx context.Context, page compose.Page) (*image.RGBA, error)
}

// ImageLoader 按路径提供全尺寸位图（尚未应用 EXIF 方向）。
type ImageLoader interface {
	LoadImage(ctx context.Context, path string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, path string) (image.Image, error)

// LoadImage calls f.
func (f ImageLoaderFunc) LoadImage(ctx context.Context, path string) (image.Image, error) {
	return f(ctx, path)
}
