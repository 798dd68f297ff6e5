package export

import (
	"context"
	"image"

	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/renderer"
)

// PhotoLoader 让渲染器通过照片加载器（及其缓存）读取全尺寸图片。
func PhotoLoader(src photo.TextureSource) renderer.ImageLoader {
	return renderer.ImageLoaderFunc(func(ctx context.Context, path string) (image.Image, error) {
		return src.Load(ctx, photo.Photo{Path: path})
	})
}
