package photo

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestReadMetadataWithoutExif(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "a.png", 64, 32)
	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	md := p.Metadata
	if md.Width != 64 || md.Height != 32 || md.Orientation != Normal || md.FileName != "a.png" {
		t.Fatalf("metadata = %+v", md)
	}
	if p.AspectRatio() != 2 {
		t.Fatalf("aspect = %g", p.AspectRatio())
	}
	if _, ok := md.Date(); !ok {
		t.Fatalf("应回退到文件修改时间")
	}
}

func TestProviderThumbnailLifecycle(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "big.png", 256, 128)
	p := NewProvider(context.Background(), ProviderOptions{CacheDir: filepath.Join(dir, "cache"), ThumbnailSize: 64, Workers: 2})
	defer p.Close()

	ph := Photo{Path: path}
	if got := p.Thumbnail(ph); got.Status != Pending {
		t.Fatalf("首次查询应为 Pending，实际 %v", got.Status)
	}
	p.Wait()
	got := p.Thumbnail(ph)
	if got.Status != Ready {
		t.Fatalf("status = %v err=%v", got.Status, got.Err)
	}
	if b := got.Image.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("thumbnail bounds = %v", b)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "cache", "thumbnails"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("缩略图应写入缓存目录: %v %v", entries, err)
	}

	// 全尺寸纹理尚未就绪时回退到缩略图
	backup := p.Texture(ph, true)
	if backup.Status != Ready || backup.Image.Bounds().Dx() != 64 {
		t.Fatalf("backup = %+v", backup.Status)
	}
	p.Wait()
	full := p.Texture(ph, true)
	if full.Status != Ready || full.Image.Bounds().Dx() != 256 {
		t.Fatalf("full texture = %v", full.Status)
	}
}

func TestProviderMissingFile(t *testing.T) {
	p := NewProvider(context.Background(), ProviderOptions{Workers: 1})
	defer p.Close()
	ph := Photo{Path: filepath.Join(t.TempDir(), "missing.jpg")}
	p.Texture(ph, false)
	p.Wait()
	got := p.Texture(ph, false)
	if got.Status != NotAvailable || got.Err == nil {
		t.Fatalf("缺失文件应为 NotAvailable: %+v", got)
	}
	if _, err := p.Load(context.Background(), ph); err == nil {
		t.Fatalf("Load 应返回错误")
	}
}

func TestProviderAfterClose(t *testing.T) {
	p := NewProvider(context.Background(), ProviderOptions{Workers: 1})
	p.Close()
	got := p.Thumbnail(Photo{Path: "/nowhere.png"})
	if got.Status != Pending {
		t.Fatalf("first query status = %v", got.Status)
	}
	if again := p.Thumbnail(Photo{Path: "/nowhere.png"}); again.Status != NotAvailable {
		t.Fatalf("关闭后应为 NotAvailable: %v", again.Status)
	}
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 8, 8)
	writePNG(t, dir, "b.png", 8, 4)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLibrary()
	n, err := l.ImportDir(dir)
	if err != nil || n != 2 || l.Len() != 2 {
		t.Fatalf("import = %d %v", n, err)
	}
}
