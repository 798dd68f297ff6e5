package photo

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/image/draw"
)

// Status 是纹理查询的结果状态。
type Status int

const (
	Pending Status = iota
	Ready
	NotAvailable
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case NotAvailable:
		return "not-available"
	default:
		return "pending"
	}
}

// Texture is the result of a non-blocking texture query.
type Texture struct {
	Status Status
	Image  image.Image
	Err    error
}

// TextureSource is what the editor and the exporter need from a provider.
type TextureSource interface {
	Thumbnail(p Photo) Texture
	Texture(p Photo, withThumbnailBackup bool) Texture
	Load(ctx context.Context, p Photo) (image.Image, error)
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	// CacheDir 为空时缩略图只保存在内存中。
	CacheDir      string
	ThumbnailSize int
	Workers       int
	Logger        *slog.Logger
}

type kind int

const (
	kindThumb kind = iota
	kindFull
)

type entry struct {
	status Status
	img    image.Image
	err    error
}

type job struct {
	photo Photo
	kind  kind
}

// Provider 在后台工作池中解码照片与生成缩略图；查询接口从不阻塞，结果在之后的帧中可见。
type Provider struct {
	opts ProviderOptions
	log  *slog.Logger

	mu     sync.Mutex
	thumbs map[string]*entry
	full   map[string]*entry

	jobs   chan job
	wg     sync.WaitGroup
	active sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
	closed bool
}

// ErrClosed is reported for textures requested after Close.
var ErrClosed = errors.New("照片加载器已关闭")

var _ TextureSource = (*Provider)(nil)

// NewProvider starts the worker pool; Close stops it.
func NewProvider(ctx context.Context, opts ProviderOptions) *Provider {
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = 512
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Provider{
		opts:   opts,
		log:    logger,
		thumbs: map[string]*entry{},
		full:   map[string]*entry{},
		jobs:   make(chan job, 256),
		cancel: cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

// Close stops the workers and waits for them to exit.
func (p *Provider) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.cancel()
		p.active.Wait()
		close(p.jobs)
	})
	p.wg.Wait()
}

// Wait blocks until every queued job has finished.
func (p *Provider) Wait() { p.active.Wait() }

// Thumbnail returns the cached thumbnail or schedules its generation.
func (p *Provider) Thumbnail(ph Photo) Texture {
	return p.query(ph, kindThumb)
}

// Texture 返回全尺寸纹理；尚未就绪且 withThumbnailBackup 为 true 时，返回已就绪的缩略图。
func (p *Provider) Texture(ph Photo, withThumbnailBackup bool) Texture {
	t := p.query(ph, kindFull)
	if t.Status == Ready || !withThumbnailBackup {
		return t
	}
	if th := p.Thumbnail(ph); th.Status == Ready {
		return th
	}
	return t
}

// Load 同步解码全尺寸图片并放入缓存，导出时使用。
func (p *Provider) Load(ctx context.Context, ph Photo) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	if e, ok := p.full[ph.Path]; ok && e.status == Ready {
		p.mu.Unlock()
		return e.img, nil
	}
	p.mu.Unlock()

	img, err := decodeFile(ph.Path)
	p.store(p.full, ph.Path, img, err)
	return img, err
}

func (p *Provider) query(ph Photo, k kind) Texture {
	cache := p.full
	if k == kindThumb {
		cache = p.thumbs
	}
	p.mu.Lock()
	e, ok := cache[ph.Path]
	if !ok {
		e = &entry{status: Pending}
		cache[ph.Path] = e
	}
	t := Texture{Status: e.status, Image: e.img, Err: e.err}
	p.mu.Unlock()

	if !ok {
		p.enqueue(job{photo: ph, kind: k})
	}
	return t
}

func (p *Provider) enqueue(j job) {
	p.mu.Lock()
	closed := p.closed
	if !closed {
		p.active.Add(1)
	}
	p.mu.Unlock()
	if closed {
		p.fail(j, ErrClosed)
		return
	}
	select {
	case p.jobs <- j:
	default:
		// 队列已满时不阻塞调用方
		go func() { p.jobs <- j }()
	}
}

func (p *Provider) worker(ctx context.Context) {
	defer p.wg.Done()
	for j := range p.jobs {
		if ctx.Err() != nil {
			p.fail(j, ctx.Err())
			p.active.Done()
			continue
		}
		switch j.kind {
		case kindThumb:
			img, err := p.thumbnail(j.photo)
			p.store(p.thumbs, j.photo.Path, img, err)
		case kindFull:
			img, err := decodeFile(j.photo.Path)
			p.store(p.full, j.photo.Path, img, err)
		}
		p.active.Done()
	}
}

func (p *Provider) fail(j job, err error) {
	cache := p.full
	if j.kind == kindThumb {
		cache = p.thumbs
	}
	p.store(cache, j.photo.Path, nil, err)
}

func (p *Provider) store(cache map[string]*entry, key string, img image.Image, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.log.Error("texture load failed", "path", key, "error", err)
		cache[key] = &entry{status: NotAvailable, err: err}
		return
	}
	cache[key] = &entry{status: Ready, img: img}
}

func (p *Provider) thumbnail(ph Photo) (image.Image, error) {
	cachePath := p.thumbnailPath(ph)
	if cachePath != "" {
		if img, err := decodeFile(cachePath); err == nil {
			return img, nil
		}
	}
	src, err := decodeFile(ph.Path)
	if err != nil {
		return nil, err
	}
	thumb := Scale(src, p.opts.ThumbnailSize)
	if cachePath != "" {
		if err := writeJPEG(cachePath, thumb, 85); err != nil {
			p.log.Warn("thumbnail cache write failed", "path", cachePath, "error", err)
		} else {
			p.log.Debug("thumbnail generated", "photo", ph.Path, "cache", cachePath)
		}
	}
	return thumb, nil
}

// thumbnailPath 以路径和修改时间的哈希作为缓存文件名。
func (p *Provider) thumbnailPath(ph Photo) string {
	if p.opts.CacheDir == "" {
		return ""
	}
	h := fnv.New64a()
	h.Write([]byte(ph.Path))
	h.Write([]byte(strconv.FormatInt(ph.Metadata.ModTime.UnixNano(), 10)))
	name := strconv.FormatUint(h.Sum64(), 16) + "_" + strconv.Itoa(p.opts.ThumbnailSize) + ".jpg"
	return filepath.Join(p.opts.CacheDir, "thumbnails", name)
}

// Scale 把图片等比缩放到宽度为 width（已经更小的图片原样返回）。
func Scale(src image.Image, width int) image.Image {
	b := src.Bounds()
	if width <= 0 || b.Dx() <= width {
		return src
	}
	height := int(float64(b.Dy()) * float64(width) / float64(b.Dx()))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", path, err)
	}
	return img, nil
}

func writeJPEG(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
