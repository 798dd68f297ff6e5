// Package project 读写相册项目文件（.rpb）。
//
// 文件是带版本号的 JSON。旧版本在加载时迁移到当前版本：
//
//	v1  照片、页面与分组方式；图层中的照片只记录路径
//	v2  增加 project_settings
//	v3  增加项目 id、名称、照片标签，图层中的照片带完整元数据
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/template"
)

const (
	// Version is the version written by Save.
	Version = 3
	// Extension is the project file extension.
	Extension = ".rpb"

	format = "photobook"
)

var (
	ErrUnsupportedVersion = errors.New("不支持的项目版本")
	ErrNotAProject        = errors.New("不是相册项目文件")
)

// Photo 是照片库中的一项。
type Photo struct {
	Path     string          `json:"path"`
	Rating   photo.Rating    `json:"rating"`
	Tags     []string        `json:"tags,omitempty"`
	Metadata *photo.Metadata `json:"metadata,omitempty"`
}

// Page 是一页画布的持久化部分。
type Page struct {
	Layers           *layer.Stack       `json:"layers"`
	Page             page.Page          `json:"page"`
	Template         *template.Template `json:"template,omitempty"`
	QuickLayoutOrder []layer.ID         `json:"quick_layout_order"`
}

// Settings 是随项目保存的设置。
type Settings struct {
	DefaultPage *page.Page `json:"default_page,omitempty"`
}

// Project 是一个相册项目。
type Project struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Photos   []Photo        `json:"photos"`
	Pages    []Page         `json:"pages"`
	GroupBy  photo.Grouping `json:"group_by"`
	Settings Settings       `json:"project_settings"`
}

type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

type fileJSON struct {
	header
	*Project
}

// New creates an empty project.
func New(name string) *Project {
	return &Project{ID: uuid.New(), Name: name, GroupBy: photo.GroupByDate}
}

// DefaultPage 返回新建页面使用的页面设置。
func (p *Project) DefaultPage() page.Page {
	if p.Settings.DefaultPage != nil && p.Settings.DefaultPage.Validate() == nil {
		return *p.Settings.DefaultPage
	}
	return page.Default()
}

// SetPages 保存牌组中每一页的当前状态（深拷贝）。
func (p *Project) SetPages(d *canvas.Deck) {
	p.Pages = p.Pages[:0]
	for _, st := range d.States() {
		pg := Page{
			Layers:           st.Layers.Clone(),
			Page:             st.Page,
			QuickLayoutOrder: slices.Clone(st.QuickLayoutOrder),
		}
		if st.Template != nil {
			t := st.Template.Clone()
			pg.Template = &t
		}
		p.Pages = append(p.Pages, pg)
	}
}

// SetLibrary 保存照片库的照片、评级与标签。
func (p *Project) SetLibrary(lib *photo.Library, groupBy photo.Grouping) {
	p.GroupBy = groupBy
	p.Photos = p.Photos[:0]
	for _, ph := range lib.Photos() {
		md := ph.Metadata
		p.Photos = append(p.Photos, Photo{
			Path:     ph.Path,
			Rating:   lib.Rating(ph.Path),
			Tags:     lib.Tags(ph.Path),
			Metadata: &md,
		})
	}
}

// Deck 用项目页面构建编辑用的牌组，选中第一页。
func (p *Project) Deck(opts ...history.Option[canvas.Snapshot]) *canvas.Deck {
	d := canvas.NewDeck(p.DefaultPage(), opts...)
	for _, pg := range p.Pages {
		var layers *layer.Stack
		if pg.Layers != nil {
			layers = pg.Layers.Clone()
		}
		var t *template.Template
		if pg.Template != nil {
			c := pg.Template.Clone()
			t = &c
		}
		d.AddState(canvas.NewStateWithLayers(layers, pg.Page, t, pg.QuickLayoutOrder))
	}
	if ids := d.IDs(); len(ids) > 0 {
		d.Select(ids[0])
	}
	return d
}

// Library 用项目中的照片构建照片库。
func (p *Project) Library() *photo.Library {
	lib := photo.NewLibrary()
	for _, ph := range p.Photos {
		entry := photo.Photo{Path: ph.Path}
		if ph.Metadata != nil {
			entry.Metadata = *ph.Metadata
		}
		lib.Add(entry)
		lib.SetRating(ph.Path, ph.Rating)
		lib.SetTags(ph.Path, ph.Tags)
	}
	return lib
}

// Encode writes p as the current version.
func (p *Project) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fileJSON{header: header{Format: format, Version: Version}, Project: p}); err != nil {
		return fmt.Errorf("编码项目失败: %w", err)
	}
	return nil
}

// Save 原子地写入 path（先写临时文件再改名）。
func (p *Project) Save(path string) error {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".photobook-*")
	if err != nil {
		return fmt.Errorf("保存项目失败: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("保存项目失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("保存项目失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("保存项目失败: %w", err)
	}
	slog.Info("project saved", "path", path, "id", p.ID, "pages", len(p.Pages), "photos", len(p.Photos))
	return nil
}

// Load reads and migrates the project at path.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开项目文件失败: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := Decode(f, name, photo.ReadMetadata)
	if err != nil {
		return nil, fmt.Errorf("加载项目 %s 失败: %w", path, err)
	}
	slog.Info("project loaded", "path", path, "id", p.ID, "pages", len(p.Pages), "photos", len(p.Photos))
	return p, nil
}

// MetadataReader reads photo metadata from disk during migration.
type MetadataReader func(path string) (photo.Metadata, error)

// Decode 解析并迁移项目；name 用于旧版本中缺失的项目名称。
func Decode(r io.Reader, name string, readMetadata MetadataReader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAProject, err)
	}
	if h.Format != format {
		return nil, fmt.Errorf("%w: format=%q", ErrNotAProject, h.Format)
	}
	if h.Version < 1 || h.Version > Version {
		return nil, fmt.Errorf("%w: %d（当前支持 1-%d）", ErrUnsupportedVersion, h.Version, Version)
	}

	p := &Project{}
	if err := json.Unmarshal(data, &fileJSON{Project: p}); err != nil {
		return nil, fmt.Errorf("解析项目文件失败: %w", err)
	}
	if h.Version < Version {
		migrate(p, h.Version, name, readMetadata)
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

func migrate(p *Project, from int, name string, readMetadata MetadataReader) {
	if from < 2 {
		p.Settings = Settings{}
	}
	if from < 3 {
		p.ID = uuid.New()
		p.Name = name
		fillMetadata(p, readMetadata)
	}
	slog.Info("project migrated", "from", from, "to", Version, "id", p.ID)
}

// fillMetadata 为旧版本中只有路径的照片读取元数据；读取失败的照片保持空元数据。
func fillMetadata(p *Project, readMetadata MetadataReader) {
	if readMetadata == nil {
		return
	}
	cache := map[string]*photo.Metadata{}
	lookup := func(path string) *photo.Metadata {
		if md, ok := cache[path]; ok {
			return md
		}
		md, err := readMetadata(path)
		if err != nil {
			slog.Warn("photo metadata unavailable", "path", path, "error", err)
			cache[path] = nil
			return nil
		}
		cache[path] = &md
		return &md
	}
	fix := func(ph *photo.Photo) {
		if ph.Metadata.Width > 0 && ph.Metadata.Height > 0 {
			return
		}
		if md := lookup(ph.Path); md != nil {
			ph.Metadata = *md
		}
	}

	for i := range p.Photos {
		if p.Photos[i].Metadata == nil {
			p.Photos[i].Metadata = lookup(p.Photos[i].Path)
		}
	}
	for _, pg := range p.Pages {
		if pg.Layers == nil {
			continue
		}
		for _, l := range pg.Layers.Layers() {
			switch c := l.Content.(type) {
			case *layer.Photo:
				fix(&c.Photo)
			case *layer.TemplatePhoto:
				if c.Photo != nil {
					fix(&c.Photo.Photo)
				}
			}
		}
	}
}
