package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/photobook/page"
)

// MaxRecentProjects caps the recent project list.
const MaxRecentProjects = 10

// PagePreset 是配置文件中的页面设置。
type PagePreset struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Unit   string  `toml:"unit"`
	PPI    int     `toml:"ppi"`
}

// PresetOf converts a page into its config form.
func PresetOf(p page.Page) PagePreset {
	return PagePreset{Width: p.Width, Height: p.Height, Unit: p.Unit.String(), PPI: p.PPI}
}

// Page validates the preset.
func (p PagePreset) Page() (page.Page, error) {
	u, err := page.ParseUnit(p.Unit)
	if err != nil {
		return page.Page{}, err
	}
	return page.New(p.Width, p.Height, u, p.PPI)
}

// User 是每个用户的配置文件 config.toml。
type User struct {
	RecentProjects []string    `toml:"recent_projects"`
	DefaultPage    *PagePreset `toml:"default_page,omitempty"`

	path string
}

// LoadUser 读取 path；文件不存在时返回空配置，之后的 Save 会创建它。
func LoadUser(path string) (*User, error) {
	u := &User{path: path}
	md, err := toml.DecodeFile(path, u)
	if errors.Is(err, fs.ErrNotExist) {
		return u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("unknown config keys", "path", path, "keys", fmt.Sprint(undecoded))
	}
	return u, nil
}

// Path returns the file the config is persisted to.
func (u *User) Path() string { return u.path }

// Save writes the config back to its file.
func (u *User) Save() error {
	if u.path == "" {
		return fmt.Errorf("配置文件路径为空")
	}
	if err := os.MkdirAll(filepath.Dir(u.path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	f, err := os.Create(u.path)
	if err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(u); err != nil {
		f.Close()
		return fmt.Errorf("编码配置文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	slog.Debug("config saved", "path", u.path)
	return nil
}

// AddRecentProject 把项目移到列表最前（去重，最多 MaxRecentProjects 个）并保存。
func (u *User) AddRecentProject(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.Clean(path)
	u.RecentProjects = slices.DeleteFunc(u.RecentProjects, func(p string) bool { return p == path })
	u.RecentProjects = slices.Insert(u.RecentProjects, 0, path)
	if len(u.RecentProjects) > MaxRecentProjects {
		u.RecentProjects = u.RecentProjects[:MaxRecentProjects]
	}
	return u.Save()
}

// NewProjectPage 返回新项目使用的页面：配置中的默认页面，无效或未设置时为 A4。
func (u *User) NewProjectPage() page.Page {
	if u.DefaultPage == nil {
		return page.Default()
	}
	p, err := u.DefaultPage.Page()
	if err != nil {
		slog.Warn("invalid default page in config", "path", u.path, "error", err)
		return page.Default()
	}
	return p
}
