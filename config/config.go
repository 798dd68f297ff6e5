// Package config 读取进程设置（环境变量）与用户配置文件（TOML）。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix 是所有环境变量的前缀，例如 PHOTOBOOK_LOG_LEVEL。
const EnvPrefix = "PHOTOBOOK"

const appDir = "photobook"

// Settings 是由环境变量决定的进程设置。
type Settings struct {
	ConfigDir     string `envconfig:"CONFIG_DIR"`
	CacheDir      string `envconfig:"CACHE_DIR"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	ThumbnailSize int    `envconfig:"THUMBNAIL_SIZE" default:"512"`
	Workers       int    `envconfig:"WORKERS" default:"4"`
	ExportQuality int    `envconfig:"EXPORT_QUALITY" default:"92"`
	HistoryLimit  int    `envconfig:"HISTORY_LIMIT" default:"0"`
}

// Load reads the settings from the environment. Empty directories default to
// the per-user config and cache directories.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}
	if s.ConfigDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("无法确定配置目录: %w", err)
		}
		s.ConfigDir = filepath.Join(dir, appDir)
	}
	if s.CacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("无法确定缓存目录: %w", err)
		}
		s.CacheDir = filepath.Join(dir, appDir)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks numeric ranges and the log level.
func (s Settings) Validate() error {
	switch {
	case s.ThumbnailSize < 1:
		return fmt.Errorf("THUMBNAIL_SIZE 必须为正数，实际 %d", s.ThumbnailSize)
	case s.Workers < 1:
		return fmt.Errorf("WORKERS 必须为正数，实际 %d", s.Workers)
	case s.ExportQuality < 1 || s.ExportQuality > 100:
		return fmt.Errorf("EXPORT_QUALITY 必须在 1-100 之间，实际 %d", s.ExportQuality)
	case s.HistoryLimit < 0:
		return fmt.Errorf("HISTORY_LIMIT 不能为负数，实际 %d", s.HistoryLimit)
	}
	_, err := s.Level()
	return err
}

// Level parses LogLevel (debug, info, warn, error).
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("无效的日志级别 %q", s.LogLevel)
	}
	return l, nil
}

// ThumbnailDir is where the photo provider caches thumbnails.
func (s Settings) ThumbnailDir() string { return filepath.Join(s.CacheDir, "thumbnails") }

// UserConfigPath is the path of the per-user TOML file.
func (s Settings) UserConfigPath() string { return filepath.Join(s.ConfigDir, "config.toml") }
