package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// AutoSaveFile 是缓存目录中自动保存文件的名称。
const AutoSaveFile = "auto_save.json"

// AutoSavePath returns the autosave location inside cacheDir.
func AutoSavePath(cacheDir string) string { return filepath.Join(cacheDir, AutoSaveFile) }

// AutoSave 把项目写到 cacheDir 下的自动保存文件，覆盖上一次的结果。
func AutoSave(p *Project, cacheDir string) error {
	if cacheDir == "" {
		return fmt.Errorf("自动保存失败: 没有缓存目录")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("自动保存失败: %w", err)
	}
	return p.Save(AutoSavePath(cacheDir))
}

// LoadAutoSave 读取上一次自动保存的项目。没有自动保存时错误包装 os.ErrNotExist。
func LoadAutoSave(cacheDir string) (*Project, error) {
	return Load(AutoSavePath(cacheDir))
}
