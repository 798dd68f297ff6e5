package export

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"

	"github.com/ByLCY/photobook/renderer"
)

// IDPrefix 是导出任务 id 的 typeid 前缀。
const IDPrefix = "exp"

// TaskID identifies an export task, e.g. "exp_01h455vb4pex5vsknk084sn02q".
type TaskID string

// NewTaskID generates a fresh task id.
func NewTaskID() TaskID { return TaskID(typeid.MustGenerate(IDPrefix).String()) }

// ParseTaskID validates s and its prefix.
func ParseTaskID(s string) (TaskID, error) {
	parsed, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("无效的任务 id %q: %w", s, err)
	}
	if parsed.Prefix() != IDPrefix {
		return "", fmt.Errorf("任务 id 前缀应为 %q，实际为 %q", IDPrefix, parsed.Prefix())
	}
	return TaskID(s), nil
}

func (id TaskID) String() string { return string(id) }

// Kind 区分导出失败的阶段。
type Kind int

const (
	SurfaceCreation Kind = iota + 1
	TextureLoading
	ImageEncoding
	File
	PdfRendering
)

func (k Kind) String() string {
	switch k {
	case SurfaceCreation:
		return "surface-creation"
	case TextureLoading:
		return "texture-loading"
	case ImageEncoding:
		return "image-encoding"
	case File:
		return "file"
	case PdfRendering:
		return "pdf-rendering"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error 携带失败阶段，Unwrap 返回底层错误。
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("导出失败 (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify 把渲染错误归类；图片加载失败总是 TextureLoading。
func classify(err error, fallback Kind) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, renderer.ErrImage) {
		return &Error{Kind: TextureLoading, Err: err}
	}
	return &Error{Kind: fallback, Err: err}
}
