// Package export 在后台把相册页面导出为逐页 JPEG 与一个 PDF 文件。
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/compose"
	"github.com/ByLCY/photobook/renderer"
)

// DefaultQuality is the JPEG quality used when Options.Quality is unset.
const DefaultQuality = 92

// ErrUnknownTask is returned for task ids the manager does not know (or has forgotten).
var ErrUnknownTask = errors.New("未知的导出任务")

// Backend 是导出需要的排版与绘制能力，renderer/canvas 的 Renderer 实现了它。
type Backend interface {
	compose.Typesetter
	renderer.Renderer
	renderer.Rasterizer
}

// State is the coarse state of an export task.
type State int

const (
	InProgress State = iota
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "in-progress"
	}
}

// Status 是某一时刻观察到的任务状态。Fraction 取值 [0,1]；Failed 时 Err 非空。
type Status struct {
	State    State
	Fraction float64
	Err      *Error
	Files    []string // 已写出的文件，按写出顺序
}

// Done reports whether the task has finished, successfully or not.
func (s Status) Done() bool { return s.State != InProgress }

// Request describes one export.
type Request struct {
	Pages     []*canvas.State
	Directory string
	FileName  string
	Project   string
	Meta      compose.DocumentMeta
}

// Options configures a Manager.
type Options struct {
	Quality int
	Logger  *slog.Logger
}

type task struct {
	status Status
	cancel context.CancelFunc
}

// Manager 运行导出任务并保存其状态，供界面在之后的帧中轮询。并发安全。
type Manager struct {
	backend Backend
	quality int
	log     *slog.Logger

	mu    sync.Mutex
	tasks map[TaskID]*task
	wg    sync.WaitGroup
}

// NewManager creates a manager drawing through backend.
func NewManager(backend Backend, opts Options) *Manager {
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, quality: opts.Quality, log: logger, tasks: map[TaskID]*task{}}
}

// Export 校验请求并生成页面描述，然后在后台依次写出每页的 JPEG 与整本 PDF。
// 页面在返回前即被转换，调用方之后可以继续修改画布。
func (m *Manager) Export(ctx context.Context, req Request) (TaskID, error) {
	if len(req.Pages) == 0 {
		return "", fmt.Errorf("没有可导出的页面")
	}
	if strings.TrimSpace(req.Directory) == "" {
		return "", fmt.Errorf("导出目录不能为空")
	}
	name := sanitizeFileName(req.FileName)
	if name == "" {
		return "", fmt.Errorf("导出文件名不能为空")
	}

	res, err := compose.Build(req.Pages, compose.BuildOptions{
		Typesetter: m.backend,
		Project:    req.Project,
		Meta:       req.Meta,
	})
	if err != nil {
		return "", fmt.Errorf("生成页面描述失败: %w", err)
	}

	id := NewTaskID()
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.mu.Lock()
	m.tasks[id] = &task{status: Status{State: InProgress}, cancel: cancel}
	m.mu.Unlock()

	m.log.Info("export started", "task", id, "pages", len(res.Pages), "dir", req.Directory, "name", name)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		m.run(ctx, id, res, req.Directory, name)
	}()
	return id, nil
}

// Status returns the latest status of a task.
func (m *Manager) Status(id TaskID) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	st := t.status
	st.Files = append([]string(nil), st.Files...)
	return st, nil
}

// Abandon 取消任务并丢弃其结果；已写出的文件保留在磁盘上。
func (m *Manager) Abandon(id TaskID) error {
	m.mu.Lock()
	t, ok := m.tasks[id]
	delete(m.tasks, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, id)
	}
	t.cancel()
	m.log.Info("export abandoned", "task", id)
	return nil
}

// Wait blocks until every running task has returned.
func (m *Manager) Wait() { m.wg.Wait() }

func (m *Manager) run(ctx context.Context, id TaskID, res *compose.Result, dir, name string) {
	steps := float64(len(res.Pages) + 1)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.fail(id, &Error{Kind: File, Err: err})
		return
	}

	for i, pg := range res.Pages {
		img, err := m.backend.RasterizePage(ctx, pg)
		if err != nil {
			m.fail(id, classify(err, SurfaceCreation))
			return
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", name, i+1))
		if err := m.writeJPEG(path, img); err != nil {
			m.fail(id, err)
			return
		}
		m.progress(id, float64(i+1)/steps, path)
	}

	data, err := m.backend.Render(ctx, res)
	if err != nil {
		m.fail(id, classify(err, PdfRendering))
		return
	}
	path := filepath.Join(dir, name+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.fail(id, &Error{Kind: File, Err: err})
		return
	}

	m.mu.Lock()
	if t, ok := m.tasks[id]; ok {
		t.status.State = Completed
		t.status.Fraction = 1
		t.status.Files = append(t.status.Files, path)
	}
	m.mu.Unlock()
	m.log.Info("export complete", "task", id, "pdf", path, "bytes", len(data))
}

func (m *Manager) writeJPEG(path string, img image.Image) *Error {
	f, err := os.Create(path)
	if err != nil {
		return &Error{Kind: File, Err: err}
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: m.quality}); err != nil {
		f.Close()
		return &Error{Kind: ImageEncoding, Err: err}
	}
	if err := f.Close(); err != nil {
		return &Error{Kind: File, Err: err}
	}
	return nil
}

func (m *Manager) progress(id TaskID, fraction float64, file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.status.Fraction = fraction
		t.status.Files = append(t.status.Files, file)
	}
}

func (m *Manager) fail(id TaskID, err *Error) {
	m.mu.Lock()
	if t, ok := m.tasks[id]; ok {
		t.status.State = Failed
		t.status.Err = err
	}
	m.mu.Unlock()
	m.log.Error("export failed", "task", id, "kind", err.Kind, "error", err.Err)
}

// sanitizeFileName 去掉路径分隔符等不适合出现在文件名中的字符。
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".jpg", ".jpeg":
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' ' || r == '.' {
			return r
		}
		return '-'
	}, name)
}
