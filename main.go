package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/compose"
	"github.com/ByLCY/photobook/config"
	"github.com/ByLCY/photobook/export"
	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/modal"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/project"
	canvasrenderer "github.com/ByLCY/photobook/renderer/canvas"
	"github.com/ByLCY/photobook/template"
)

func main() {
	projectPath := flag.String("project", "", "相册项目文件 (.rpb)")
	templatePath := flag.String("templates", "", "模板文件；为空时使用内置模板")
	templateName := flag.String("template", "", "只导出指定名称的模板")
	outDir := flag.String("out", "output", "导出目录")
	name := flag.String("name", "", "导出文件名；默认取项目名称")
	savePath := flag.String("save", "", "把页面另存为项目文件")
	debug := flag.String("debug", "", "页面描述调试 JSON 输出路径")
	restore := flag.Bool("restore", false, "从上一次的自动保存恢复项目")
	flag.Parse()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("读取设置失败: %v", err)
	}
	level, _ := settings.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	user, err := config.LoadUser(settings.UserConfigPath())
	if err != nil {
		log.Fatalf("读取用户配置失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider := photo.NewProvider(ctx, photo.ProviderOptions{
		CacheDir:      settings.ThumbnailDir(),
		ThumbnailSize: settings.ThumbnailSize,
		Workers:       settings.Workers,
	})
	defer provider.Close()

	var opts []history.Option[canvas.Snapshot]
	if settings.HistoryLimit > 0 {
		opts = append(opts, history.WithLimit[canvas.Snapshot](settings.HistoryLimit))
	}

	var proj *project.Project
	if *restore {
		proj, err = project.LoadAutoSave(settings.CacheDir)
		if err != nil {
			log.Fatalf("%v", err)
		}
	} else if *projectPath != "" {
		proj, err = project.Load(*projectPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := user.AddRecentProject(*projectPath); err != nil {
			slog.Warn("recent projects not updated", "error", err)
		}
	} else {
		proj, err = newProject(user, *templatePath, *templateName, flag.Args(), opts)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	deck := proj.Deck(opts...)
	if deck.Len() == 0 {
		log.Fatalf("项目 %s 没有页面", proj.Name)
	}
	if err := project.AutoSave(proj, settings.CacheDir); err != nil {
		slog.Warn("autosave failed", "error", err)
	}

	if *savePath != "" {
		path := *savePath
		if filepath.Ext(path) != project.Extension {
			path += project.Extension
		}
		if err := proj.Save(path); err != nil {
			log.Fatalf("%v", err)
		}
		if err := user.AddRecentProject(path); err != nil {
			slog.Warn("recent projects not updated", "error", err)
		}
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Images: export.PhotoLoader(provider)})

	if *debug != "" {
		if err := writeDebug(deck, proj.Name, r, *debug); err != nil {
			log.Fatalf("%v", err)
		}
	}

	fileName := *name
	if fileName == "" {
		fileName = proj.Name
	}
	manager := export.NewManager(r, export.Options{Quality: settings.ExportQuality})
	id, err := manager.Export(ctx, export.Request{
		Pages:     deck.States(),
		Directory: *outDir,
		FileName:  fileName,
		Project:   proj.Name,
		Meta:      compose.DocumentMeta{Creator: "photobook"},
	})
	if err != nil {
		log.Fatalf("导出失败: %v", err)
	}

	files, err := wait(ctx, manager, id)
	manager.Wait()
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, f := range files {
		fmt.Printf("已导出：%s\n", f)
	}
}

// newProject 用照片文件与模板拼出一个未保存的项目：每张照片一页，其后每个模板一页。
func newProject(user *config.User, templatePath, templateName string, photos []string, opts []history.Option[canvas.Snapshot]) (*project.Project, error) {
	templates, err := loadTemplates(templatePath, templateName)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 && len(templates) == 0 {
		return nil, fmt.Errorf("没有可导出的照片或模板")
	}

	p := project.New("photobook")
	if len(photos) == 1 {
		p.Name = strings.TrimSuffix(filepath.Base(photos[0]), filepath.Ext(photos[0]))
	}
	defaultPage := user.NewProjectPage()
	p.Settings.DefaultPage = &defaultPage

	lib := photo.NewLibrary()
	deck := canvas.NewDeck(defaultPage, opts...)
	for _, path := range photos {
		ph, err := photo.Open(path)
		if err != nil {
			return nil, fmt.Errorf("读取照片 %s 失败: %w", path, err)
		}
		lib.Add(ph)
		deck.AddPage()
		e, _ := deck.Selected()
		e.AddPhoto(ph)
	}
	for _, t := range templates {
		deck.AddPageFromTemplate(t)
	}
	p.SetPages(deck)
	p.SetLibrary(lib, photo.GroupByDate)
	return p, nil
}

func loadTemplates(path, name string) ([]template.Template, error) {
	var all []template.Template
	if path == "" {
		all = template.BuiltIn()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
		}
		defer f.Close()
		all, err = template.Parse(path, f)
		if err != nil {
			return nil, fmt.Errorf("解析模板失败: %w", err)
		}
	}
	if name == "" {
		if path == "" {
			return nil, nil
		}
		return all, nil
	}
	for _, t := range all {
		if t.Name == name {
			return []template.Template{t}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", template.ErrUnknown, name)
}

// wait 像界面一样每帧轮询进度对话框，直到任务结束或被中断。
func wait(ctx context.Context, manager *export.Manager, id export.TaskID) ([]string, error) {
	stack := modal.NewStack()
	stack.Push(modal.NewProgress("导出", manager, id))
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			stack.Respond(modal.Cancel)
			return nil, fmt.Errorf("导出已取消")
		case <-ticker.C:
		}
		if done := stack.Tick(); len(done) > 0 {
			st := done[0]
			if st.Err != nil {
				return nil, st.Err
			}
			return st.Files, nil
		}
		if _, top, err := stack.Top(); err == nil {
			slog.Debug("export progress", "status", top.Body())
		}
	}
}

func writeDebug(deck *canvas.Deck, projectName string, ts compose.Typesetter, path string) error {
	res, err := compose.Build(deck.States(), compose.BuildOptions{Typesetter: ts, Project: projectName})
	if err != nil {
		return fmt.Errorf("生成页面描述失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := compose.WriteDebugJSON(res, path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
