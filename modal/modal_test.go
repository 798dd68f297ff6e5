package modal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/export"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	canvasrenderer "github.com/ByLCY/photobook/renderer/canvas"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	if _, _, err := s.Top(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	a := s.Push(&Basic{TitleText: "A"})
	b := s.Push(&Basic{TitleText: "B"})
	if !strings.HasPrefix(string(a), IDPrefix+"_") || a == b {
		t.Fatalf("ids = %s %s", a, b)
	}
	id, top, err := s.Top()
	if err != nil || id != b || top.Title() != "B" {
		t.Fatalf("栈顶应为最后推入的对话框: %v %v", id, err)
	}
	if !s.Dismiss(a) || s.Dismiss(a) {
		t.Fatalf("dismiss by id")
	}
	m, err := s.Pop()
	if err != nil || m.Title() != "B" || s.Len() != 0 {
		t.Fatalf("pop = %v %v", m, err)
	}
	if _, err := s.Pop(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestRespondDismissesOnlyOnAnswer(t *testing.T) {
	s := NewStack()
	confirmed := false
	s.Push(&Confirmation{TitleText: "关闭项目？", OnConfirm: func() { confirmed = true }})

	if _, err := s.Respond(None); err != nil || s.Len() != 1 {
		t.Fatalf("None 不应关闭对话框")
	}
	if r, err := s.Respond(Confirm); err != nil || r != Confirm {
		t.Fatalf("respond: %v %v", r, err)
	}
	if !confirmed || s.Len() != 0 {
		t.Fatalf("confirmed=%v len=%d", confirmed, s.Len())
	}
	if _, err := s.Respond(Cancel); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestConfirmationActions(t *testing.T) {
	c := &Confirmation{ConfirmLabel: "保存"}
	got := c.Actions()
	want := []Action{{Label: "取消", Response: Cancel, Enabled: true}, {Label: "保存", Response: Confirm, Enabled: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func smallState() *canvas.State {
	s := canvas.NewState(page.Page{Width: 40, Height: 20, Unit: page.Pixels, PPI: 72})
	s.AddLayer(layer.NewShapeLayer(geom.R(0, 0, 10, 10), &layer.Shape{Fill: layer.Black}))
	return s
}

func startExport(t *testing.T, m *export.Manager, st *canvas.State) export.TaskID {
	t.Helper()
	id, err := m.Export(context.Background(), export.Request{
		Pages:     []*canvas.State{st},
		Directory: t.TempDir(),
		FileName:  "album",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return id
}

func TestProgressClosesWhenTaskCompletes(t *testing.T) {
	m := export.NewManager(canvasrenderer.NewRenderer(), export.Options{})
	id := startExport(t, m, smallState())
	s := NewStack()
	p := NewProgress("导出", m, id)
	s.Push(p)
	m.Wait()

	finished := s.Tick()
	if len(finished) != 1 || finished[0].State != export.Completed {
		t.Fatalf("finished = %+v", finished)
	}
	if s.Len() != 0 || p.Fraction() != 1 || p.Task() != id {
		t.Fatalf("进度框应关闭: len=%d fraction=%v", s.Len(), p.Fraction())
	}
	if !strings.HasSuffix(p.Body(), "100%") {
		t.Fatalf("body = %q", p.Body())
	}
}

func TestProgressReportsFailure(t *testing.T) {
	st := canvas.NewState(page.Page{Width: 40, Height: 20, Unit: page.Pixels, PPI: 72})
	missing := photo.Photo{Path: filepath.Join(t.TempDir(), "gone.jpg"), Metadata: photo.Metadata{Width: 4, Height: 4, Orientation: photo.Normal}}
	st.AddLayer(layer.NewPhoto(missing, geom.R(0, 0, 10, 10)))

	m := export.NewManager(canvasrenderer.NewRenderer(), export.Options{})
	id := startExport(t, m, st)
	s := NewStack()
	s.Push(NewProgress("导出", m, id))
	m.Wait()

	finished := s.Tick()
	if len(finished) != 1 || finished[0].Err == nil || finished[0].Err.Kind != export.TextureLoading {
		t.Fatalf("finished = %+v", finished)
	}
	_, top, err := s.Top()
	if err != nil || top.Title() != "导出失败" || !strings.Contains(top.Body(), "texture-loading") {
		t.Fatalf("失败后应显示说明失败类型的提示框: %v", err)
	}
}

func TestProgressCancelAbandonsTask(t *testing.T) {
	m := export.NewManager(canvasrenderer.NewRenderer(), export.Options{})
	id := startExport(t, m, smallState())
	s := NewStack()
	s.Push(NewProgress("导出", m, id))
	if _, err := s.Respond(Cancel); err != nil {
		t.Fatalf("respond: %v", err)
	}
	m.Wait()
	if s.Len() != 0 {
		t.Fatalf("取消后对话框应关闭")
	}
	if _, err := m.Status(id); !errors.Is(err, export.ErrUnknownTask) {
		t.Fatalf("取消应放弃任务: %v", err)
	}
}

func TestFilter(t *testing.T) {
	lib := photo.NewLibrary()
	lib.Add(photo.Photo{Path: "a.jpg"})
	lib.AddTag("a.jpg", "beach")
	lib.AddTag("a.jpg", "family")

	var applied *photo.Query
	f := NewFilter(lib, photo.Query{Ratings: []photo.Rating{photo.Yes}})
	f.OnApply = func(q photo.Query) { applied = &q }
	if diff := cmp.Diff([]string{"beach", "family"}, f.AvailableTags()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if f.Modified() || f.Actions()[1].Enabled {
		t.Fatalf("未修改时不能应用")
	}

	f.ToggleRating(photo.Maybe)
	f.ToggleTag("beach")
	f.ToggleRating(photo.Yes)
	if !f.Modified() {
		t.Fatalf("expected modified")
	}
	f.Respond(Confirm)
	want := photo.Query{Ratings: []photo.Rating{photo.Maybe}, Tags: []string{"beach"}}
	if applied == nil {
		t.Fatalf("OnApply not called")
	}
	if diff := cmp.Diff(want, *applied); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}

	f.ToggleTag("beach")
	if f.Query.Tags != nil {
		t.Fatalf("移除最后一个标签后应不过滤: %v", f.Query.Tags)
	}
}

func TestPageSettingsAppliesWithHistory(t *testing.T) {
	e := canvas.NewEditor(canvas.NewState(page.A4()))
	p := NewPageSettings(e)
	p.Page.SetUnit(page.Centimeters)
	p.Page.PPI = 0
	if p.Actions()[1].Enabled || p.Respond(Confirm) {
		t.Fatalf("无效页面不能应用")
	}
	p.Page.PPI = 150
	if !p.Respond(Confirm) {
		t.Fatalf("expected dismiss")
	}
	if e.State.Page.PPI != 150 || e.State.Page.Unit != page.Centimeters {
		t.Fatalf("page = %+v", e.State.Page)
	}
	if !e.Undo() || e.State.Page.PPI != page.DefaultPPI {
		t.Fatalf("页面设置应可撤销")
	}
}
