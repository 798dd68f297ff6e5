package layer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/photobook/geom"
)

func textLayer(s string) *Layer { return NewTextLayer(geom.R(0, 0, 10, 10), NewText(s, 12)) }

func TestStackOrderAndRemove(t *testing.T) {
	a, b, c := textLayer("a"), textLayer("b"), textLayer("c")
	s := NewStack(a, b, c)
	if s.Add(b) {
		t.Fatalf("重复添加应被忽略")
	}
	if diff := cmp.Diff([]ID{a.ID, b.ID, c.ID}, s.IDs()); diff != "" {
		t.Fatalf("ids (-want +got):\n%s", diff)
	}
	top := s.TopDown()
	if top[0] != c || top[2] != a {
		t.Fatalf("TopDown 顺序错误")
	}
	if !s.Remove(b.ID) || s.Remove(b.ID) {
		t.Fatalf("Remove 结果错误")
	}
	if s.Len() != 2 || s.Has(b.ID) || s.Index(c.ID) != 1 {
		t.Fatalf("remove left %v", s.IDs())
	}
}

func TestStackMove(t *testing.T) {
	a, b, c := textLayer("a"), textLayer("b"), textLayer("c")
	s := NewStack(a, b, c)
	s.Move(a.ID, 99)
	if diff := cmp.Diff([]ID{b.ID, c.ID, a.ID}, s.IDs()); diff != "" {
		t.Fatalf("move to top (-want +got):\n%s", diff)
	}
	s.Move(a.ID, 0)
	if diff := cmp.Diff([]ID{a.ID, b.ID, c.ID}, s.IDs()); diff != "" {
		t.Fatalf("move to bottom (-want +got):\n%s", diff)
	}
	if s.Move(ID(0), 1) {
		t.Fatalf("不存在的 id 应返回 false")
	}
}

func TestSnapshotRestoreIsolated(t *testing.T) {
	a, b := textLayer("a"), textLayer("b")
	b.Selected = true
	s := NewStack(a, b)
	snap := s.Snapshot()

	a.Transform.Rect = geom.R(50, 50, 5, 5)
	a.Content.(*Text).Text = "changed"
	s.Remove(b.ID)

	s.Restore(snap)
	got, _ := s.Get(a.ID)
	if got.Rect() != geom.R(0, 0, 10, 10) || got.Content.(*Text).Text != "a" {
		t.Fatalf("restore = %+v", got)
	}
	if sel := s.Selected(); len(sel) != 1 || sel[0].ID != b.ID {
		t.Fatalf("selected after restore = %v", sel)
	}
	// 恢复后的图层与快照不共享数据
	got.Content.(*Text).Text = "again"
	if snap[0].Content.(*Text).Text != "a" {
		t.Fatalf("快照被修改")
	}
}

func TestCloneStack(t *testing.T) {
	a := textLayer("a")
	s := NewStack(a)
	c := s.Clone()
	l, _ := c.Get(a.ID)
	l.Transform.Rect = geom.R(1, 1, 1, 1)
	if a.Rect() != geom.R(0, 0, 10, 10) {
		t.Fatalf("Clone 应深拷贝")
	}
}
