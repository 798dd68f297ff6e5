package canvas

import (
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/transform"
)

// Snapshot 是历史记录保存的可变部分：图层、多选、页面与 quick layout 顺序。
type Snapshot struct {
	Layers           []layer.Layer
	MultiSelect      *MultiSelect
	Page             page.Page
	QuickLayoutOrder []layer.ID
	LastQuickLayout  *AppliedLayout
}

// History is the undo stack of one canvas page.
type History = history.Manager[Snapshot]

// snapshotOpts 忽略只在交互过程中存在的字段。
var snapshotOpts = cmp.Options{
	cmpopts.IgnoreUnexported(transform.State{}),
	cmpopts.IgnoreFields(transform.State{}, "ID", "LastFrameRotation", "ActiveHandle", "IsMoving"),
	cmpopts.EquateEmpty(),
}

// SnapshotEqual 是历史记录去重使用的相等判断。
func SnapshotEqual(a, b Snapshot) bool { return cmp.Equal(a, b, snapshotOpts) }

// NewHistory creates an undo stack whose initial entry is the current state.
func NewHistory(s *State, opts ...history.Option[Snapshot]) *History {
	opts = append([]history.Option[Snapshot]{history.WithEqual(SnapshotEqual)}, opts...)
	return history.New(s.Snapshot(), opts...)
}

// Snapshot 深拷贝当前的可变部分。
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Layers:           s.Layers.Snapshot(),
		Page:             s.Page,
		QuickLayoutOrder: slices.Clone(s.QuickLayoutOrder),
	}
	if s.MultiSelect != nil {
		snap.MultiSelect = s.MultiSelect.clone()
	}
	if s.LastQuickLayout != nil {
		l := *s.LastQuickLayout
		snap.LastQuickLayout = &l
	}
	for i := range snap.Layers {
		snap.Layers[i].Transform.Reset()
	}
	if snap.MultiSelect != nil {
		snap.MultiSelect.Transform.Reset()
	}
	return snap
}

// Restore 把快照复制回实时状态；快照本身不会被修改。
func (s *State) Restore(snap Snapshot) {
	s.Layers.Restore(snap.Layers)
	s.Page = snap.Page
	s.QuickLayoutOrder = slices.Clone(snap.QuickLayoutOrder)
	s.MultiSelect = nil
	if snap.MultiSelect != nil {
		s.MultiSelect = snap.MultiSelect.clone()
	}
	s.LastQuickLayout = nil
	if snap.LastQuickLayout != nil {
		l := *snap.LastQuickLayout
		s.LastQuickLayout = &l
	}
	if s.TextEdit.Mode != EditNone && !s.Layers.Has(s.TextEdit.Layer) {
		s.TextEdit = TextEdit{}
	}
	s.UpdateQuickLayoutOrder()
	s.SyncMultiSelect()
}
