package canvas

// 画布状态：一页上的图层、页面、快速布局顺序以及编辑器的视图与工具状态。
// 这里的操作都是同步的纯状态变换，历史记录由 Editor 负责保存。

import (
	"slices"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/layout"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/template"
)

// PhotoLongSide 是新放入照片的长边像素数。
const PhotoLongSide = 1000

// AppliedLayout 记录最近一次应用的快速布局及其参数，用于交换位置后重新应用。
type AppliedLayout struct {
	Layout layout.Layout `json:"layout"`
	Gap    float64       `json:"gap"`
	Margin float64       `json:"margin"`
}

// State 是一页画布的全部状态。
type State struct {
	Layers           *layer.Stack
	Page             page.Page
	Template         *template.Template
	QuickLayoutOrder []layer.ID
	LastQuickLayout  *AppliedLayout
	MultiSelect      *MultiSelect

	Zoom        float64
	Offset      geom.Vec2
	zoomReady   bool
	Tool        ToolState
	TextEdit    TextEdit
	TextTool    TextToolSettings
	RectTool    ShapeToolSettings
	EllipseTool ShapeToolSettings
	LineTool    LineToolSettings
}

// NewState returns an empty canvas for pg.
func NewState(pg page.Page) *State {
	return &State{
		Layers:      layer.NewStack(),
		Page:        pg,
		Zoom:        1,
		Tool:        Idle(ToolSelect),
		TextTool:    DefaultTextTool(),
		RectTool:    DefaultShapeTool(),
		EllipseTool: DefaultShapeTool(),
		LineTool:    DefaultLineTool(),
	}
}

// NewStateWithLayers 用已有图层构建画布（加载项目时使用），quick layout 顺序会被修正。
func NewStateWithLayers(layers *layer.Stack, pg page.Page, t *template.Template, order []layer.ID) *State {
	s := NewState(pg)
	if layers != nil {
		s.Layers = layers
	}
	s.Template = t
	s.QuickLayoutOrder = slices.Clone(order)
	s.UpdateQuickLayoutOrder()
	return s
}

// NewStateWithPhoto 在默认页面上放入一张照片，长边为 PhotoLongSide。
func NewStateWithPhoto(p photo.Photo) *State {
	s := NewState(page.Default())
	s.AddPhoto(p)
	return s
}

// NewStateWithTemplate 按模板的每个区域创建模板图层，页面取模板页面。
func NewStateWithTemplate(t template.Template) *State {
	s := NewState(t.Page)
	tc := t
	s.Template = &tc
	pageRect := t.Page.Rect()
	for _, r := range t.Regions {
		rect := r.Rect(pageRect)
		switch r.Kind {
		case template.RegionText:
			txt := layer.NewText(r.SampleText, r.FontSize)
			s.Layers.Add(layer.New("Text", &layer.TemplateText{Region: r, Text: *txt}, rect))
		default:
			s.Layers.Add(layer.New("Image", &layer.TemplatePhoto{Region: r}, rect))
		}
	}
	s.UpdateQuickLayoutOrder()
	return s
}

// photoRect 返回长边为 PhotoLongSide、位于原点的矩形。
func photoRect(p photo.Photo) geom.Rect {
	a := p.AspectRatio()
	if a >= 1 {
		return geom.R(0, 0, PhotoLongSide, PhotoLongSide/a)
	}
	return geom.R(0, 0, PhotoLongSide*a, PhotoLongSide)
}

// AddPhoto 追加一个照片图层并加入 quick layout 顺序。
func (s *State) AddPhoto(p photo.Photo) *layer.Layer {
	l := layer.NewPhoto(p, photoRect(p))
	s.AddLayer(l)
	return l
}

// AddLayer appends l on top of the page.
func (s *State) AddLayer(l *layer.Layer) {
	s.Layers.Add(l)
	s.UpdateQuickLayoutOrder()
}

// Layer looks up a layer by id.
func (s *State) Layer(id layer.ID) (*layer.Layer, bool) { return s.Layers.Get(id) }

// SelectedIDs returns the ids of the selected layers bottom to top.
func (s *State) SelectedIDs() []layer.ID {
	var out []layer.ID
	for _, l := range s.Layers.Selected() {
		out = append(out, l.ID)
	}
	return out
}

// HasSelection reports whether any layer is selected.
func (s *State) HasSelection() bool { return len(s.Layers.Selected()) > 0 }

// DeleteSelected 删除所有选中的图层，返回删除数量。
func (s *State) DeleteSelected() int {
	ids := s.SelectedIDs()
	for _, id := range ids {
		s.Layers.Remove(id)
	}
	if s.TextEdit.Mode != EditNone && !s.Layers.Has(s.TextEdit.Layer) {
		s.TextEdit = TextEdit{}
	}
	s.UpdateQuickLayoutOrder()
	s.SyncMultiSelect()
	return len(ids)
}

// Select 选择图层。additive 时切换该图层的选中状态，否则只选中它。
// 不存在的 id 不做任何事并返回 false。
func (s *State) Select(id layer.ID, additive bool) bool {
	target, ok := s.Layers.Get(id)
	if !ok {
		return false
	}
	if additive {
		target.Selected = !target.Selected
	} else {
		for _, l := range s.Layers.Layers() {
			l.Selected = l.ID == id
		}
	}
	if target.Selected {
		s.Tool = Idle(ToolSelect)
	}
	s.SyncMultiSelect()
	return true
}

// DeselectAll clears the selection and reports whether anything changed.
func (s *State) DeselectAll() bool {
	changed := false
	for _, l := range s.Layers.Layers() {
		if l.Selected {
			l.Selected = false
			changed = true
		}
	}
	s.SyncMultiSelect()
	return changed
}

// SelectIntersecting 选中与 r（页面坐标）相交的图层，其他图层取消选中。
func (s *State) SelectIntersecting(r geom.Rect) {
	for _, l := range s.Layers.Layers() {
		l.Selected = l.Rect().Intersects(r)
	}
	s.SyncMultiSelect()
}

// HitTest 返回包含页面坐标 p 的最上层可见图层；按 z 序从上往下检测旋转后的外接框。
func (s *State) HitTest(p geom.Vec2) (layer.ID, bool) {
	for _, l := range s.Layers.TopDown() {
		if !l.Visible {
			continue
		}
		if l.Rect().RotateBBAroundCenter(l.Transform.Rotation).Contains(p) {
			return l.ID, true
		}
	}
	return 0, false
}

// SwapCenters 交换两个图层的中心，尺寸不变。
func (s *State) SwapCenters(a, b layer.ID) bool {
	la, okA := s.Layers.Get(a)
	lb, okB := s.Layers.Get(b)
	if !okA || !okB {
		return false
	}
	ra, rb := la.Rect(), lb.Rect()
	la.SetRect(ra.WithCenter(rb.Center()))
	lb.SetRect(rb.WithCenter(ra.Center()))
	return true
}

// SwapCentersAndBounds 把每个图层放进另一个图层的矩形中（保持宽高比并居中）。
func (s *State) SwapCentersAndBounds(a, b layer.ID) bool {
	la, okA := s.Layers.Get(a)
	lb, okB := s.Layers.Get(b)
	if !okA || !okB {
		return false
	}
	ra, rb := la.Rect(), lb.Rect()
	la.SetRect(ra.FitAndCenterWithin(rb))
	lb.SetRect(rb.FitAndCenterWithin(ra))
	return true
}

// SwapQuickLayoutPosition 交换两个图层在 quick layout 顺序中的位置，并重新应用上次的布局。
// 没有应用过布局时不做任何事。
func (s *State) SwapQuickLayoutPosition(a, b layer.ID) bool {
	if s.LastQuickLayout == nil {
		return false
	}
	i, j := slices.Index(s.QuickLayoutOrder, a), slices.Index(s.QuickLayoutOrder, b)
	if i < 0 || j < 0 {
		return false
	}
	s.QuickLayoutOrder[i], s.QuickLayoutOrder[j] = s.QuickLayoutOrder[j], s.QuickLayoutOrder[i]
	last := *s.LastQuickLayout
	s.ApplyQuickLayout(last.Layout, last.Gap, last.Margin)
	return true
}

// UpdateQuickLayoutOrder 删除已不存在的 id，并按插入顺序追加新图层。
func (s *State) UpdateQuickLayoutOrder() {
	seen := make(map[layer.ID]bool, len(s.QuickLayoutOrder))
	s.QuickLayoutOrder = slices.DeleteFunc(s.QuickLayoutOrder, func(id layer.ID) bool {
		drop := !s.Layers.Has(id) || seen[id]
		seen[id] = true
		return drop
	})
	for _, id := range s.Layers.IDs() {
		if !seen[id] {
			s.QuickLayoutOrder = append(s.QuickLayoutOrder, id)
			seen[id] = true
		}
	}
}

// QuickLayoutIndex 返回图层在 quick layout 顺序中从 1 开始的编号，不存在时返回 0。
func (s *State) QuickLayoutIndex(id layer.ID) int {
	return slices.Index(s.QuickLayoutOrder, id) + 1
}

// AvailableLayouts lists the quick layouts applicable to the current page.
func (s *State) AvailableLayouts() []layout.Layout {
	return layout.Available(len(s.QuickLayoutOrder))
}

// LayoutItems 按 quick layout 顺序收集参与布局的元素。
func (s *State) LayoutItems() []layout.Item {
	items := make([]layout.Item, 0, len(s.QuickLayoutOrder))
	for _, id := range s.QuickLayoutOrder {
		if l, ok := s.Layers.Get(id); ok {
			items = append(items, layout.Item{ID: id, AspectRatio: l.AspectRatio()})
		}
	}
	return items
}

// ApplyQuickLayout 用 l 重新排布 quick layout 顺序中的图层，并记录为最近一次布局。
func (s *State) ApplyQuickLayout(l layout.Layout, gap, margin float64) {
	params := layout.Params{Page: s.Page.Rect(), Gap: gap, Margin: layout.MarginAll(margin)}
	for _, pl := range l.Apply(s.LayoutItems(), params) {
		if ly, ok := s.Layers.Get(pl.ID); ok {
			ly.SetRect(pl.Rect)
		}
	}
	s.LastQuickLayout = &AppliedLayout{Layout: l, Gap: gap, Margin: margin}
	s.SyncMultiSelect()
}

// PreviewQuickLayout 在状态的副本上应用布局，用于缩略预览；不修改 s。
func (s *State) PreviewQuickLayout(l layout.Layout, gap, margin float64) *State {
	c := s.Clone()
	c.ApplyQuickLayout(l, gap, margin)
	return c
}

// SetPage 修改页面设置。
func (s *State) SetPage(p page.Page) {
	s.Page = p
	s.zoomReady = false
}

// Clone 深拷贝画布状态，视图与工具状态一并复制。
func (s *State) Clone() *State {
	c := *s
	c.Layers = s.Layers.Clone()
	c.QuickLayoutOrder = slices.Clone(s.QuickLayoutOrder)
	if s.Template != nil {
		t := *s.Template
		t.Regions = slices.Clone(s.Template.Regions)
		c.Template = &t
	}
	if s.LastQuickLayout != nil {
		l := *s.LastQuickLayout
		c.LastQuickLayout = &l
	}
	if s.MultiSelect != nil {
		c.MultiSelect = s.MultiSelect.clone()
	}
	return &c
}
