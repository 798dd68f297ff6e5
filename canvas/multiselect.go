package canvas

import (
	"slices"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/transform"
)

// MultiSelect 是两个及以上选中图层共享的变换手柄。
// 外接框由子图层未旋转的矩形计算。
type MultiSelect struct {
	Transform transform.State `json:"transform"`
	Children  []layer.ID      `json:"children"`
}

func (m *MultiSelect) clone() *MultiSelect {
	c := *m
	c.Children = slices.Clone(m.Children)
	return &c
}

// groupRect 返回 ids 对应图层的外接框。
func groupRect(layers *layer.Stack, ids []layer.ID) geom.Rect {
	rects := make([]geom.Rect, 0, len(ids))
	for _, id := range ids {
		if l, ok := layers.Get(id); ok {
			rects = append(rects, l.Rect())
		}
	}
	return geom.BoundingRect(rects...)
}

// SyncMultiSelect 保持 MultiSelect 与选中状态一致：选中数 >= 2 时存在，否则为空。
// 已有的多选保留其变换状态（包括交互中的手柄），只更新子图层列表与外接框。
func (s *State) SyncMultiSelect() {
	selected := s.SelectedIDs()
	if len(selected) < 2 {
		s.MultiSelect = nil
		return
	}
	if s.MultiSelect == nil {
		s.MultiSelect = &MultiSelect{Transform: transform.New(geom.Rect{})}
	}
	m := s.MultiSelect
	m.Children = slices.DeleteFunc(m.Children, func(id layer.ID) bool { return !slices.Contains(selected, id) })
	for _, id := range selected {
		if !slices.Contains(m.Children, id) {
			m.Children = append(m.Children, id)
		}
	}
	m.Transform.Rect = groupRect(s.Layers, m.Children)
}

// refreshMultiSelect 在没有拖动时按子图层的当前矩形重新计算外接框。
// 外接框总是轴对齐的，因此组的旋转角在此归零。
func (s *State) refreshMultiSelect() {
	if m := s.MultiSelect; m != nil && m.Transform.Interacting() {
		return
	}
	s.SyncMultiSelect()
	if m := s.MultiSelect; m != nil {
		m.Transform.Rotation = 0
		m.Transform.LastFrameRotation = 0
	}
}

// Propagate 把多选变换从 before 到当前状态的变化应用到每个子图层。
// 每条边按组的边位移移动；不贴着组边界的子图层按相对位置随组尺寸缩放。
// 组旋转时子图层中心绕组中心旋转相同角度，子图层自身旋转角同步增加。
func (m *MultiSelect) Propagate(layers *layer.Stack, before geom.Rect) {
	after := m.Transform.Rect
	dRot := m.Transform.Rotation - m.Transform.LastFrameRotation
	for _, id := range m.Children {
		l, ok := layers.Get(id)
		if !ok {
			continue
		}
		r := resizeChild(l.Rect(), before, after)
		if dRot != 0 {
			rel := r.Center().Sub(after.Center())
			r = r.WithCenter(after.Center().Add(rotateVec(rel, dRot)))
			l.Transform.Rotation += dRot
			l.Transform.LastFrameRotation = l.Transform.Rotation
		}
		l.SetRect(r.Normalize(l.Rect()))
	}
}

func resizeChild(c, before, after geom.Rect) geom.Rect {
	if before == after {
		return c
	}
	// 每条边相对对应组边的位移按组尺寸比例缩放，贴边的子图层随组边平移。
	edge := func(groupEdge, childEdge, beforeExtent, afterExtent, newGroupEdge float64) float64 {
		d := childEdge - groupEdge
		if beforeExtent == 0 {
			return newGroupEdge + d
		}
		return newGroupEdge + d/beforeExtent*afterExtent
	}
	bw, bh := before.Width(), before.Height()
	aw, ah := after.Width(), after.Height()
	return geom.Rect{
		Min: geom.V(
			edge(before.Min.X, c.Min.X, bw, aw, after.Min.X),
			edge(before.Min.Y, c.Min.Y, bh, ah, after.Min.Y),
		),
		Max: geom.V(
			edge(before.Max.X, c.Max.X, bw, aw, after.Max.X),
			edge(before.Max.Y, c.Max.Y, bh, ah, after.Max.Y),
		),
	}
}

func rotateVec(v geom.Vec2, theta float64) geom.Vec2 {
	return geom.RotatePoint(v, geom.Vec2{}, theta)
}
