package canvas

import (
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/transform"
)

// CropState 是裁剪子模式：完整照片显示在 PhotoRect 中（显示方向），
// Transform.Rect 是相对 PhotoRect 左上角的裁剪框。
type CropState struct {
	Target    layer.ID
	Transform transform.State
	PhotoRect geom.Rect
	Photo     photo.Photo
}

// NewCropState 为选中的照片图层创建裁剪状态；view 是裁剪界面中用于显示照片的区域。
// 图层不存在或不是照片时返回 false。
func (s *State) NewCropState(id layer.ID, view geom.Rect) (*CropState, bool) {
	l, ok := s.Layers.Get(id)
	if !ok {
		return nil, false
	}
	pc, ok := l.PhotoContent()
	if !ok {
		return nil, false
	}
	aspect := pc.Photo.AspectRatio()
	photoRect := geom.RectFromCenterSize(view.Center(), geom.V(aspect, 1)).FitAndCenterWithin(view)
	crop := photoRect.Denormalized(pc.DisplayCrop()).ToLocalSpace(photoRect)
	t := transform.New(crop)
	t.NoRotate = true
	return &CropState{Target: id, Transform: t, PhotoRect: photoRect, Photo: pc.Photo}, true
}

// Update 处理裁剪框的一帧交互，裁剪框被限制在照片内。
func (c *CropState) Update(in transform.Input) transform.Response {
	resp := c.Transform.Update(in, c.PhotoRect, 1, true)
	local := geom.Rect{Max: c.PhotoRect.Size()}
	c.Transform.Rect = c.Transform.Rect.Intersect(local).Normalize(local)
	return resp
}

// SetSelection 直接设置裁剪框（显示帧中的归一化矩形）。
func (c *CropState) SetSelection(n geom.Rect) {
	c.Transform.Rect = c.PhotoRect.Denormalized(n).ToLocalSpace(c.PhotoRect)
}

// Selection 返回裁剪框与照片的交集，用显示帧中的归一化坐标表示。
func (c *CropState) Selection() (geom.Rect, bool) {
	world := c.Transform.Rect.ToWorldSpace(c.PhotoRect)
	inter := world.Intersect(c.PhotoRect)
	if inter.Width() <= 0 || inter.Height() <= 0 {
		return geom.Rect{}, false
	}
	return c.PhotoRect.Normalized(inter), true
}

// ApplyCrop 把裁剪框写回目标图层：裁剪框先换算到位图帧再保存，
// 图层矩形按新的宽高比在原矩形内居中适配。
func (s *State) ApplyCrop(c *CropState) (history.Kind, bool) {
	l, ok := s.Layers.Get(c.Target)
	if !ok {
		return 0, false
	}
	pc, ok := l.PhotoContent()
	if !ok {
		return 0, false
	}
	n, ok := c.Selection()
	if !ok {
		return 0, false
	}
	pc.Crop = pc.Photo.Metadata.Orientation.UnmapRect(n)
	old := l.Rect()
	l.SetRect(old.WithAspectRatio(pc.AspectRatio()).Normalize(old))
	return history.Transform, true
}

// CancelCrop 不修改图层，只记录一次 Transform 历史。
func (s *State) CancelCrop(*CropState) history.Kind { return history.Transform }
