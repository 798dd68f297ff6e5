package layer

import (
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/transform"
)

// ErrNotFound is returned when a layer id does not exist on the page.
var ErrNotFound = errors.New("图层不存在")

// ID 是进程内单调递增的图层标识。
type ID uint64

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

var lastID atomic.Uint64

// NextID allocates a fresh layer id.
func NextID() ID { return ID(lastID.Add(1)) }

// Reserve 确保之后分配的 id 都大于 id（加载项目时使用）。
func Reserve(id ID) {
	for {
		cur := lastID.Load()
		if cur >= uint64(id) {
			return
		}
		if lastID.CompareAndSwap(cur, uint64(id)) {
			return
		}
	}
}

// Layer 是页面上的一个可绘制元素。
type Layer struct {
	ID        ID              `json:"id"`
	Name      string          `json:"name"`
	Visible   bool            `json:"visible"`
	Locked    bool            `json:"locked"`
	Selected  bool            `json:"selected"`
	Content   Content         `json:"-"`
	Transform transform.State `json:"-"`
}

// New 创建一个可见、未锁定、未选中的图层。
func New(name string, content Content, rect geom.Rect) *Layer {
	return &Layer{
		ID:        NextID(),
		Name:      name,
		Visible:   true,
		Content:   content,
		Transform: transform.New(rect),
	}
}

// NewPhoto places p so that it is fit-and-centered within rect.
func NewPhoto(p photo.Photo, rect geom.Rect) *Layer {
	c := NewPhotoContent(p)
	r := geom.RectFromCenterSize(rect.Center(), geom.V(p.AspectRatio(), 1)).FitAndCenterWithin(rect)
	return New(p.FileName(), c, r)
}

// NewTextLayer creates a text layer.
func NewTextLayer(rect geom.Rect, t *Text) *Layer {
	return New("Text", t, rect)
}

// NewShapeLayer creates a rectangle or ellipse layer.
func NewShapeLayer(rect geom.Rect, s *Shape) *Layer {
	name := "Rectangle"
	if s.Type == ShapeEllipse {
		name = "Ellipse"
	}
	return New(name, s, rect)
}

// NewLineLayer 以起点和终点创建直线图层。
func NewLineLayer(start, end geom.Vec2, stroke Stroke) *Layer {
	rect, anti := LineRect(start, end)
	s := &Shape{Type: ShapeLine, AntiDiagonal: anti, Stroke: &stroke}
	// 水平或竖直的直线需要最小厚度才能被选中
	rect = rect.Normalize(rect)
	return New("Line", s, rect)
}

// Rect returns the layer's page-space rect.
func (l *Layer) Rect() geom.Rect { return l.Transform.Rect }

// SetRect moves the layer to r.
func (l *Layer) SetRect(r geom.Rect) { l.Transform.Rect = r }

// Clone 深拷贝图层；历史快照依赖它与实时状态不共享可变数据。
func (l *Layer) Clone() *Layer {
	c := *l
	if l.Content != nil {
		c.Content = l.Content.Clone()
	}
	return &c
}

// PhotoContent returns the photo content of a Photo layer.
func (l *Layer) PhotoContent() (*Photo, bool) {
	p, ok := l.Content.(*Photo)
	return p, ok
}

// TextContent returns the editable text of Text and TemplateText layers.
func (l *Layer) TextContent() (*Text, bool) {
	switch c := l.Content.(type) {
	case *Text:
		return c, true
	case *TemplateText:
		return &c.Text, true
	}
	return nil, false
}

// AspectRatio 返回内容的自然宽高比：照片取裁剪后的比例，其他类型取当前矩形。
func (l *Layer) AspectRatio() float64 {
	switch c := l.Content.(type) {
	case *Photo:
		return c.AspectRatio()
	case *TemplatePhoto:
		if c.Photo != nil {
			return c.Photo.AspectRatio()
		}
	}
	r := l.Transform.Rect
	if r.Height() <= 0 {
		return 1
	}
	return r.Width() / r.Height()
}
