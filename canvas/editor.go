package canvas

import (
	"fmt"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/layer"
	"github.com/ByLCY/photobook/layout"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
	"github.com/ByLCY/photobook/transform"
)

// Key 是编辑器处理的按键。
type Key int

const (
	KeyNone Key = iota
	KeyV
	KeyT
	KeyU
	KeyO
	KeyL
	KeyS
	KeyR
	KeyZ
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// KeyEvent 是一次按下或抬起。
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// Input 是一帧的全部输入。指针坐标为屏幕坐标。
type Input struct {
	Pointer   transform.Input
	Ctrl      bool
	Scroll    float64
	SpaceDown bool
	Keys      []KeyEvent
	// Text 是本帧输入的字符，只在编辑文本时使用。
	Text string
}

// Response 汇报一帧中宿主需要知道的结果。
type Response struct {
	// Exit 表示用户要求离开画布（Ctrl+Backspace）。
	Exit bool
	// Saved 按顺序列出本帧记录的历史类型。
	Saved []history.Kind
}

// Editor 驱动一页画布：每帧处理输入、更新状态，并在操作结束时保存历史。
type Editor struct {
	State   *State
	History *History
	// Crop 非空时处于裁剪子模式。
	Crop *CropState

	nudging bool
	saved   []history.Kind
}

// NewEditor wraps s with a fresh undo stack.
func NewEditor(s *State, opts ...history.Option[Snapshot]) *Editor {
	return &Editor{State: s, History: NewHistory(s, opts...)}
}

// Save 记录一次操作；与当前记录相同的快照会被忽略。
func (e *Editor) Save(kind history.Kind) bool {
	if !e.History.Save(kind, e.State.Snapshot()) {
		return false
	}
	e.saved = append(e.saved, kind)
	return true
}

// Undo restores the previous snapshot.
func (e *Editor) Undo() bool {
	snap, ok := e.History.Undo()
	if ok {
		e.State.Restore(snap)
	}
	return ok
}

// Redo re-applies the next snapshot.
func (e *Editor) Redo() bool {
	snap, ok := e.History.Redo()
	if ok {
		e.State.Restore(snap)
	}
	return ok
}

// AddPhoto adds p as a new layer and records AddPhoto.
func (e *Editor) AddPhoto(p photo.Photo) *layer.Layer {
	l := e.State.AddPhoto(p)
	e.Save(history.AddPhoto)
	return l
}

// DeleteSelected removes the selected layers and records DeletePhoto.
func (e *Editor) DeleteSelected() bool {
	if e.State.DeleteSelected() == 0 {
		return false
	}
	return e.Save(history.DeletePhoto)
}

// Select 选择图层并记录 SelectLayer 或 DeselectLayer。
func (e *Editor) Select(id layer.ID, additive bool) bool {
	if !e.State.Select(id, additive) {
		return false
	}
	l, _ := e.State.Layer(id)
	if l.Selected {
		return e.Save(history.SelectLayer)
	}
	return e.Save(history.DeselectLayer)
}

// DeselectAll clears the selection and records DeselectLayer.
func (e *Editor) DeselectAll() bool {
	if !e.State.DeselectAll() {
		return false
	}
	return e.Save(history.DeselectLayer)
}

// ApplyQuickLayout applies l to the page and records QuickLayout.
func (e *Editor) ApplyQuickLayout(l layout.Layout, gap, margin float64) bool {
	if len(e.State.QuickLayoutOrder) == 0 {
		return false
	}
	e.State.ApplyQuickLayout(l, gap, margin)
	return e.Save(history.QuickLayout)
}

// SetPage changes the page settings and records Page.
func (e *Editor) SetPage(p page.Page) bool {
	e.State.SetPage(p)
	return e.Save(history.Page)
}

// Align aligns the selection and records Transform.
func (e *Editor) Align(a Alignment) bool {
	if !e.State.Align(a) {
		return false
	}
	return e.Save(history.Transform)
}

// Distribute spaces the selection evenly and records Transform.
func (e *Editor) Distribute(d Distribution) bool {
	if !e.State.Distribute(d) {
		return false
	}
	return e.Save(history.Transform)
}

// Action 是操作栏中按选区显示的操作。
type Action int

const (
	ActionCrop Action = iota
	ActionSwapCenters
	ActionSwapCentersAndBounds
	ActionSwapQuickLayoutPosition
)

func (a Action) String() string {
	switch a {
	case ActionCrop:
		return "Crop"
	case ActionSwapCenters:
		return "Swap Centers"
	case ActionSwapCentersAndBounds:
		return "Swap Centers and Bounds"
	case ActionSwapQuickLayoutPosition:
		return "Swap Quick Layout Position"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Actions 返回当前选区可用的操作：单张照片可裁剪，两个图层可交换。
func (e *Editor) Actions() []Action {
	selected := e.State.Layers.Selected()
	switch len(selected) {
	case 1:
		if _, ok := selected[0].PhotoContent(); ok {
			return []Action{ActionCrop}
		}
	case 2:
		return []Action{ActionSwapCenters, ActionSwapCentersAndBounds, ActionSwapQuickLayoutPosition}
	}
	return nil
}

// Perform 执行一个操作。view 是裁剪界面显示照片的区域，只有 ActionCrop 使用。
func (e *Editor) Perform(a Action, view geom.Rect) bool {
	ids := e.State.SelectedIDs()
	switch a {
	case ActionCrop:
		if len(ids) != 1 {
			return false
		}
		c, ok := e.State.NewCropState(ids[0], view)
		if !ok {
			return false
		}
		e.Crop = c
		return true
	case ActionSwapCenters, ActionSwapCentersAndBounds, ActionSwapQuickLayoutPosition:
		if len(ids) != 2 {
			return false
		}
		var ok bool
		switch a {
		case ActionSwapCenters:
			ok = e.State.SwapCenters(ids[0], ids[1])
		case ActionSwapCentersAndBounds:
			ok = e.State.SwapCentersAndBounds(ids[0], ids[1])
		default:
			ok = e.State.SwapQuickLayoutPosition(ids[0], ids[1])
		}
		if !ok {
			return false
		}
		e.State.SyncMultiSelect()
		e.Save(history.Transform)
		return true
	}
	return false
}

// ApplyCrop 应用裁剪并离开裁剪子模式。
func (e *Editor) ApplyCrop() bool {
	if e.Crop == nil {
		return false
	}
	kind, ok := e.State.ApplyCrop(e.Crop)
	e.Crop = nil
	if ok {
		e.Save(kind)
	}
	return ok
}

// CancelCrop 放弃裁剪并离开裁剪子模式。
func (e *Editor) CancelCrop() {
	if e.Crop == nil {
		return
	}
	kind := e.State.CancelCrop(e.Crop)
	e.Crop = nil
	e.Save(kind)
}

// Frame 处理一帧输入。available 是画布在屏幕上的区域。
func (e *Editor) Frame(in Input, available geom.Rect) Response {
	e.saved = nil
	s := e.State
	s.EnsureZoom(available)

	startedEditing := false
	if s.TextEdit.Mode == EditBegin {
		s.TextEdit.Mode = EditEditing
		startedEditing = true
	}

	exit := e.handleKeys(in)

	if s.TextEdit.Mode == EditEditing && !startedEditing {
		s.TypeText(in.Text)
	}

	p := in.Pointer
	over := p.HasPointer && available.Contains(p.Pos)
	switch {
	case e.Crop != nil:
		e.Crop.Update(p)
	case in.SpaceDown && over:
		s.Pan(p.Delta)
	default:
		if over && in.Scroll != 0 {
			s.ZoomAt(available, p.Pos, in.Scroll)
		}
		e.handlePointer(in, available)
	}

	return Response{Exit: exit, Saved: e.saved}
}

func (e *Editor) handleKeys(in Input) (exit bool) {
	s := e.State
	shift := in.Pointer.Shift
	for _, k := range in.Keys {
		if !k.Pressed {
			if isArrow(k.Key) && e.nudging {
				e.nudging = false
				e.Save(history.Transform)
			}
			continue
		}
		if in.Ctrl {
			switch k.Key {
			case KeyBackspace:
				exit = true
			case KeyZ:
				if shift {
					e.Redo()
				} else {
					e.Undo()
				}
			}
			continue
		}

		if s.TextEdit.Active() {
			switch k.Key {
			case KeyBackspace:
				s.DeleteLastRune()
			case KeyEscape, KeyEnter:
				s.EndEditing()
				e.Save(history.EditText)
			}
			continue
		}

		switch k.Key {
		case KeyEscape:
			e.DeselectAll()
		case KeyDelete:
			e.DeleteSelected()
		case KeyLeft, KeyRight, KeyUp, KeyDown:
			if e.nudge(k.Key, shift) {
				e.nudging = true
			}
		case KeyV, KeyT, KeyU, KeyO, KeyL:
			if !s.Tool.Active {
				s.Tool = Idle(toolForKey(k.Key))
			}
		case KeyS:
			e.setHandleMode(transform.ResizeHandles(transform.Free))
		case KeyR:
			e.setHandleMode(transform.RotateHandles)
		}
	}
	return exit
}

func isArrow(k Key) bool { return k == KeyLeft || k == KeyRight || k == KeyUp || k == KeyDown }

func toolForKey(k Key) Tool {
	switch k {
	case KeyT:
		return ToolText
	case KeyU:
		return ToolRectangle
	case KeyO:
		return ToolEllipse
	case KeyL:
		return ToolLine
	}
	return ToolSelect
}

// nudge 用方向键移动选中图层 1 像素，按住 Shift 时 10 像素。
func (e *Editor) nudge(k Key, shift bool) bool {
	step := 1.0
	if shift {
		step = 10
	}
	var d geom.Vec2
	switch k {
	case KeyLeft:
		d.X = -step
	case KeyRight:
		d.X = step
	case KeyUp:
		d.Y = -step
	case KeyDown:
		d.Y = step
	}
	moved := false
	for _, l := range e.State.Layers.Selected() {
		if l.Locked {
			continue
		}
		l.SetRect(l.Rect().Translate(d))
		moved = true
	}
	if moved {
		e.State.SyncMultiSelect()
	}
	return moved
}

func (e *Editor) setHandleMode(m transform.HandleMode) {
	for _, l := range e.State.Layers.Selected() {
		l.Transform.HandleMode = m
	}
	if e.State.MultiSelect != nil {
		e.State.MultiSelect.Transform.HandleMode = m
	}
}

// overSelection 判断指针是否落在选中图层（或多选框）的控制区域内。
func (e *Editor) overSelection(pos geom.Vec2, container geom.Rect, scale float64) bool {
	hit := func(t *transform.State) bool {
		r := t.ScreenRect(container, scale).RotateBBAroundCenter(t.Rotation)
		return r.Expand(transform.HandleSize / 2).Contains(pos)
	}
	if m := e.State.MultiSelect; m != nil {
		return hit(&m.Transform)
	}
	for _, l := range e.State.Layers.Selected() {
		if hit(&l.Transform) {
			return true
		}
	}
	return false
}

func (e *Editor) handlePointer(in Input, available geom.Rect) {
	s := e.State
	p := in.Pointer
	container := s.PageScreenRect(available)
	scale := s.zoom()
	pagePos := s.ScreenToPage(available, p.Pos)
	over := p.HasPointer && available.Contains(p.Pos)

	if p.Pressed && over && !s.Tool.Active {
		switch {
		case s.Tool.Tool != ToolSelect:
			s.ToolPress(pagePos)
		case !e.overSelection(p.Pos, container, scale):
			if id, ok := s.HitTest(pagePos); ok {
				e.Select(id, in.Ctrl)
			} else if !in.Ctrl {
				e.DeselectAll()
			}
			s.ToolPress(pagePos)
		}
	}

	if s.Tool.Active {
		s.ToolDrag(pagePos)
		if !p.Down {
			if kind, ok := s.ToolRelease(pagePos); ok {
				e.Save(kind)
			}
		}
		return
	}

	s.refreshMultiSelect()
	if m := s.MultiSelect; m != nil {
		before := m.Transform.Rect
		resp := m.Transform.Update(p, container, scale, true)
		m.Transform.Rect = m.Transform.Rect.Normalize(before)
		m.Propagate(s.Layers, before)
		if resp.Ended() {
			e.Save(history.Transform)
		}
		return
	}

	for _, l := range s.Layers.Selected() {
		before := l.Transform.Rect
		mode := l.Transform.HandleMode
		resp := l.Transform.Update(p, container, scale, !l.Locked)
		l.SetRect(l.Rect().Normalize(before))
		if resp.DoubleClicked {
			if _, ok := l.TextContent(); ok {
				l.Transform.HandleMode = mode
				s.BeginEditing(l.ID)
			}
		}
		if resp.Ended() {
			e.Save(history.Transform)
		}
	}
}
