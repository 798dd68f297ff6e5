package canvas

import (
	"unicode/utf8"

	"github.com/ByLCY/photobook/layer"
)

// EditMode 是文本编辑状态。
type EditMode int

const (
	EditNone EditMode = iota
	// EditBegin 在下一帧变为 EditEditing，用于让输入框先获得焦点。
	EditBegin
	EditEditing
)

// TextEdit 记录正在编辑的文本图层；同一时刻最多一个。
type TextEdit struct {
	Mode  EditMode
	Layer layer.ID
}

// Active reports whether a text layer is being edited.
func (t TextEdit) Active() bool { return t.Mode != EditNone }

// BeginEditing 开始编辑文本或模板文本图层。
func (s *State) BeginEditing(id layer.ID) bool {
	l, ok := s.Layers.Get(id)
	if !ok {
		return false
	}
	if _, ok := l.TextContent(); !ok {
		return false
	}
	s.TextEdit = TextEdit{Mode: EditBegin, Layer: id}
	return true
}

func (s *State) editingText() (*layer.Text, bool) {
	if s.TextEdit.Mode != EditEditing {
		return nil, false
	}
	l, ok := s.Layers.Get(s.TextEdit.Layer)
	if !ok {
		return nil, false
	}
	return l.TextContent()
}

// TypeText appends typed characters to the edited layer.
func (s *State) TypeText(str string) bool {
	t, ok := s.editingText()
	if !ok || str == "" {
		return false
	}
	t.Text += str
	return true
}

// DeleteLastRune 删除最后一个字符。
func (s *State) DeleteLastRune() bool {
	t, ok := s.editingText()
	if !ok || t.Text == "" {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(t.Text)
	t.Text = t.Text[:len(t.Text)-size]
	return true
}

// EndEditing 结束文本编辑，返回之前是否处于编辑状态。
func (s *State) EndEditing() bool {
	was := s.TextEdit.Active()
	s.TextEdit = TextEdit{}
	return was
}
