package history

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Kind 标记一条历史记录对应的用户操作。
type Kind int

const (
	Initial Kind = iota
	Transform
	AddPhoto
	DeletePhoto
	Select
	Page
	AddText
	EditText
	SelectLayer
	DeselectLayer
	QuickLayout
	AddShape
)

var kindNames = [...]string{
	Initial:       "Initial",
	Transform:     "Transform",
	AddPhoto:      "AddPhoto",
	DeletePhoto:   "DeletePhoto",
	Select:        "Select",
	Page:          "Page",
	AddText:       "AddText",
	EditText:      "EditText",
	SelectLayer:   "SelectLayer",
	DeselectLayer: "DeselectLayer",
	QuickLayout:   "QuickLayout",
	AddShape:      "AddShape",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry 是一条历史记录：操作类型与操作完成后的快照。
type Entry[S any] struct {
	Kind     Kind
	Snapshot S
}

// Manager 保存快照列表与当前位置；在中间位置保存会截断之后的记录。
type Manager[S any] struct {
	entries []Entry[S]
	index   int
	equal   func(a, b S) bool
	limit   int
}

// Option configures a Manager.
type Option[S any] func(*Manager[S])

// WithEqual 设置判断快照是否相同的函数；相同的快照不会重复入栈。
func WithEqual[S any](eq func(a, b S) bool) Option[S] {
	return func(m *Manager[S]) { m.equal = eq }
}

// WithLimit caps the number of entries; 0 keeps everything.
func WithLimit[S any](n int) Option[S] {
	return func(m *Manager[S]) { m.limit = n }
}

// New 创建历史管理器，初始记录为 Initial。
func New[S any](initial S, opts ...Option[S]) *Manager[S] {
	m := &Manager[S]{
		entries: []Entry[S]{{Kind: Initial, Snapshot: initial}},
		equal:   func(a, b S) bool { return cmp.Equal(a, b) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save 记录一次操作。与当前记录相同的快照被忽略并返回 false。
func (m *Manager[S]) Save(kind Kind, snapshot S) bool {
	if m.equal != nil && m.equal(m.entries[m.index].Snapshot, snapshot) {
		return false
	}
	m.entries = append(m.entries[:m.index+1], Entry[S]{Kind: kind, Snapshot: snapshot})
	if m.limit > 0 && len(m.entries) > m.limit {
		drop := len(m.entries) - m.limit
		m.entries = append([]Entry[S](nil), m.entries[drop:]...)
	}
	m.index = len(m.entries) - 1
	return true
}

// Undo steps back and returns the snapshot to restore.
func (m *Manager[S]) Undo() (S, bool) {
	if m.index == 0 {
		var zero S
		return zero, false
	}
	m.index--
	return m.entries[m.index].Snapshot, true
}

// Redo steps forward and returns the snapshot to restore.
func (m *Manager[S]) Redo() (S, bool) {
	if m.index >= len(m.entries)-1 {
		var zero S
		return zero, false
	}
	m.index++
	return m.entries[m.index].Snapshot, true
}

func (m *Manager[S]) CanUndo() bool { return m.index > 0 }
func (m *Manager[S]) CanRedo() bool { return m.index < len(m.entries)-1 }

// Index is the position of the current entry.
func (m *Manager[S]) Index() int { return m.index }

// Len is the number of entries including the initial one.
func (m *Manager[S]) Len() int { return len(m.entries) }

// Current returns the entry the live state corresponds to.
func (m *Manager[S]) Current() Entry[S] { return m.entries[m.index] }

// Kinds 返回全部记录的类型，用于历史面板。
func (m *Manager[S]) Kinds() []Kind {
	out := make([]Kind, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Kind
	}
	return out
}
