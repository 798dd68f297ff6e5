// Package modal 管理叠放在编辑器之上的对话框。界面每帧只显示栈顶的对话框。
package modal

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.jetify.com/typeid/v2"

	"github.com/ByLCY/photobook/export"
)

// IDPrefix 是对话框 id 的 typeid 前缀。
const IDPrefix = "modal"

// ErrEmpty is returned when the stack has no modal to show or pop.
var ErrEmpty = errors.New("没有打开的对话框")

// ID identifies a pushed modal.
type ID string

func newID() ID { return ID(typeid.MustGenerate(IDPrefix).String()) }

// Response 是对话框按钮的结果。
type Response int

const (
	None Response = iota
	Confirm
	Cancel
)

func (r Response) String() string {
	switch r {
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	}
	return "none"
}

// Action 是对话框底部的一个按钮。
type Action struct {
	Label    string
	Response Response
	Enabled  bool
}

// Modal 描述一个对话框的内容；Respond 返回 true 时对话框被关闭。
type Modal interface {
	Title() string
	Body() string
	Actions() []Action
	Respond(r Response) (dismiss bool)
}

// Basic 是只有一个关闭按钮的提示框。
type Basic struct {
	TitleText    string
	Message      string
	DismissLabel string
}

func (b *Basic) Title() string { return b.TitleText }
func (b *Basic) Body() string  { return b.Message }

func (b *Basic) Actions() []Action {
	return []Action{{Label: orDefault(b.DismissLabel, "关闭"), Response: Cancel, Enabled: true}}
}

func (b *Basic) Respond(r Response) bool { return r != None }

// Confirmation 是确认/取消对话框，例如关闭未保存项目前的提示。
type Confirmation struct {
	TitleText    string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	OnConfirm    func()
}

func (c *Confirmation) Title() string { return c.TitleText }
func (c *Confirmation) Body() string  { return c.Message }

func (c *Confirmation) Actions() []Action {
	return []Action{
		{Label: orDefault(c.CancelLabel, "取消"), Response: Cancel, Enabled: true},
		{Label: orDefault(c.ConfirmLabel, "确定"), Response: Confirm, Enabled: true},
	}
}

func (c *Confirmation) Respond(r Response) bool {
	if r == Confirm && c.OnConfirm != nil {
		c.OnConfirm()
	}
	return r != None
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type entry struct {
	id    ID
	modal Modal
}

// Stack 是对话框栈。并发安全：导出等后台任务也可以推入对话框。
type Stack struct {
	mu      sync.Mutex
	entries []entry
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// Push adds m on top and returns its id.
func (s *Stack) Push(m Modal) ID {
	id := newID()
	s.mu.Lock()
	s.entries = append(s.entries, entry{id: id, modal: m})
	s.mu.Unlock()
	return id
}

// Pop removes the top modal.
func (s *Stack) Pop() (Modal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil, ErrEmpty
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return top.modal, nil
}

// Dismiss 移除指定对话框（不一定在栈顶），不存在时返回 false。
func (s *Stack) Dismiss(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.entries, func(e entry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	s.entries = slices.Delete(s.entries, i, i+1)
	return true
}

// Top returns the modal that should be shown this frame.
func (s *Stack) Top() (ID, Modal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return "", nil, ErrEmpty
	}
	top := s.entries[len(s.entries)-1]
	return top.id, top.modal, nil
}

// Len returns the number of open modals.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Respond 把按钮结果交给栈顶对话框，对话框要求关闭时将其弹出。
func (s *Stack) Respond(r Response) (Response, error) {
	id, m, err := s.Top()
	if err != nil {
		return None, err
	}
	if m.Respond(r) {
		s.Dismiss(id)
	}
	return r, nil
}

// Tick 刷新栈中的进度对话框：已结束任务的对话框被关闭，失败时换成一个说明失败类型的提示框。
// 返回本次结束的任务状态。
func (s *Stack) Tick() []export.Status {
	s.mu.Lock()
	var progress []entry
	for _, e := range s.entries {
		if _, ok := e.modal.(*Progress); ok {
			progress = append(progress, e)
		}
	}
	s.mu.Unlock()

	var finished []export.Status
	for _, e := range progress {
		p := e.modal.(*Progress)
		st, done := p.Poll()
		if !done {
			continue
		}
		s.Dismiss(e.id)
		if st.Err != nil {
			s.Push(&Basic{TitleText: "导出失败", Message: st.Err.Error()})
		}
		finished = append(finished, st)
	}
	return finished
}

// Progress 显示一个导出任务的进度，任务结束后自动关闭；取消按钮会放弃任务。
type Progress struct {
	TitleText   string
	Message     string
	CancelLabel string

	tasks    *export.Manager
	task     export.TaskID
	fraction float64
}

// NewProgress binds a progress modal to an export task.
func NewProgress(title string, tasks *export.Manager, id export.TaskID) *Progress {
	return &Progress{TitleText: title, Message: "正在导出…", tasks: tasks, task: id}
}

func (p *Progress) Title() string { return p.TitleText }

func (p *Progress) Body() string {
	return fmt.Sprintf("%s %.0f%%", p.Message, p.fraction*100)
}

// Fraction returns the last observed progress in [0,1].
func (p *Progress) Fraction() float64 { return p.fraction }

// Task returns the bound export task.
func (p *Progress) Task() export.TaskID { return p.task }

func (p *Progress) Actions() []Action {
	return []Action{{Label: orDefault(p.CancelLabel, "取消"), Response: Cancel, Enabled: true}}
}

// Respond 处理取消：放弃导出任务并关闭对话框。
func (p *Progress) Respond(r Response) bool {
	if r != Cancel {
		return false
	}
	_ = p.tasks.Abandon(p.task)
	return true
}

// Poll 读取任务状态；任务结束（或已被遗忘）时 done 为 true。
func (p *Progress) Poll() (export.Status, bool) {
	st, err := p.tasks.Status(p.task)
	if err != nil {
		return export.Status{State: export.Failed}, true
	}
	p.fraction = st.Fraction
	return st, st.Done()
}
