package canvas

import (
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/ByLCY/photobook/history"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/template"
)

// PageID 是进程内单调递增的页面标识。
type PageID uint64

func (id PageID) String() string { return strconv.FormatUint(uint64(id), 10) }

var lastPageID atomic.Uint64

func nextPageID() PageID { return PageID(lastPageID.Add(1)) }

// Deck 按顺序保存相册的所有页面，每页有自己的编辑器与历史记录。
type Deck struct {
	// DefaultPage 是新建空白页使用的页面设置。
	DefaultPage page.Page

	order    []PageID
	pages    map[PageID]*Editor
	selected PageID
	opts     []history.Option[Snapshot]
}

// NewDeck returns an empty deck. opts are applied to every page's history.
func NewDeck(defaultPage page.Page, opts ...history.Option[Snapshot]) *Deck {
	return &Deck{DefaultPage: defaultPage, pages: map[PageID]*Editor{}, opts: opts}
}

// AddState 追加一页并选中它。
func (d *Deck) AddState(s *State) PageID {
	id := nextPageID()
	d.order = append(d.order, id)
	d.pages[id] = NewEditor(s, d.opts...)
	d.selected = id
	return id
}

// AddPage appends a blank page using DefaultPage.
func (d *Deck) AddPage() PageID { return d.AddState(NewState(d.DefaultPage)) }

// AddPageFromTemplate appends a page instantiated from t.
func (d *Deck) AddPageFromTemplate(t template.Template) PageID {
	return d.AddState(NewStateWithTemplate(t))
}

// Remove 删除页面；删除选中页时选中相邻的页面。
func (d *Deck) Remove(id PageID) bool {
	i := slices.Index(d.order, id)
	if i < 0 {
		return false
	}
	d.order = slices.Delete(d.order, i, i+1)
	delete(d.pages, id)
	if d.selected == id {
		d.selected = 0
		if len(d.order) > 0 {
			d.selected = d.order[min(i, len(d.order)-1)]
		}
	}
	return true
}

// Move 把页面移动到 index 位置。
func (d *Deck) Move(id PageID, index int) bool {
	i := slices.Index(d.order, id)
	if i < 0 || index < 0 || index >= len(d.order) {
		return false
	}
	d.order = slices.Delete(d.order, i, i+1)
	d.order = slices.Insert(d.order, index, id)
	return true
}

// Select makes id the current page.
func (d *Deck) Select(id PageID) bool {
	if _, ok := d.pages[id]; !ok {
		return false
	}
	d.selected = id
	return true
}

// Selected returns the editor of the current page.
func (d *Deck) Selected() (*Editor, bool) {
	e, ok := d.pages[d.selected]
	return e, ok
}

// SelectedID returns the current page id, 0 when the deck is empty.
func (d *Deck) SelectedID() PageID { return d.selected }

// Page looks up a page editor by id.
func (d *Deck) Page(id PageID) (*Editor, bool) {
	e, ok := d.pages[id]
	return e, ok
}

// IDs returns the page ids in order.
func (d *Deck) IDs() []PageID { return slices.Clone(d.order) }

// Len is the number of pages.
func (d *Deck) Len() int { return len(d.order) }

// States returns the canvas state of every page in order.
func (d *Deck) States() []*State {
	out := make([]*State, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.pages[id].State)
	}
	return out
}
