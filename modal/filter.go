package modal

import (
	"slices"

	"github.com/ByLCY/photobook/canvas"
	"github.com/ByLCY/photobook/page"
	"github.com/ByLCY/photobook/photo"
)

var (
	_ Modal = (*Basic)(nil)
	_ Modal = (*Confirmation)(nil)
	_ Modal = (*Progress)(nil)
	_ Modal = (*Filter)(nil)
	_ Modal = (*PageSettings)(nil)
)

// Filter 编辑照片库的筛选条件，确认后通过 OnApply 交回新的查询。
type Filter struct {
	Query   photo.Query
	OnApply func(photo.Query)

	initial photo.Query
	tags    []string
}

// NewFilter starts from query; the available tags are read from lib.
func NewFilter(lib *photo.Library, query photo.Query) *Filter {
	q := cloneQuery(query)
	return &Filter{Query: q, initial: cloneQuery(query), tags: lib.AllTags()}
}

func cloneQuery(q photo.Query) photo.Query {
	return photo.Query{Ratings: slices.Clone(q.Ratings), Tags: slices.Clone(q.Tags), Grouping: q.Grouping}
}

func (f *Filter) Title() string { return "筛选照片" }
func (f *Filter) Body() string  { return "按评级与标签筛选" }

// AvailableTags lists every tag in the library.
func (f *Filter) AvailableTags() []string { return f.tags }

// ToggleRating adds or removes r from the rating filter.
func (f *Filter) ToggleRating(r photo.Rating) {
	f.Query.Ratings = toggle(f.Query.Ratings, r)
}

// ToggleTag adds or removes tag from the tag filter.
func (f *Filter) ToggleTag(tag string) {
	f.Query.Tags = toggle(f.Query.Tags, tag)
}

func toggle[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		out := slices.Delete(slices.Clone(s), i, i+1)
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return append(slices.Clone(s), v)
}

// Modified reports whether the query differs from the one the dialog opened with.
func (f *Filter) Modified() bool {
	return f.Query.Grouping != f.initial.Grouping ||
		!sameSet(f.Query.Ratings, f.initial.Ratings) ||
		!sameSet(f.Query.Tags, f.initial.Tags)
}

func sameSet[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}

func (f *Filter) Actions() []Action {
	return []Action{
		{Label: "取消", Response: Cancel, Enabled: true},
		{Label: "应用", Response: Confirm, Enabled: f.Modified()},
	}
}

func (f *Filter) Respond(r Response) bool {
	if r == Confirm && f.OnApply != nil {
		f.OnApply(cloneQuery(f.Query))
	}
	return r != None
}

// PageSettings 编辑当前页的页面设置，确认后作为一次 Page 历史记录应用到编辑器。
type PageSettings struct {
	Page page.Page

	editor *canvas.Editor
}

// NewPageSettings opens the dialog on the editor's current page.
func NewPageSettings(e *canvas.Editor) *PageSettings {
	return &PageSettings{Page: e.State.Page, editor: e}
}

func (p *PageSettings) Title() string { return "页面设置" }

func (p *PageSettings) Body() string {
	return p.Page.String()
}

func (p *PageSettings) Actions() []Action {
	return []Action{
		{Label: "取消", Response: Cancel, Enabled: true},
		{Label: "确定", Response: Confirm, Enabled: p.Page.Validate() == nil},
	}
}

func (p *PageSettings) Respond(r Response) bool {
	if r == Confirm {
		if p.Page.Validate() != nil {
			return false
		}
		p.editor.SetPage(p.Page)
	}
	return r != None
}
