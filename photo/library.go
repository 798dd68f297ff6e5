package photo

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Grouping 决定照片列表的分组方式。
type Grouping int

const (
	GroupByDate Grouping = iota
	GroupByRating
	GroupByTag
)

func (g Grouping) String() string {
	switch g {
	case GroupByRating:
		return "Rating"
	case GroupByTag:
		return "Tag"
	default:
		return "Date"
	}
}

func (g Grouping) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Grouping) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "date", "":
		*g = GroupByDate
	case "rating":
		*g = GroupByRating
	case "tag":
		*g = GroupByTag
	default:
		return fmt.Errorf("未知的分组方式 %q", string(b))
	}
	return nil
}

// UnknownDate is the group label for photos without any date.
const UnknownDate = "Unknown Date"

// Query 过滤并分组照片；nil 切片表示不过滤。
type Query struct {
	Ratings  []Rating
	Tags     []string
	Grouping Grouping
}

// Group is a labelled run of photos in a query result.
type Group struct {
	Label  string
	Photos []Photo
}

// QueryResult 保存分组后的照片，并支持在分组之间前后翻页。
type QueryResult struct {
	Groups []Group
	index  map[string][2]int
}

func newQueryResult(groups []Group) QueryResult {
	idx := map[string][2]int{}
	for gi, g := range groups {
		for pi, p := range g.Photos {
			idx[p.Path] = [2]int{gi, pi}
		}
	}
	return QueryResult{Groups: groups, index: idx}
}

// Len returns the number of photos across all groups.
func (r QueryResult) Len() int { return len(r.index) }

// After returns the photo following path, crossing group boundaries.
func (r QueryResult) After(path string) (Photo, bool) {
	pos, ok := r.index[path]
	if !ok {
		return Photo{}, false
	}
	gi, pi := pos[0], pos[1]
	if pi+1 < len(r.Groups[gi].Photos) {
		return r.Groups[gi].Photos[pi+1], true
	}
	for g := gi + 1; g < len(r.Groups); g++ {
		if len(r.Groups[g].Photos) > 0 {
			return r.Groups[g].Photos[0], true
		}
	}
	return Photo{}, false
}

// Before returns the photo preceding path, crossing group boundaries.
func (r QueryResult) Before(path string) (Photo, bool) {
	pos, ok := r.index[path]
	if !ok {
		return Photo{}, false
	}
	gi, pi := pos[0], pos[1]
	if pi > 0 {
		return r.Groups[gi].Photos[pi-1], true
	}
	for g := gi - 1; g >= 0; g-- {
		if n := len(r.Groups[g].Photos); n > 0 {
			return r.Groups[g].Photos[n-1], true
		}
	}
	return Photo{}, false
}

// Library 管理已导入的照片及其评级、标签。并发安全。
type Library struct {
	mu      sync.RWMutex
	photos  map[string]Photo
	order   []string
	ratings map[string]Rating
	tags    map[string]map[string]struct{}
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		photos:  map[string]Photo{},
		ratings: map[string]Rating{},
		tags:    map[string]map[string]struct{}{},
	}
}

// Add inserts or replaces a photo.
func (l *Library) Add(p Photo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.photos[p.Path]; !ok {
		l.order = append(l.order, p.Path)
	}
	l.photos[p.Path] = p
}

// Remove deletes a photo together with its rating and tags.
func (l *Library) Remove(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.photos[path]; !ok {
		return
	}
	delete(l.photos, path)
	delete(l.ratings, path)
	delete(l.tags, path)
	l.order = slices.DeleteFunc(l.order, func(s string) bool { return s == path })
}

// Get looks up a photo by path.
func (l *Library) Get(path string) (Photo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.photos[path]
	return p, ok
}

// Len returns the number of photos.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.photos)
}

// Photos returns every photo in insertion order.
func (l *Library) Photos() []Photo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Photo, 0, len(l.order))
	for _, path := range l.order {
		out = append(out, l.photos[path])
	}
	return out
}

// Rating returns the rating of path; unrated photos are Maybe.
func (l *Library) Rating(path string) Rating {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ratings[path]
}

// SetRating records a rating.
func (l *Library) SetRating(path string, r Rating) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ratings[path] = r
}

// Tags returns the sorted tags of path.
func (l *Library) Tags(path string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sortedKeys(l.tags[path])
}

// SetTags replaces the tag set of path.
func (l *Library) SetTags(path string, tags []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set := map[string]struct{}{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		delete(l.tags, path)
		return
	}
	l.tags[path] = set
}

// AddTag adds one tag.
func (l *Library) AddTag(path, tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.tags[path]
	if !ok {
		set = map[string]struct{}{}
		l.tags[path] = set
	}
	set[tag] = struct{}{}
}

// RemoveTag removes one tag.
func (l *Library) RemoveTag(path, tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if set, ok := l.tags[path]; ok {
		delete(set, tag)
		if len(set) == 0 {
			delete(l.tags, path)
		}
	}
}

// AllTags returns every tag in use, sorted.
func (l *Library) AllTags() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := map[string]struct{}{}
	for _, set := range l.tags {
		for t := range set {
			all[t] = struct{}{}
		}
	}
	return sortedKeys(all)
}

// Query 过滤、排序（有日期的新照片在前，其余按路径）并分组。
func (l *Library) Query(q Query) QueryResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matched []Photo
	for _, path := range l.order {
		if q.Ratings != nil && !slices.Contains(q.Ratings, l.ratings[path]) {
			continue
		}
		if !l.hasTags(path, q.Tags) {
			continue
		}
		matched = append(matched, l.photos[path])
	}
	sort.SliceStable(matched, func(i, j int) bool { return lessPhoto(matched[i], matched[j]) })

	var groups []Group
	pos := map[string]int{}
	for _, p := range matched {
		label := l.groupLabel(p, q.Grouping)
		i, ok := pos[label]
		if !ok {
			i = len(groups)
			pos[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Photos = append(groups[i].Photos, p)
	}
	return newQueryResult(groups)
}

func (l *Library) hasTags(path string, want []string) bool {
	set := l.tags[path]
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func (l *Library) groupLabel(p Photo, g Grouping) string {
	switch g {
	case GroupByRating:
		return l.ratings[p.Path].String()
	case GroupByTag:
		tags := sortedKeys(l.tags[p.Path])
		if len(tags) == 0 {
			return "Untagged"
		}
		return strings.Join(tags, ", ")
	default:
		if t, ok := p.Metadata.Date(); ok {
			return t.Format("2006-01-02")
		}
		return UnknownDate
	}
}

func lessPhoto(a, b Photo) bool {
	at, bt := a.Metadata.DateTaken, b.Metadata.DateTaken
	switch {
	case !at.IsZero() && !bt.IsZero():
		if !at.Equal(bt) {
			return at.After(bt)
		}
	case !at.IsZero():
		return true
	case !bt.IsZero():
		return false
	}
	return a.Path < b.Path
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ImportDir 递归扫描目录，读取所有支持格式的照片元数据并加入照片库。
// 单张照片读取失败只记录日志，不中断导入。
func (l *Library) ImportDir(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSupported(path) {
			return nil
		}
		p, err := Open(path)
		if err != nil {
			slog.Warn("skip photo", "path", path, "error", err)
			return nil
		}
		l.Add(p)
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("导入目录 %s 失败: %w", dir, err)
	}
	slog.Info("photos imported", "dir", dir, "count", count)
	return count, nil
}
