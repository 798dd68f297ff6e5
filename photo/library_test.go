package photo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testLibrary() *Library {
	l := NewLibrary()
	day := func(d int) time.Time { return time.Date(2024, 5, d, 10, 0, 0, 0, time.UTC) }
	l.Add(Photo{Path: "/p/a.jpg", Metadata: Metadata{DateTaken: day(1)}})
	l.Add(Photo{Path: "/p/b.jpg", Metadata: Metadata{DateTaken: day(2)}})
	l.Add(Photo{Path: "/p/c.jpg"})
	l.Add(Photo{Path: "/p/d.jpg", Metadata: Metadata{DateTaken: day(2).Add(time.Hour)}})
	return l
}

func paths(r QueryResult) [][]string {
	var out [][]string
	for _, g := range r.Groups {
		var ps []string
		for _, p := range g.Photos {
			ps = append(ps, p.Path)
		}
		out = append(out, ps)
	}
	return out
}

func TestQueryGroupsByDate(t *testing.T) {
	l := testLibrary()
	r := l.Query(Query{})
	labels := []string{}
	for _, g := range r.Groups {
		labels = append(labels, g.Label)
	}
	if diff := cmp.Diff([]string{"2024-05-02", "2024-05-01", UnknownDate}, labels); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	want := [][]string{{"/p/d.jpg", "/p/b.jpg"}, {"/p/a.jpg"}, {"/p/c.jpg"}}
	if diff := cmp.Diff(want, paths(r)); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
}

func TestQueryFiltersByRatingAndTags(t *testing.T) {
	l := testLibrary()
	l.SetRating("/p/a.jpg", Yes)
	l.SetRating("/p/b.jpg", Yes)
	l.SetRating("/p/c.jpg", No)
	l.AddTag("/p/a.jpg", "beach")
	l.AddTag("/p/a.jpg", "family")
	l.AddTag("/p/b.jpg", "beach")

	r := l.Query(Query{Ratings: []Rating{Yes}, Tags: []string{"beach", "family"}, Grouping: GroupByRating})
	if diff := cmp.Diff([][]string{{"/p/a.jpg"}}, paths(r)); diff != "" {
		t.Fatalf("filter (-want +got):\n%s", diff)
	}
	if r.Groups[0].Label != "Yes" {
		t.Fatalf("label = %q", r.Groups[0].Label)
	}
	if diff := cmp.Diff([]string{"beach", "family"}, l.AllTags()); diff != "" {
		t.Fatalf("AllTags (-want +got):\n%s", diff)
	}
	l.RemoveTag("/p/a.jpg", "family")
	if got := l.Tags("/p/a.jpg"); len(got) != 1 || got[0] != "beach" {
		t.Fatalf("tags after remove = %v", got)
	}
}

func TestQueryResultNavigation(t *testing.T) {
	r := testLibrary().Query(Query{})
	next, ok := r.After("/p/b.jpg")
	if !ok || next.Path != "/p/a.jpg" {
		t.Fatalf("After 应跨越分组: %v %v", next.Path, ok)
	}
	prev, ok := r.Before("/p/a.jpg")
	if !ok || prev.Path != "/p/b.jpg" {
		t.Fatalf("Before = %v %v", prev.Path, ok)
	}
	if _, ok := r.After("/p/c.jpg"); ok {
		t.Fatalf("最后一张之后不应有照片")
	}
	if _, ok := r.Before("/p/d.jpg"); ok {
		t.Fatalf("第一张之前不应有照片")
	}
	if r.Len() != 4 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestRemoveDropsRatingAndTags(t *testing.T) {
	l := testLibrary()
	l.SetRating("/p/a.jpg", Yes)
	l.AddTag("/p/a.jpg", "x")
	l.Remove("/p/a.jpg")
	if l.Len() != 3 || l.Rating("/p/a.jpg") != Maybe || len(l.Tags("/p/a.jpg")) != 0 {
		t.Fatalf("remove left state behind")
	}
	for _, p := range l.Photos() {
		if p.Path == "/p/a.jpg" {
			t.Fatalf("photo still listed")
		}
	}
}

func TestRatingText(t *testing.T) {
	for _, r := range []Rating{Yes, No, Maybe} {
		b, _ := r.MarshalText()
		var back Rating
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Fatalf("round trip %v -> %v (%v)", r, back, err)
		}
	}
	if _, err := ParseRating("great"); err == nil {
		t.Fatalf("未知评级应报错")
	}
}
