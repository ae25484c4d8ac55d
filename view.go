package blog

import (
	"fmt"
	"sort"
	"time"
)

// DraftPolicy says whether a listing shows draft posts.
type DraftPolicy int

const (
	// IncludeDrafts lists drafts next to published posts.
	IncludeDrafts DraftPolicy = iota
	// ExcludeDrafts lists published posts only.
	ExcludeDrafts
)

// ViewOption configures a View.
type ViewOption func(*View)

// WithTagDraftPolicy sets whether LatestWithTag shows drafts. Tag listings
// have always included drafts; ExcludeDrafts closes that gap.
func WithTagDraftPolicy(p DraftPolicy) ViewOption {
	return func(v *View) { v.tagDrafts = p }
}

// WithCutoff hides posts dated after t from public listings, the feed and
// navigation. They stay reachable through Resolve. A zero t disables it.
func WithCutoff(t time.Time) ViewOption {
	return func(v *View) { v.cutoff = t }
}

// View answers read-only queries over one Collection snapshot. It is built
// once and is safe for concurrent use; nothing mutates it after NewView.
//
// Draft visibility per operation:
//   - Latest, LatestInCategory, FromYear*, Next/Previous, feed: published only.
//   - LatestWithTag: per WithTagDraftPolicy (IncludeDrafts by default).
//   - FromYearMonthDaySlug / Resolve: drafts included, for previews.
type View struct {
	posts      []Post // newest first by (PubDate, ID)
	categories map[string]Category
	tags       map[string]Tag
	tagged     map[int64][]int // tag ID -> indices into posts, newest first
	catList    []Category
	tagList    []Tag
	tagDrafts  DraftPolicy
	cutoff     time.Time
}

// NewView indexes c. Category and tag slugs are indexed up front; when two
// entities share a slug the one with the lower ID wins.
func NewView(c Collection, opts ...ViewOption) *View {
	v := &View{
		categories: make(map[string]Category, len(c.Categories)),
		tags:       make(map[string]Tag, len(c.Tags)),
		tagged:     make(map[int64][]int),
		tagDrafts:  IncludeDrafts,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.catList = append([]Category(nil), c.Categories...)
	sort.Slice(v.catList, func(i, j int) bool { return v.catList[i].ID < v.catList[j].ID })
	catByID := make(map[int64]Category, len(v.catList))
	for _, cat := range v.catList {
		catByID[cat.ID] = cat
		if _, ok := v.categories[cat.Slug()]; !ok {
			v.categories[cat.Slug()] = cat
		}
	}

	v.tagList = append([]Tag(nil), c.Tags...)
	sort.Slice(v.tagList, func(i, j int) bool { return v.tagList[i].ID < v.tagList[j].ID })
	tagByID := make(map[int64]Tag, len(v.tagList))
	for _, t := range v.tagList {
		tagByID[t.ID] = t
		if _, ok := v.tags[t.Slug()]; !ok {
			v.tags[t.Slug()] = t
		}
	}

	postIdx := make(map[int64]int, len(c.Posts))
	v.posts = make([]Post, len(c.Posts))
	for i, p := range c.Posts {
		p.Tags = nil
		p.Category = nil
		if cat, ok := catByID[p.CategoryID]; ok {
			p.Category = &cat
		}
		v.posts[i] = p
		postIdx[p.ID] = i
	}

	joins := append([]PostTag(nil), c.PostTags...)
	sort.Slice(joins, func(i, j int) bool { return joins[i].ID < joins[j].ID })
	type pair struct{ post, tag int64 }
	seen := make(map[pair]struct{}, len(joins))
	for _, j := range joins {
		i, ok := postIdx[j.PostID]
		if !ok {
			continue
		}
		t, ok := tagByID[j.TagID]
		if !ok {
			continue
		}
		if _, dup := seen[pair{j.PostID, j.TagID}]; dup {
			continue
		}
		seen[pair{j.PostID, j.TagID}] = struct{}{}
		v.posts[i].Tags = append(v.posts[i].Tags, t)
	}

	sort.SliceStable(v.posts, func(i, j int) bool { return later(v.posts[i], v.posts[j]) })
	for i, p := range v.posts {
		for _, t := range p.Tags {
			v.tagged[t.ID] = append(v.tagged[t.ID], i)
		}
	}

	sort.SliceStable(v.catList, func(i, j int) bool { return v.catList[i].Name < v.catList[j].Name })
	sort.SliceStable(v.tagList, func(i, j int) bool { return v.tagList[i].Name < v.tagList[j].Name })
	return v
}

// At returns a view over the same snapshot that treats posts dated after t
// as scheduled. The indices are shared, so this is cheap per request.
func (v *View) At(t time.Time) *View {
	c := *v
	c.cutoff = t
	return &c
}

// later reports whether a sorts after b chronologically. Equal dates fall
// back to the ID so the order is total.
func later(a, b Post) bool {
	if !a.PubDate.Equal(b.PubDate) {
		return a.PubDate.After(b.PubDate)
	}
	return a.ID > b.ID
}

func (v *View) scheduled(p Post) bool {
	return !v.cutoff.IsZero() && p.PubDate.After(v.cutoff)
}

func (v *View) public(p Post) bool {
	return !p.Draft && !v.scheduled(p)
}

// Latest returns published posts, newest first. n <= 0 returns all of them.
func (v *View) Latest(n int) []Post {
	var out []Post
	for _, p := range v.posts {
		if n > 0 && len(out) == n {
			break
		}
		if v.public(p) {
			out = append(out, p)
		}
	}
	return out
}

// LatestInCategory returns published posts of the category whose slug
// matches Slugify(name), newest first. An unknown category is ErrNotFound;
// a known one without posts yields an empty result.
func (v *View) LatestInCategory(name string) ([]Post, error) {
	cat, ok := v.categories[Slugify(name)]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	var out []Post
	for _, p := range v.posts {
		if v.public(p) && p.CategoryID == cat.ID {
			out = append(out, p)
		}
	}
	return out, nil
}

// LatestWithTag returns posts carrying the tag whose slug matches
// Slugify(name), oldest first. This is the only listing read forward in
// time. Drafts follow the view's tag draft policy.
func (v *View) LatestWithTag(name string) ([]Post, error) {
	t, ok := v.tags[Slugify(name)]
	if !ok {
		return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	idx := v.tagged[t.ID]
	var out []Post
	for i := len(idx) - 1; i >= 0; i-- {
		p := v.posts[idx[i]]
		if v.scheduled(p) || (p.Draft && v.tagDrafts == ExcludeDrafts) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// FromYear returns published posts from year, newest first.
func (v *View) FromYear(year int) []Post {
	return v.byDate(InYear(year))
}

// FromYearMonth returns published posts from the given month, newest first.
func (v *View) FromYearMonth(year, month int) []Post {
	return v.byDate(InMonth(year, month))
}

// FromYearMonthDay returns published posts from the given day, newest first.
func (v *View) FromYearMonthDay(year, month, day int) []Post {
	return v.byDate(OnDay(year, month, day))
}

func (v *View) byDate(f Filter) []Post {
	var out []Post
	for _, p := range v.posts {
		if v.public(p) && f.matchesDate(p) {
			out = append(out, p)
		}
	}
	return out
}

// FromYearMonthDaySlug finds the post published on the given day whose
// title slug equals slug. Drafts are included so an author can preview an
// unpublished post by its direct link. If titles collide the lowest ID wins.
func (v *View) FromYearMonthDaySlug(year, month, day int, slug string) (Post, error) {
	day0 := OnDay(year, month, day)
	var (
		found Post
		ok    bool
	)
	for _, p := range v.posts {
		if !day0.matchesDate(p) || p.Slug() != slug {
			continue
		}
		if !ok || p.ID < found.ID {
			found, ok = p, true
		}
	}
	if !ok {
		return Post{}, fmt.Errorf("post %04d/%02d/%02d/%s: %w", year, month, day, slug, ErrNotFound)
	}
	return found, nil
}

// List runs the listing selected by f and keeps at most limit posts
// (limit <= 0 keeps all). Only category and tag filters can fail.
func (v *View) List(f Filter, limit int) ([]Post, error) {
	var (
		out []Post
		err error
	)
	switch f.kind {
	case filterAll:
		return v.Latest(limit), nil
	case filterCategory:
		out, err = v.LatestInCategory(f.name)
	case filterTag:
		out, err = v.LatestWithTag(f.name)
	case filterDate:
		out = v.byDate(f)
	}
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Category returns the category whose slug matches Slugify(name).
func (v *View) Category(name string) (Category, error) {
	c, ok := v.categories[Slugify(name)]
	if !ok {
		return Category{}, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// Tag returns the tag whose slug matches Slugify(name).
func (v *View) Tag(name string) (Tag, error) {
	t, ok := v.tags[Slugify(name)]
	if !ok {
		return Tag{}, fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	return t, nil
}

// Categories returns all categories sorted by name.
func (v *View) Categories() []Category { return v.catList }

// Tags returns all tags sorted by name.
func (v *View) Tags() []Tag { return v.tagList }
