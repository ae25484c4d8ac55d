package blog

import "time"

// Category groups posts under a single heading. Posts reference it by ID.
type Category struct {
	ID   int64
	Name string
}

// Slug returns the category's public path segment.
func (c Category) Slug() string { return Slugify(c.Name) }

// Tag is a free-form label attached to posts through PostTag rows.
type Tag struct {
	ID   int64
	Name string
}

// Slug returns the tag's public path segment.
func (t Tag) Slug() string { return Slugify(t.Name) }

// Post is the core content type. Body holds the markdown source.
// Category and Tags are filled in by NewView from the snapshot's relations.
type Post struct {
	ID         int64
	Author     string
	Title      string
	Body       string
	CategoryID int64
	Category   *Category
	Tags       []Tag
	PubDate    time.Time
	Draft      bool
}

// Slug returns the computed title slug. It is never stored.
func (p Post) Slug() string { return Slugify(p.Title) }

// URL returns the post's date-path, e.g. /2024/03/07/Hello_World.
func (p Post) URL() string { return PostPath(p) }

// PostTag joins a post to a tag. A (PostID, TagID) pair appears at most once.
type PostTag struct {
	ID     int64
	PostID int64
	TagID  int64
}

// Collection is a read-only snapshot of every record the engine works on,
// as supplied by the storage layer for the duration of one request.
type Collection struct {
	Categories []Category
	Tags       []Tag
	Posts      []Post
	PostTags   []PostTag
}

// Navigation carries the chronological neighbours of a post for templates.
type Navigation struct {
	HasPrevious   bool
	PreviousTitle string
	PreviousURL   string
	HasNext       bool
	NextTitle     string
	NextURL       string
}

// RenderedPost holds the HTML projections of a post body.
type RenderedPost struct {
	HTML           string
	HTMLWithoutTOC string
	Abstract       string
}

// FeedItem is one syndication entry. URL is a site-relative date-path.
type FeedItem struct {
	Title    string
	Abstract string
	URL      string
	PubDate  time.Time
	Category string
	Tags     []string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
