package blog

import "github.com/forner/blog/markdown"

// RenderPost renders p's body to HTML, HTML without the table of contents,
// and a plain-text abstract of markdown.DefaultAbstractLength runes.
func RenderPost(p Post) RenderedPost {
	return RenderPostWithAbstract(p, markdown.DefaultAbstractLength)
}

// RenderPostWithAbstract is RenderPost with a custom abstract length.
func RenderPostWithAbstract(p Post, abstractLen int) RenderedPost {
	return RenderedPost{
		HTML:           markdown.Render(p.Body),
		HTMLWithoutTOC: markdown.RenderWithoutTOC(p.Body),
		Abstract:       markdown.Abstract(p.Body, abstractLen),
	}
}

// FeedItems maps the n latest published posts to syndication entries.
func (v *View) FeedItems(n int) []FeedItem {
	return v.FeedItemsWithAbstract(n, markdown.DefaultAbstractLength)
}

// FeedItemsWithAbstract is FeedItems with a custom abstract length.
func (v *View) FeedItemsWithAbstract(n, abstractLen int) []FeedItem {
	posts := v.Latest(n)
	items := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		item := FeedItem{
			Title:    p.Title,
			Abstract: markdown.Abstract(p.Body, abstractLen),
			URL:      PostPath(p),
			PubDate:  p.PubDate,
		}
		if p.Category != nil {
			item.Category = p.Category.Name
		}
		for _, t := range p.Tags {
			item.Tags = append(item.Tags, t.Name)
		}
		items = append(items, item)
	}
	return items
}
