// Package views holds the default page components. Sites that want their
// own markup pass their own blog.ViewFuncs instead.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/forner/blog"
)

// Default returns the built-in set of page components.
func Default() blog.ViewFuncs {
	return blog.ViewFuncs{
		List:        List,
		Post:        Post,
		Search:      Search,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

var esc = templ.EscapeString[string]

// page wraps body in the shared document shell.
func page(site blog.SiteConfig, meta blog.PageMeta, jsonLD string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", esc(meta.Title))
		if meta.Description != "" {
			fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", esc(meta.Description))
			fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\">\n", esc(meta.Description))
		}
		if meta.URL != "" {
			fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", esc(meta.URL))
			fmt.Fprintf(&b, "<meta property=\"og:url\" content=\"%s\">\n", esc(meta.URL))
		}
		fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\">\n", esc(meta.Title))
		if meta.OGType != "" {
			fmt.Fprintf(&b, "<meta property=\"og:type\" content=\"%s\">\n", esc(meta.OGType))
		}
		fmt.Fprintf(&b, "<link rel=\"alternate\" type=\"application/rss+xml\" title=\"%s\" href=\"/feed.xml\">\n", esc(site.Name))
		if jsonLD != "" {
			// JSON-LD is produced by encoding/json, which escapes <, > and &.
			fmt.Fprintf(&b, "<script type=\"application/ld+json\">%s</script>\n", jsonLD)
		}
		b.WriteString("</head>\n<body>\n")
		fmt.Fprintf(&b, "<header><a href=\"/\">%s</a>", esc(site.Name))
		if site.SearchEnabled {
			b.WriteString(` <form action="/search" method="get"><input type="search" name="q" aria-label="Search"></form>`)
		}
		b.WriteString("</header>\n<main>\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

func writeTags(b *strings.Builder, tags []blog.Tag) {
	if len(tags) == 0 {
		return
	}
	b.WriteString("<ul class=\"tags\">")
	for _, t := range tags {
		fmt.Fprintf(b, "<li><a href=\"%s\">%s</a></li>", esc(blog.TagPath(t)), esc(t.Name))
	}
	b.WriteString("</ul>\n")
}

func writeByline(b *strings.Builder, p blog.Post) {
	fmt.Fprintf(b, "<p class=\"byline\"><time datetime=\"%s\">%s</time>",
		p.PubDate.Format("2006-01-02T15:04:05Z07:00"), p.PubDate.Format("January 2, 2006"))
	if p.Author != "" {
		fmt.Fprintf(b, " by %s", esc(p.Author))
	}
	if p.Category != nil {
		fmt.Fprintf(b, " in <a href=\"%s\">%s</a>", esc(blog.CategoryPath(*p.Category)), esc(p.Category.Name))
	}
	b.WriteString("</p>\n")
}

// List renders the home page and every archive listing.
func List(p blog.ListPage) templ.Component {
	return page(p.Site, p.Meta, blog.WebsiteJSONLD(p.Site), func(w io.Writer) error {
		var b strings.Builder
		if p.Heading != "" {
			fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(p.Heading))
		}
		if len(p.Posts) == 0 {
			b.WriteString("<p class=\"empty\">No posts here yet.</p>\n")
		}
		for _, lp := range p.Posts {
			b.WriteString("<article>\n")
			fmt.Fprintf(&b, "<h2><a href=\"%s\">%s</a></h2>\n", esc(lp.Post.URL()), esc(lp.Post.Title))
			writeByline(&b, lp.Post)
			fmt.Fprintf(&b, "<p>%s</p>\n", esc(lp.Abstract))
			writeTags(&b, lp.Post.Tags)
			b.WriteString("</article>\n")
		}
		if len(p.Categories) > 0 {
			b.WriteString("<nav class=\"categories\"><h2>Categories</h2><ul>")
			for _, c := range p.Categories {
				fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>", esc(blog.CategoryPath(c)), esc(c.Name))
			}
			b.WriteString("</ul></nav>\n")
		}
		if len(p.Tags) > 0 {
			b.WriteString("<nav class=\"all-tags\"><h2>Tags</h2>")
			writeTags(&b, p.Tags)
			b.WriteString("</nav>\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Post renders a single post with its neighbours.
func Post(p blog.PostPage) templ.Component {
	return page(p.Site, p.Meta, blog.PostingJSONLD(p.Post, p.Rendered.Abstract, p.Site), func(w io.Writer) error {
		var b strings.Builder
		b.WriteString("<article>\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(p.Post.Title))
		writeByline(&b, p.Post)
		if p.Post.Draft {
			b.WriteString("<p class=\"draft\">Draft preview</p>\n")
		}
		// rendered by goldmark without raw HTML, so it is safe to embed
		b.WriteString(p.Rendered.HTML)
		b.WriteString("\n")
		writeTags(&b, p.Post.Tags)
		b.WriteString("</article>\n<nav class=\"pager\">")
		if p.Nav.HasPrevious {
			fmt.Fprintf(&b, "<a rel=\"prev\" href=\"%s\">&larr; %s</a>", esc(p.Nav.PreviousURL), esc(p.Nav.PreviousTitle))
		}
		if p.Nav.HasNext {
			fmt.Fprintf(&b, "<a rel=\"next\" href=\"%s\">%s &rarr;</a>", esc(p.Nav.NextURL), esc(p.Nav.NextTitle))
		}
		b.WriteString("</nav>\n")
		if len(p.Related) > 0 {
			b.WriteString("<aside class=\"related\"><h2>Related</h2><ul>")
			for _, r := range p.Related {
				fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>", esc(r.URL()), esc(r.Title))
			}
			b.WriteString("</ul></aside>\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Search renders search results. Fragments come from the index highlighter,
// which escapes the source text and only adds <mark> tags.
func Search(p blog.SearchPage) templ.Component {
	return page(p.Site, p.Meta, "", func(w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<h1>Search: %s</h1>\n", esc(p.Query))
		if len(p.Hits) == 0 {
			b.WriteString("<p class=\"empty\">Nothing matched.</p>\n")
		}
		b.WriteString("<ol class=\"results\">\n")
		for _, h := range p.Hits {
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a>", esc(h.URL), esc(h.Title))
			if frags := h.Fragments["Body"]; len(frags) > 0 {
				fmt.Fprintf(&b, "<p>%s</p>", frags[0])
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ol>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return simple("Not found", "There is nothing at this address.")
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return simple("Something went wrong", "Please try again in a moment.")
}

func simple(title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body><main><h1>%s</h1><p>%s</p><p><a href=\"/\">Home</a></p></main></body>\n</html>\n",
			esc(title), esc(title), esc(message))
		return err
	})
}
