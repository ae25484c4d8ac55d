package blog

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the home page, every published post, and every
// category and tag page.
func buildSitemap(base string, v *View) sitemapURLSet {
	posts := v.Latest(0)
	urls := make([]sitemapURL, 0, 1+len(posts)+len(v.Categories())+len(v.Tags()))
	home := sitemapURL{Loc: AbsoluteURL(base, "/")}
	if len(posts) > 0 {
		home.LastMod = posts[0].PubDate.Format("2006-01-02")
	}
	urls = append(urls, home)
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     AbsoluteURL(base, PostPath(p)),
			LastMod: p.PubDate.Format("2006-01-02"),
		})
	}
	for _, c := range v.Categories() {
		urls = append(urls, sitemapURL{Loc: AbsoluteURL(base, CategoryPath(c))})
	}
	for _, t := range v.Tags() {
		urls = append(urls, sitemapURL{Loc: AbsoluteURL(base, TagPath(t))})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, v *View) error {
	return renderXML(c, "application/xml; charset=utf-8", buildSitemap(a.Config.URL, v))
}
