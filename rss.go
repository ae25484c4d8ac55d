package blog

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category,omitempty"`
}

// buildRSS maps feed items onto an RSS 2.0 document. Item links are
// absolute, built from the configured site URL.
func buildRSS(cfg SiteConfig, items []FeedItem) rssXML {
	out := make([]rssItem, 0, len(items))
	var newest time.Time
	for _, it := range items {
		link := AbsoluteURL(cfg.URL, it.URL)
		item := rssItem{
			Title:       it.Title,
			Link:        link,
			Description: it.Abstract,
			PubDate:     it.PubDate.Format(time.RFC1123Z),
			GUID:        link,
		}
		if it.Category != "" {
			item.Categories = append(item.Categories, it.Category)
		}
		item.Categories = append(item.Categories, it.Tags...)
		out = append(out, item)
		if it.PubDate.After(newest) {
			newest = it.PubDate
		}
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        AbsoluteURL(cfg.URL, "/"),
			Description: cfg.Description,
			Items:       out,
		},
	}
	if !newest.IsZero() {
		feed.Channel.LastBuildDate = newest.Format(time.RFC1123Z)
	}
	return feed
}

func (a *App) renderRSS(c echo.Context, items []FeedItem) error {
	return renderXML(c, "application/rss+xml; charset=utf-8", buildRSS(a.Config, items))
}
