package blog

import (
	"encoding/json"
	"strings"
)

// Related returns up to n published posts sharing at least one tag with p,
// newest first. p itself is never included.
func (v *View) Related(p Post, n int) []Post {
	want := make(map[int64]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		want[t.ID] = struct{}{}
	}
	if len(want) == 0 {
		return nil
	}
	var out []Post
	for _, q := range v.posts {
		if n > 0 && len(out) == n {
			break
		}
		if q.ID == p.ID || !v.public(q) {
			continue
		}
		for _, t := range q.Tags {
			if _, ok := want[t.ID]; ok {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

// WebsiteJSONLD returns a JSON-LD string for a WebSite schema.
func WebsiteJSONLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         AbsoluteURL(cfg.URL, "/"),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": cfg.Author}
	}
	return marshalJSONLD(data)
}

// PostingJSONLD returns a JSON-LD string for a BlogPosting schema. The post
// author wins over the site author.
func PostingJSONLD(p Post, abstract string, cfg SiteConfig) string {
	postURL := AbsoluteURL(cfg.URL, PostPath(p))
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      p.Title,
		"description":   abstract,
		"datePublished": p.PubDate.Format("2006-01-02T15:04:05Z07:00"),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	author := p.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{"@type": "Person", "name": author}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{"@type": "Organization", "name": cfg.Name}
	}
	if p.Category != nil {
		data["articleSection"] = p.Category.Name
	}
	if len(p.Tags) > 0 {
		names := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			names[i] = t.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJSONLD(data)
}

func marshalJSONLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
