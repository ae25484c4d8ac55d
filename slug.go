package blog

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Slugify converts text to a URL-safe slug by replacing every rune that is
// not an ASCII letter or digit with '_'. Case and order are kept and each
// input rune yields exactly one output byte, so "A B" and "A-B" share a slug.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PostPath returns /YYYY/MM/DD/<slug> for p.
func PostPath(p Post) string {
	d := p.PubDate
	return fmt.Sprintf("/%04d/%02d/%02d/%s", d.Year(), int(d.Month()), d.Day(), p.Slug())
}

// TagPath returns /tag/<slug> for t.
func TagPath(t Tag) string {
	return "/tag/" + t.Slug()
}

// CategoryPath returns /category/<slug> for c.
func CategoryPath(c Category) string {
	return "/category/" + c.Slug()
}

// AbsoluteURL joins a site-relative path onto base.
func AbsoluteURL(base, p string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + p
	}
	u.Path = path.Join("/", u.Path, p)
	return u.String()
}
