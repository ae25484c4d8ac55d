package blog

import (
	"fmt"
	"regexp"
	"strconv"
)

var rePostPath = regexp.MustCompile(`^/([0-9]{4})/([0-9]{2})/([0-9]+)/(\w+)/?$`)

// Resolve maps a date-path back to a single post. It is the only entry
// point that reaches drafts, so unpublished posts can be previewed.
func (v *View) Resolve(year, month, day int, slug string) (Post, error) {
	return v.FromYearMonthDaySlug(year, month, day, slug)
}

// ResolvePath parses and resolves a path such as /2024/03/07/Hello_World.
func (v *View) ResolvePath(p string) (Post, error) {
	year, month, day, slug, err := ParsePostPath(p)
	if err != nil {
		return Post{}, err
	}
	return v.Resolve(year, month, day, slug)
}

// ParsePostPath splits /YYYY/MM/D+/slug into its parts. The trailing slash
// is optional. Anything else is ErrNotFound.
func ParsePostPath(p string) (year, month, day int, slug string, err error) {
	m := rePostPath.FindStringSubmatch(p)
	if m == nil {
		return 0, 0, 0, "", fmt.Errorf("path %q: %w", p, ErrNotFound)
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	day, err = strconv.Atoi(m[3])
	if err != nil {
		return 0, 0, 0, "", fmt.Errorf("path %q: %w", p, ErrNotFound)
	}
	return year, month, day, m[4], nil
}
