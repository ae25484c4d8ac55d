package blog

import "fmt"

type filterKind int

const (
	filterAll filterKind = iota
	filterCategory
	filterTag
	filterDate
)

// Filter selects one of the public listings served by View.List.
// Build it with AllPosts, InCategory, WithTag, InYear, InMonth or OnDay.
type Filter struct {
	kind  filterKind
	name  string
	year  int
	month int // 0 when unset
	day   int // 0 when unset
}

// AllPosts lists every public post.
func AllPosts() Filter { return Filter{kind: filterAll} }

// InCategory lists public posts of the category whose slug matches name.
func InCategory(name string) Filter { return Filter{kind: filterCategory, name: name} }

// WithTag lists posts carrying the tag whose slug matches name, oldest first.
func WithTag(name string) Filter { return Filter{kind: filterTag, name: name} }

// InYear lists public posts published in year.
func InYear(year int) Filter { return Filter{kind: filterDate, year: year} }

// InMonth lists public posts published in the given month.
func InMonth(year, month int) Filter { return Filter{kind: filterDate, year: year, month: month} }

// OnDay lists public posts published on the given day.
func OnDay(year, month, day int) Filter {
	return Filter{kind: filterDate, year: year, month: month, day: day}
}

func (f Filter) String() string {
	switch f.kind {
	case filterCategory:
		return fmt.Sprintf("category %q", f.name)
	case filterTag:
		return fmt.Sprintf("tag %q", f.name)
	case filterDate:
		switch {
		case f.day > 0:
			return fmt.Sprintf("%04d/%02d/%02d", f.year, f.month, f.day)
		case f.month > 0:
			return fmt.Sprintf("%04d/%02d", f.year, f.month)
		default:
			return fmt.Sprintf("%04d", f.year)
		}
	default:
		return "all"
	}
}

func (f Filter) matchesDate(p Post) bool {
	d := p.PubDate
	if d.Year() != f.year {
		return false
	}
	if f.month > 0 && int(d.Month()) != f.month {
		return false
	}
	if f.day > 0 && d.Day() != f.day {
		return false
	}
	return true
}
