package blog

import "errors"

// ErrNotFound is returned when a category, tag or date-path does not
// resolve to any entity. Empty listings are not errors.
var ErrNotFound = errors.New("blog: not found")
