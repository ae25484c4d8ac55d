package blog

// Next returns the published post immediately after p in time. Posts with
// the same PubDate are ordered by ID, which keeps Next and Previous inverse.
func (v *View) Next(p Post) (Post, bool) {
	for i := len(v.posts) - 1; i >= 0; i-- {
		if q := v.posts[i]; v.public(q) && later(q, p) {
			return q, true
		}
	}
	return Post{}, false
}

// Previous returns the published post immediately before p in time.
func (v *View) Previous(p Post) (Post, bool) {
	for _, q := range v.posts {
		// posts are newest first, so the first earlier one is the closest
		if v.public(q) && later(p, q) {
			return q, true
		}
	}
	return Post{}, false
}

// Navigate returns the previous/next links shown under a post.
func (v *View) Navigate(p Post) Navigation {
	var nav Navigation
	if prev, ok := v.Previous(p); ok {
		nav.HasPrevious = true
		nav.PreviousTitle = prev.Title
		nav.PreviousURL = PostPath(prev)
	}
	if next, ok := v.Next(p); ok {
		nav.HasNext = true
		nav.NextTitle = next.Title
		nav.NextURL = PostPath(next)
	}
	return nav
}
