package blog

import "time"

var fixtureStart = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// fixtureCollection mirrors a small blog: 11 published posts spread over
// 11 consecutive days, two categories and four tags (Tag 4 unused).
func fixtureCollection() Collection {
	day := func(n int) time.Time { return fixtureStart.AddDate(0, 0, n) }
	c := Collection{
		Categories: []Category{{ID: 1, Name: "Category 1"}, {ID: 2, Name: "Category 2"}},
		Tags: []Tag{
			{ID: 1, Name: "Tag 1"},
			{ID: 2, Name: "Tag 2"},
			{ID: 3, Name: "Tag 3"},
			{ID: 4, Name: "Tag 4"},
		},
		Posts: []Post{
			{ID: 1, Author: "me", Title: "Post 1", Body: "Content of the first post", CategoryID: 1, PubDate: day(0)},
			{ID: 2, Author: "me", Title: "Post 2", Body: "Content of the second post", CategoryID: 2, PubDate: day(1)},
			{ID: 3, Author: "me", Title: "Post 4", Body: "Content of the forth post", CategoryID: 2, PubDate: day(3)},
			{ID: 4, Author: "me", Title: "Post 5", Body: "Content of the fifth post", CategoryID: 1, PubDate: day(4)},
			{ID: 5, Author: "me", Title: "Post 3", Body: "Content of the third post", CategoryID: 1, PubDate: day(2)},
			{ID: 6, Author: "me", Title: "Post 7", Body: "Content of the seventh post", CategoryID: 1, PubDate: day(6)},
			{ID: 7, Author: "me", Title: "Post 8", Body: "Content of the eighth post", CategoryID: 2, PubDate: day(7)},
			{ID: 8, Author: "me", Title: "Post 9", Body: "Content of the ninth post", CategoryID: 1, PubDate: day(8)},
			{ID: 9, Author: "me", Title: "Post 6", Body: "Content of the sixth post", CategoryID: 2, PubDate: day(5)},
			{ID: 10, Author: "me", Title: "Post 10", Body: "Content of the tenth post", CategoryID: 2, PubDate: day(9)},
			{ID: 11, Author: "me", Title: "Post 11", Body: "Content of the eleventh post", CategoryID: 1, PubDate: day(10)},
		},
	}
	joins := [][2]int64{
		{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}, {4, 2}, {5, 1}, {6, 2},
		{6, 3}, {6, 1}, {7, 2}, {7, 3}, {8, 2}, {9, 3}, {10, 3}, {11, 3},
	}
	for i, j := range joins {
		c.PostTags = append(c.PostTags, PostTag{ID: int64(i + 1), PostID: j[0], TagID: j[1]})
	}
	return c
}

func titles(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
