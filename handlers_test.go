package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		List: func(p ListPage) templ.Component {
			var b strings.Builder
			fmt.Fprintf(&b, "list %s:", p.Heading)
			for _, lp := range p.Posts {
				fmt.Fprintf(&b, " %s;", lp.Post.Title)
			}
			return text(b.String())
		},
		Post: func(p PostPage) templ.Component {
			return text(fmt.Sprintf("post %s next=%s prev=%s\n%s", p.Post.Title, p.Nav.NextURL, p.Nav.PreviousURL, p.Rendered.HTML))
		},
		Search: func(p SearchPage) templ.Component {
			var b strings.Builder
			fmt.Fprintf(&b, "search %q:", p.Query)
			for _, h := range p.Hits {
				fmt.Fprintf(&b, " %s;", h.Title)
			}
			return text(b.String())
		},
		NotFound:    func() templ.Component { return text("not found") },
		ServerError: func() templ.Component { return text("server error") },
	}
}

// seedStore writes c through the store. IDs are assigned in slice order, so
// a collection numbered 1..n keeps its IDs.
func seedStore(t *testing.T, s *Store, c Collection) {
	t.Helper()
	ctx := context.Background()
	for _, cat := range c.Categories {
		if _, err := s.SaveCategory(ctx, Category{Name: cat.Name}); err != nil {
			t.Fatal(err)
		}
	}
	for _, tag := range c.Tags {
		if _, err := s.SaveTag(ctx, Tag{Name: tag.Name}); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range c.Posts {
		p.ID = 0
		if _, err := s.SavePost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	for _, pt := range c.PostTags {
		if err := s.TagPost(ctx, pt.PostID, pt.TagID); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestApp(t *testing.T, cfg SiteConfig, c Collection) *App {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	seedStore(t, store, c)

	if cfg.URL == "" {
		cfg.URL = "https://example.com"
	}
	a := New(cfg, testViews(), WithStore(store), WithLogger(zap.NewNop()), WithStaticDir(t.TempDir()))
	if err := a.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func get(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "list : Post 11; Post 10;") {
		t.Errorf("GET / body = %q", body)
	}
	if strings.Contains(body, "Post 1;") {
		t.Errorf("GET / should stop at IndexSize posts: %q", body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=300" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestHandlePost(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	rec := get(a, "/2024/03/14/Post_5")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET post = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	want := "post Post 5 next=/2024/03/15/Post_6 prev=/2024/03/13/Post_4\n<p>Content of the fifth post</p>"
	if got := rec.Body.String(); got != want {
		t.Errorf("GET post body = %q, want %q", got, want)
	}
}

func TestTrailingSlashRedirects(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	rec := get(a, "/2024/03/14/Post_5/")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("GET with trailing slash = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/2024/03/14/Post_5" {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandleNotFound(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	for _, target := range []string{
		"/2024/03/14/Nope",
		"/24/03/14/Post_5",
		"/2024/3",
		"/2024/03/x",
		"/tag/Nope",
		"/tag/bad-name",
		"/category/Nope",
		"/2024/03/14/Post_5/extra",
	} {
		rec := get(a, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", target, rec.Code)
			continue
		}
		if rec.Body.String() != "not found" {
			t.Errorf("GET %s body = %q, want the not found view", target, rec.Body.String())
		}
	}
}

func TestHandleArchives(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	tests := []struct {
		target string
		want   string
	}{
		{"/2024/03/12", "list 2024/03/12: Post 3;"},
		{"/2024/03/012", "list 2024/03/12: Post 3;"},
		{"/2023", "list 2023:"},
		{"/2024/04", "list 2024/04:"},
		{"/tag/Tag_3", "list Tag: Tag 3: Post 4; Post 6; Post 7; Post 8; Post 10; Post 11;"},
		{"/category/Category_2", "list Category: Category 2: Post 10; Post 8; Post 6; Post 4; Post 2;"},
	}
	for _, tt := range tests {
		rec := get(a, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", tt.target, rec.Code)
			continue
		}
		if got := rec.Body.String(); got != tt.want {
			t.Errorf("GET %s = %q, want %q", tt.target, got, tt.want)
		}
	}

	year := get(a, "/2024").Body.String()
	if !strings.Contains(year, "Post 11;") || !strings.Contains(year, "Post 1;") {
		t.Errorf("GET /2024 = %q, want every post", year)
	}
}

func TestHandleDraftPreview(t *testing.T) {
	c := fixtureCollection()
	c.Posts[10].Draft = true // Post 11
	a := newTestApp(t, SiteConfig{}, c)

	if body := get(a, "/").Body.String(); strings.Contains(body, "Post 11") {
		t.Errorf("draft listed on index: %q", body)
	}
	if rec := get(a, "/2024/03/20/Post_11"); rec.Code != http.StatusOK {
		t.Errorf("draft preview = %d, want 200", rec.Code)
	}
}

func TestHandleHideScheduled(t *testing.T) {
	c := fixtureCollection()
	future := time.Now().Add(48 * time.Hour).UTC()
	c.Posts = append(c.Posts, Post{ID: 12, Title: "Tomorrow", Body: "soon", CategoryID: 1, PubDate: future})
	a := newTestApp(t, SiteConfig{HideScheduled: true}, c)

	if body := get(a, "/").Body.String(); strings.Contains(body, "Tomorrow") {
		t.Errorf("scheduled post listed: %q", body)
	}
	path := fmt.Sprintf("/%04d/%02d/%02d/Tomorrow", future.Year(), int(future.Month()), future.Day())
	if rec := get(a, path); rec.Code != http.StatusOK {
		t.Errorf("GET %s = %d, want 200", path, rec.Code)
	}
}

func TestHandleFeed(t *testing.T) {
	a := newTestApp(t, SiteConfig{FeedSize: 3}, fixtureCollection())
	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /feed.xml = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<link>https://example.com/2024/03/20/Post_11</link>",
		"<description>Content of the eleventh post</description>",
		"<category>Category 1</category>",
		"<category>Tag 3</category>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q:\n%s", want, body)
		}
	}
	if n := strings.Count(body, "<item>"); n != 3 {
		t.Errorf("feed has %d items, want 3", n)
	}
}

func TestHandleSitemap(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	body := get(a, "/sitemap.xml").Body.String()
	for _, want := range []string{
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/2024/03/10/Post_1</loc>",
		"<lastmod>2024-03-10</lastmod>",
		"<loc>https://example.com/category/Category_1</loc>",
		"<loc>https://example.com/tag/Tag_4</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q", want)
		}
	}
}

func TestHandleSearch(t *testing.T) {
	a := newTestApp(t, SiteConfig{SearchEnabled: true}, fixtureCollection())
	rec := get(a, "/search?q=eleventh")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /search = %d", rec.Code)
	}
	if got, want := rec.Body.String(), `search "eleventh": Post 11;`; got != want {
		t.Errorf("GET /search = %q, want %q", got, want)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func TestHandleSearchRateLimited(t *testing.T) {
	a := newTestApp(t, SiteConfig{SearchEnabled: true, SearchRateLimit: 2}, fixtureCollection())
	for i := 0; i < 2; i++ {
		if rec := get(a, "/search?q=post"); rec.Code != http.StatusOK {
			t.Fatalf("search #%d = %d, want 200", i, rec.Code)
		}
	}
	if rec := get(a, "/search?q=post"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("third search = %d, want 429", rec.Code)
	}
}

func TestHandleSearchDisabled(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	if rec := get(a, "/search?q=post"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /search with search disabled = %d, want 404", rec.Code)
	}
}

func TestHandleServerError(t *testing.T) {
	a := newTestApp(t, SiteConfig{}, fixtureCollection())
	a.Cache = NewViewCache(&countingSource{err: errors.New("disk on fire")}, time.Minute)
	rec := get(a, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET / with failing store = %d, want 500", rec.Code)
	}
	if rec.Body.String() != "server error" {
		t.Errorf("body = %q, want the server error view", rec.Body.String())
	}
}
