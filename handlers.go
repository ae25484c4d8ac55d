package blog

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/forner/blog/markdown"
)

var (
	reYear  = regexp.MustCompile(`^[0-9]{4}$`)
	reMonth = regexp.MustCompile(`^[0-9]{2}$`)
	reDay   = regexp.MustCompile(`^[0-9]+$`)
	reName  = regexp.MustCompile(`^\w+$`)
)

// view returns the cached view for this request. With HideScheduled set it
// is cut off at the current instant.
func (a *App) view(c echo.Context) (*View, error) {
	v, err := a.Cache.View(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if a.Config.HideScheduled {
		v = v.At(time.Now())
	}
	return v, nil
}

func intParam(c echo.Context, name string, re *regexp.Regexp) (int, error) {
	s := c.Param(name)
	if !re.MatchString(s) {
		return 0, echo.ErrNotFound
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return n, nil
}

func nameParam(c echo.Context, name string) (string, error) {
	s := c.Param(name)
	if !reName.MatchString(s) {
		return "", echo.ErrNotFound
	}
	return s, nil
}

func (a *App) listPage(v *View, heading, path string, posts []Post) ListPage {
	title := a.Config.Name
	if heading != "" {
		title = heading + " | " + a.Config.Name
	}
	listed := make([]ListedPost, len(posts))
	for i, p := range posts {
		listed[i] = ListedPost{Post: p, Abstract: markdown.Abstract(p.Body, a.Config.AbstractLength)}
	}
	return ListPage{
		Site: a.Config,
		Meta: PageMeta{
			Title:       title,
			Description: a.Config.Description,
			URL:         AbsoluteURL(a.Config.URL, path),
			OGType:      "website",
		},
		Heading:    heading,
		Posts:      listed,
		Categories: v.Categories(),
		Tags:       v.Tags(),
	}
}

func (a *App) handleIndex(c echo.Context) error {
	v, err := a.view(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.List(a.listPage(v, "", "/", v.Latest(a.Config.IndexSize))))
}

func (a *App) handleYear(c echo.Context) error {
	year, err := intParam(c, "year", reYear)
	if err != nil {
		return err
	}
	return a.renderArchive(c, InYear(year), fmt.Sprintf("%04d", year))
}

func (a *App) handleMonth(c echo.Context) error {
	year, err := intParam(c, "year", reYear)
	if err != nil {
		return err
	}
	month, err := intParam(c, "month", reMonth)
	if err != nil {
		return err
	}
	return a.renderArchive(c, InMonth(year, month), fmt.Sprintf("%04d/%02d", year, month))
}

func (a *App) handleDay(c echo.Context) error {
	year, err := intParam(c, "year", reYear)
	if err != nil {
		return err
	}
	month, err := intParam(c, "month", reMonth)
	if err != nil {
		return err
	}
	day, err := intParam(c, "day", reDay)
	if err != nil {
		return err
	}
	return a.renderArchive(c, OnDay(year, month, day), fmt.Sprintf("%04d/%02d/%02d", year, month, day))
}

func (a *App) renderArchive(c echo.Context, f Filter, heading string) error {
	v, err := a.view(c)
	if err != nil {
		return err
	}
	posts, err := v.List(f, 0)
	if err != nil {
		return err
	}
	return Render(c, a.Views.List(a.listPage(v, heading, "/"+heading, posts)))
}

func (a *App) handleTag(c echo.Context) error {
	name, err := nameParam(c, "name")
	if err != nil {
		return err
	}
	v, err := a.view(c)
	if err != nil {
		return err
	}
	tag, err := v.Tag(name)
	if err != nil {
		return err
	}
	posts, err := v.List(WithTag(name), 0)
	if err != nil {
		return err
	}
	return Render(c, a.Views.List(a.listPage(v, "Tag: "+tag.Name, TagPath(tag), posts)))
}

func (a *App) handleCategory(c echo.Context) error {
	name, err := nameParam(c, "name")
	if err != nil {
		return err
	}
	v, err := a.view(c)
	if err != nil {
		return err
	}
	cat, err := v.Category(name)
	if err != nil {
		return err
	}
	posts, err := v.List(InCategory(name), 0)
	if err != nil {
		return err
	}
	return Render(c, a.Views.List(a.listPage(v, "Category: "+cat.Name, CategoryPath(cat), posts)))
}

func (a *App) handlePost(c echo.Context) error {
	year, err := intParam(c, "year", reYear)
	if err != nil {
		return err
	}
	month, err := intParam(c, "month", reMonth)
	if err != nil {
		return err
	}
	day, err := intParam(c, "day", reDay)
	if err != nil {
		return err
	}
	slug, err := nameParam(c, "slug")
	if err != nil {
		return err
	}
	v, err := a.view(c)
	if err != nil {
		return err
	}
	post, err := v.Resolve(year, month, day, slug)
	if err != nil {
		return err
	}
	rendered := RenderPostWithAbstract(post, a.Config.AbstractLength)
	return Render(c, a.Views.Post(PostPage{
		Site: a.Config,
		Meta: PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: rendered.Abstract,
			URL:         AbsoluteURL(a.Config.URL, PostPath(post)),
			OGType:      "article",
		},
		Post:     post,
		Rendered: rendered,
		Nav:      v.Navigate(post),
		Related:  v.Related(post, 3),
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	v, err := a.view(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, v)
}

func (a *App) handleFeed(c echo.Context) error {
	v, err := a.view(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, v.FeedItemsWithAbstract(a.Config.FeedSize, a.Config.AbstractLength))
}

func (a *App) handleSearch(c echo.Context) error {
	if a.Search == nil {
		return echo.ErrNotFound
	}
	if !a.searchLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many searches, slow down")
	}
	v, err := a.view(c)
	if err != nil {
		return err
	}
	q := c.QueryParam("q")
	hits, err := a.Search.Query(q, 20)
	if err != nil {
		// bleve rejects malformed query strings; show them no hits
		a.Log.Debug("search_query_rejected", zap.String("q", q), zap.Error(err))
		hits = nil
	}
	visible := hits[:0]
	for _, h := range hits {
		p, err := v.ResolvePath(h.URL)
		if err != nil || !v.public(p) {
			continue
		}
		visible = append(visible, h)
	}
	return Render(c, a.Views.Search(SearchPage{
		Site: a.Config,
		Meta: PageMeta{
			Title:       "Search | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         AbsoluteURL(a.Config.URL, "/search"),
			OGType:      "website",
		},
		Query: q,
		Hits:  visible,
	}))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if errors.Is(err, ErrNotFound) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server_error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
		)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
