// Package blog is a date-addressed blog engine built with Go, Echo, and templ.
// It resolves /YYYY/MM/DD/slug paths, lists posts by date, category and tag,
// navigates between neighbours and renders markdown bodies, with RSS, sitemap
// and full-text search on top.
//
// Users provide their own templ components via the ViewFuncs struct; the
// views package ships a plain default set.
package blog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/forner/blog/logger"
	"github.com/forner/blog/search"
)

// ViewFuncs holds user-provided templ components that the server calls when
// rendering pages.
type ViewFuncs struct {
	List        func(page ListPage) templ.Component
	Post        func(page PostPage) templ.Component
	Search      func(page SearchPage) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// ListPage is the model for every post listing: home, date archives,
// categories and tags.
type ListPage struct {
	Site       SiteConfig
	Meta       PageMeta
	Heading    string
	Posts      []ListedPost
	Categories []Category
	Tags       []Tag
}

// ListedPost is a post with its abstract, as shown in listings.
type ListedPost struct {
	Post     Post
	Abstract string
}

// PostPage is the model for a single post.
type PostPage struct {
	Site     SiteConfig
	Meta     PageMeta
	Post     Post
	Rendered RenderedPost
	Nav      Navigation
	Related  []Post
}

// SearchPage is the model for /search.
type SearchPage struct {
	Site  SiteConfig
	Meta  PageMeta
	Query string
	Hits  []search.Hit
}

// App wires together the store, snapshot cache, search index, handlers,
// middleware and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ViewCache
	Search *search.Index
	Views  ViewFuncs
	Log    *zap.Logger

	searchLimiter *RequestLimiter
	customRoutes  []func(*App)
	staticDir     string
	ownsStore     bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		a.Log = logger.Z()
	}
	return a
}

// Setup opens the store, builds the cache and search index, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Setup() error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("blog: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	a.Cache = NewViewCache(a.Store, a.Config.PostCacheTTL, a.Config.viewOptions()...)

	if a.Config.SearchEnabled {
		idx, err := search.New()
		if err != nil {
			return fmt.Errorf("blog: init search: %w", err)
		}
		a.Search = idx
		a.searchLimiter = NewRequestLimiter(a.Config.SearchRateLimit, time.Minute)
		a.Cache.OnLoad(a.reindex)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start runs Setup and serves until the server stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Log.Info("server_start", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/search", a.handleSearch)
	e.GET("/tag/:name", a.handleTag)
	e.GET("/category/:name", a.handleCategory)

	e.GET("/", a.handleIndex)
	e.GET("/:year", a.handleYear)
	e.GET("/:year/:month", a.handleMonth)
	e.GET("/:year/:month/:day", a.handleDay)
	e.GET("/:year/:month/:day/:slug", a.handlePost)
}

// reindex rebuilds the search index from a freshly loaded view.
func (a *App) reindex(v *View) {
	posts := v.Latest(0)
	docs := make([]search.Document, 0, len(posts))
	for _, p := range posts {
		doc := search.Document{
			ID:    strconv.FormatInt(p.ID, 10),
			Title: p.Title,
			Body:  p.Body,
			URL:   PostPath(p),
		}
		if p.Category != nil {
			doc.Category = p.Category.Name
		}
		for _, t := range p.Tags {
			doc.Tags = append(doc.Tags, t.Name)
		}
		docs = append(docs, doc)
	}
	if err := a.Search.Build(docs); err != nil {
		a.Log.Error("search_reindex_failed", zap.Error(err))
		return
	}
	a.Log.Debug("search_reindexed", zap.Int("documents", len(docs)))
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.searchLimiter != nil {
		a.searchLimiter.Close()
	}
	if a.Search != nil {
		a.Search.Close()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
