package blog

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/forner/blog/logger"
)

// SiteConfig holds all configuration for a blog site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/blog.db")

	PostCacheTTL   time.Duration `mapstructure:"post_cache_ttl"`  // Snapshot cache TTL (default 5min)
	IndexSize      int           `mapstructure:"index_size"`      // Posts on the home page (default 10)
	FeedSize       int           `mapstructure:"feed_size"`       // Items in feed.xml (default 20)
	AbstractLength int           `mapstructure:"abstract_length"` // Abstract target in runes (default 500)

	// HideScheduled keeps posts dated in the future out of listings until
	// their publication instant passes.
	HideScheduled bool `mapstructure:"hide_scheduled"`
	// TagDrafts is "include" (default) or "exclude".
	TagDrafts string `mapstructure:"tag_drafts"`

	SearchEnabled   bool `mapstructure:"search_enabled"`
	SearchRateLimit int  `mapstructure:"search_rate_limit"` // Queries per IP per minute (default 30)

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects the logger mode and its rotating file.
type LogConfig struct {
	Mode       string `mapstructure:"mode"` // "debug" logs to stdout
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Options converts c to logger options.
func (c LogConfig) Options() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.IndexSize <= 0 {
		c.IndexSize = 10
	}
	if c.FeedSize <= 0 {
		c.FeedSize = 20
	}
	if c.AbstractLength <= 0 {
		c.AbstractLength = 500
	}
	if c.TagDrafts == "" {
		c.TagDrafts = "include"
	}
	if c.SearchRateLimit <= 0 {
		c.SearchRateLimit = 30
	}
}

// viewOptions maps the config onto View options.
func (c SiteConfig) viewOptions() []ViewOption {
	if strings.EqualFold(c.TagDrafts, "exclude") {
		return []ViewOption{WithTagDraftPolicy(ExcludeDrafts)}
	}
	return nil
}

// LoadConfig reads the YAML, TOML or JSON file at path (optional) and
// overlays BLOG_* environment variables, e.g. BLOG_LOG_MODE for log.mode.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_path", "data/blog.db")
	v.SetDefault("post_cache_ttl", "5m")
	v.SetDefault("index_size", 10)
	v.SetDefault("feed_size", 20)
	v.SetDefault("abstract_length", 500)
	v.SetDefault("hide_scheduled", false)
	v.SetDefault("tag_drafts", "include")
	v.SetDefault("search_enabled", true)
	v.SetDefault("search_rate_limit", 30)
	v.SetDefault("log.mode", "release")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "blog.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("blog: read config %s: %w", path, err)
		}
		logger.Z().Info("config_file_loaded", zap.String("file", v.ConfigFileUsed()))
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("blog: parse config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the global logger for this App.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithStore makes the App use an already opened store instead of opening
// Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
