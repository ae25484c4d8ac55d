// Package importer loads markdown files with front matter into a blog store.
//
// A file looks like:
//
//	---
//	title: Hello World
//	author: ana
//	category: Notes
//	tags: [go, sqlite]
//	date: 2024-03-07T09:00:00Z
//	draft: false
//	---
//	# Hello
//
// YAML, TOML (+++) and JSON (;;;) front matter are accepted. A post without
// an explicit draft flag is imported as a draft.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"

	"github.com/forner/blog"
)

// DefaultCategory is used for files that name no category.
const DefaultCategory = "General"

// ErrTitleMissing is returned for a file whose front matter has no title.
var ErrTitleMissing = errors.New("importer: front matter title is required")

// Document is a parsed markdown file.
type Document struct {
	Title    string
	Author   string
	Category string
	Tags     []string
	Date     time.Time
	Draft    bool
	Body     string
}

type frontMatter struct {
	Title    string    `yaml:"title" toml:"title" json:"title"`
	Author   string    `yaml:"author" toml:"author" json:"author"`
	Category string    `yaml:"category" toml:"category" json:"category"`
	Tags     []string  `yaml:"tags" toml:"tags" json:"tags"`
	Date     time.Time `yaml:"date" toml:"date" json:"date"`
	Draft    *bool     `yaml:"draft" toml:"draft" json:"draft"`
}

// Parse extracts the front matter and markdown body from src.
func Parse(src []byte) (Document, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return Document{}, fmt.Errorf("importer: parse front matter: %w", err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return Document{}, ErrTitleMissing
	}
	doc := Document{
		Title:    strings.TrimSpace(meta.Title),
		Author:   strings.TrimSpace(meta.Author),
		Category: strings.TrimSpace(meta.Category),
		Date:     meta.Date,
		Draft:    true,
		Body:     strings.TrimSpace(string(body)),
	}
	if meta.Draft != nil {
		doc.Draft = *meta.Draft
	}
	for _, t := range meta.Tags {
		if t = strings.TrimSpace(t); t != "" {
			doc.Tags = append(doc.Tags, t)
		}
	}
	return doc, nil
}

// Result summarizes an import run.
type Result struct {
	Created int
	Updated int
	Failed  int
}

// Importer writes parsed documents to a store.
type Importer struct {
	store *blog.Store
	log   *zap.Logger
	now   func() time.Time
}

// New returns an Importer writing to store.
func New(store *blog.Store, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{store: store, log: log, now: time.Now}
}

// ImportDir imports every *.md file under dir, in lexical path order. A
// file that fails is logged and skipped; the failures are joined into the
// returned error.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Result, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("importer: walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	view, err := im.view(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		res  Result
		errs []error
	)
	for _, path := range paths {
		created, err := im.importFile(ctx, view, path)
		switch {
		case err != nil:
			res.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			im.log.Warn("import_failed", zap.String("file", path), zap.Error(err))
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	im.log.Info("import_done",
		zap.String("dir", dir),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed),
	)
	return res, errors.Join(errs...)
}

// ImportFile imports a single file. It reports whether a new post was
// created rather than an existing one updated.
func (im *Importer) ImportFile(ctx context.Context, path string) (bool, error) {
	view, err := im.view(ctx)
	if err != nil {
		return false, err
	}
	return im.importFile(ctx, view, path)
}

func (im *Importer) view(ctx context.Context) (*blog.View, error) {
	c, err := im.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	return blog.NewView(c), nil
}

// importFile saves the post found at path. A post already published on
// the same day under the same slug is updated in place; its existing tags
// are kept and the file's tags are added.
func (im *Importer) importFile(ctx context.Context, view *blog.View, path string) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	doc, err := Parse(src)
	if err != nil {
		return false, err
	}
	if doc.Date.IsZero() {
		doc.Date = im.now()
	}
	if doc.Category == "" {
		doc.Category = DefaultCategory
	}

	cat, err := im.store.EnsureCategory(ctx, doc.Category)
	if err != nil {
		return false, err
	}
	post := blog.Post{
		Author:     doc.Author,
		Title:      doc.Title,
		Body:       doc.Body,
		CategoryID: cat.ID,
		PubDate:    doc.Date,
		Draft:      doc.Draft,
	}
	d := doc.Date
	existing, err := view.Resolve(d.Year(), int(d.Month()), d.Day(), blog.Slugify(doc.Title))
	created := err != nil
	if !created {
		post.ID = existing.ID
	}
	if post, err = im.store.SavePost(ctx, post); err != nil {
		return false, err
	}
	for _, name := range doc.Tags {
		tag, err := im.store.EnsureTag(ctx, name)
		if err != nil {
			return false, err
		}
		if err := im.store.TagPost(ctx, post.ID, tag.ID); err != nil {
			return false, err
		}
	}
	im.log.Debug("imported",
		zap.String("file", path),
		zap.Int64("post_id", post.ID),
		zap.String("url", post.URL()),
		zap.Bool("created", created),
	)
	return created, nil
}
