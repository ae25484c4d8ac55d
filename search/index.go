// Package search keeps an in-memory full-text index of published posts.
package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Document is one indexed post.
type Document struct {
	ID       string
	Title    string
	Body     string
	Category string
	Tags     []string
	URL      string
}

// Hit is one search result.
type Hit struct {
	ID        string
	Title     string
	URL       string
	Score     float64
	Fragments map[string][]string // highlighted snippets keyed by field
}

// Index wraps a memory-only bleve index that is rebuilt wholesale whenever
// the post snapshot changes.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// New returns an empty index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("search: create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	title := bleve.NewTextFieldMapping()
	title.Analyzer = "en"

	url := bleve.NewTextFieldMapping()
	url.Index = false
	url.IncludeInAll = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("Title", title)
	doc.AddFieldMappingsAt("Body", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("Category", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("URL", url)

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("_default", doc)
	return m
}

// Build replaces the index contents with docs. Readers keep using the old
// index until the new one is complete.
func (i *Index) Build(docs []Document) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	batch := fresh.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.ID, d); err != nil {
			fresh.Close()
			return fmt.Errorf("search: batch index %s: %w", d.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("search: commit batch: %w", err)
	}

	i.mu.Lock()
	old := i.index
	i.index = fresh
	i.mu.Unlock()
	return old.Close()
}

// Query runs a bleve query string (quotes, +/-, field:term) and returns at
// most limit hits, best first. A blank query has no hits.
func (i *Index) Query(q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Title", "URL"}

	i.mu.RLock()
	res, err := i.index.Search(req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: query %q: %w", q, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score, Fragments: h.Fragments}
		if s, ok := h.Fields["Title"].(string); ok {
			hit.Title = s
		}
		if s, ok := h.Fields["URL"].(string); ok {
			hit.URL = s
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}
