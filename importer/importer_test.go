package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forner/blog"
)

func TestParse(t *testing.T) {
	src := []byte(`---
title: Hello World
author: ana
category: Notes
tags: [go, " sqlite ", ""]
date: 2024-03-07T09:00:00Z
draft: false
---

# Hello

Body text.
`)
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Hello World" || doc.Author != "ana" || doc.Category != "Notes" {
		t.Errorf("Parse = %+v", doc)
	}
	if len(doc.Tags) != 2 || doc.Tags[0] != "go" || doc.Tags[1] != "sqlite" {
		t.Errorf("Tags = %q, want [go sqlite]", doc.Tags)
	}
	if want := time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC); !doc.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", doc.Date, want)
	}
	if doc.Draft {
		t.Error("Draft should be false")
	}
	if doc.Body != "# Hello\n\nBody text." {
		t.Errorf("Body = %q", doc.Body)
	}
}

func TestParseDraftDefaultsToTrue(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Draft\n---\nbody\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.Draft {
		t.Error("Draft should default to true")
	}
}

func TestParseTOML(t *testing.T) {
	doc, err := Parse([]byte("+++\ntitle = \"From TOML\"\ndraft = false\n+++\nbody\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "From TOML" || doc.Draft {
		t.Errorf("Parse = %+v", doc)
	}
}

func TestParseRequiresTitle(t *testing.T) {
	for _, src := range []string{
		"---\nauthor: ana\n---\nbody\n",
		"no front matter at all\n",
	} {
		if _, err := Parse([]byte(src)); !errors.Is(err, ErrTitleMissing) {
			t.Errorf("Parse(%q) err = %v, want ErrTitleMissing", src, err)
		}
	}
}

func newStore(t *testing.T) *blog.Store {
	t.Helper()
	s, err := blog.NewStore(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportDir(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "---\ntitle: First Post\ncategory: Notes\ntags: [go]\ndate: 2024-03-07T09:00:00Z\ndraft: false\n---\nHello\n")
	writeFile(t, dir, "nested/b.md", "---\ntitle: Second Post\ntags: [go, sqlite]\ndate: 2024-03-08T09:00:00Z\ndraft: false\n---\nWorld\n")
	writeFile(t, dir, "broken.md", "---\nauthor: nobody\n---\nno title\n")
	writeFile(t, dir, "notes.txt", "ignored")

	res, err := New(store, nil).ImportDir(ctx, dir)
	if err == nil {
		t.Error("ImportDir should report the broken file")
	}
	if res.Created != 2 || res.Updated != 0 || res.Failed != 1 {
		t.Errorf("Result = %+v, want 2 created and 1 failed", res)
	}

	c, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	v := blog.NewView(c)
	first, err := v.ResolvePath("/2024/03/07/First_Post")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if first.Category == nil || first.Category.Name != "Notes" {
		t.Errorf("Category = %+v, want Notes", first.Category)
	}
	second, err := v.ResolvePath("/2024/03/08/Second_Post")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if second.Category == nil || second.Category.Name != DefaultCategory {
		t.Errorf("Category = %+v, want %s", second.Category, DefaultCategory)
	}
	if len(c.Tags) != 2 {
		t.Errorf("got %d tags, want go and sqlite shared", len(c.Tags))
	}
	tagged, err := v.LatestWithTag("go")
	if err != nil || len(tagged) != 2 {
		t.Errorf("LatestWithTag(go) = %d posts, %v", len(tagged), err)
	}
}

func TestImportFileUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "post.md", "---\ntitle: Evolving\ndate: 2024-05-01T10:00:00Z\n---\nfirst draft\n")

	im := New(store, nil)
	created, err := im.ImportFile(ctx, path)
	if err != nil || !created {
		t.Fatalf("first import = %v, %v; want created", created, err)
	}
	writeFile(t, dir, "post.md", "---\ntitle: Evolving\ndate: 2024-05-01T10:00:00Z\ndraft: false\n---\nfinal text\n")
	created, err = im.ImportFile(ctx, path)
	if err != nil || created {
		t.Fatalf("second import = %v, %v; want update", created, err)
	}

	c, _ := store.Snapshot(ctx)
	if len(c.Posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(c.Posts))
	}
	if c.Posts[0].Body != "final text" || c.Posts[0].Draft {
		t.Errorf("post = %+v, want the updated published body", c.Posts[0])
	}
}

func TestImportFileWithoutDateUsesNow(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	path := writeFile(t, t.TempDir(), "undated.md", "---\ntitle: Undated\n---\nbody\n")

	im := New(store, nil)
	fixed := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	im.now = func() time.Time { return fixed }
	if _, err := im.ImportFile(ctx, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	c, _ := store.Snapshot(ctx)
	if len(c.Posts) != 1 || !c.Posts[0].PubDate.Equal(fixed) {
		t.Errorf("posts = %+v, want one dated %v", c.Posts, fixed)
	}
	if !c.Posts[0].Draft {
		t.Error("undated post without draft flag should be a draft")
	}
}
