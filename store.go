package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const pubDateLayout = time.RFC3339Nano

// Store wraps a SQLite database holding categories, tags, posts and the
// post/tag join. It is the storage collaborator behind View: the engine
// only ever sees the Collection returned by Snapshot.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers continue while the importer writes; busy_timeout
	// makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    author TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    category_id INTEGER NOT NULL,
    pub_date TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS post_tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    UNIQUE (post_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date);
CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag_id);
`)
	return err
}

// SaveCategory inserts c when its ID is zero and renames it otherwise.
func (s *Store) SaveCategory(ctx context.Context, c Category) (Category, error) {
	id, err := s.saveNamed(ctx, "categories", c.ID, c.Name)
	if err != nil {
		return Category{}, fmt.Errorf("blog: save category %q: %w", c.Name, err)
	}
	c.ID = id
	return c, nil
}

// SaveTag inserts t when its ID is zero and renames it otherwise.
func (s *Store) SaveTag(ctx context.Context, t Tag) (Tag, error) {
	id, err := s.saveNamed(ctx, "tags", t.ID, t.Name)
	if err != nil {
		return Tag{}, fmt.Errorf("blog: save tag %q: %w", t.Name, err)
	}
	t.ID = id
	return t, nil
}

func (s *Store) saveNamed(ctx context.Context, table string, id int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("name is required")
	}
	if id == 0 {
		res, err := s.db.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES (?)`, name)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	res, err := s.db.ExecContext(ctx, `UPDATE `+table+` SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	return id, nil
}

// EnsureCategory returns the category named name, creating it if needed.
// Names are compared by slug, the same way public URLs resolve them.
func (s *Store) EnsureCategory(ctx context.Context, name string) (Category, error) {
	id, err := s.findNamed(ctx, "categories", name)
	if err != nil {
		return Category{}, fmt.Errorf("blog: find category %q: %w", name, err)
	}
	if id != 0 {
		return Category{ID: id, Name: strings.TrimSpace(name)}, nil
	}
	return s.SaveCategory(ctx, Category{Name: name})
}

// EnsureTag returns the tag named name, creating it if needed.
func (s *Store) EnsureTag(ctx context.Context, name string) (Tag, error) {
	id, err := s.findNamed(ctx, "tags", name)
	if err != nil {
		return Tag{}, fmt.Errorf("blog: find tag %q: %w", name, err)
	}
	if id != 0 {
		return Tag{ID: id, Name: strings.TrimSpace(name)}, nil
	}
	return s.SaveTag(ctx, Tag{Name: name})
}

func (s *Store) findNamed(ctx context.Context, table, name string) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+table+` ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	want := Slugify(strings.TrimSpace(name))
	for rows.Next() {
		var (
			id int64
			n  string
		)
		if err := rows.Scan(&id, &n); err != nil {
			return 0, err
		}
		if Slugify(n) == want {
			return id, nil
		}
	}
	return 0, rows.Err()
}

// SavePost inserts p when its ID is zero and updates it otherwise. Tags are
// not touched; use TagPost.
func (s *Store) SavePost(ctx context.Context, p Post) (Post, error) {
	draft := 0
	if p.Draft {
		draft = 1
	}
	date := p.PubDate.Format(pubDateLayout)
	if p.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO posts (author, title, body, category_id, pub_date, draft) VALUES (?, ?, ?, ?, ?, ?)`,
			p.Author, p.Title, p.Body, p.CategoryID, date, draft)
		if err != nil {
			return Post{}, fmt.Errorf("blog: insert post %q: %w", p.Title, err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return Post{}, fmt.Errorf("blog: insert post %q: %w", p.Title, err)
		}
		return p, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET author = ?, title = ?, body = ?, category_id = ?, pub_date = ?, draft = ? WHERE id = ?`,
		p.Author, p.Title, p.Body, p.CategoryID, date, draft, p.ID)
	if err != nil {
		return Post{}, fmt.Errorf("blog: update post %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Post{}, fmt.Errorf("blog: update post %d: %w", p.ID, ErrNotFound)
	}
	return p, nil
}

// TagPost attaches a tag to a post. Tagging twice is a no-op.
func (s *Store) TagPost(ctx context.Context, postID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID)
	if err != nil {
		return fmt.Errorf("blog: tag post %d with %d: %w", postID, tagID, err)
	}
	return nil
}

// DeletePost removes a post and its tag joins.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("blog: delete post %d tags: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("blog: delete post %d: %w", id, err)
	}
	return tx.Commit()
}

// Snapshot reads every record in a single read transaction.
func (s *Store) Snapshot(ctx context.Context) (Collection, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return Collection{}, fmt.Errorf("blog: snapshot: %w", err)
	}
	defer tx.Rollback()

	var c Collection
	if err := queryRows(ctx, tx, `SELECT id, name FROM categories ORDER BY id`, func(rows *sql.Rows) error {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return err
		}
		c.Categories = append(c.Categories, cat)
		return nil
	}); err != nil {
		return Collection{}, fmt.Errorf("blog: snapshot categories: %w", err)
	}
	if err := queryRows(ctx, tx, `SELECT id, name FROM tags ORDER BY id`, func(rows *sql.Rows) error {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return err
		}
		c.Tags = append(c.Tags, t)
		return nil
	}); err != nil {
		return Collection{}, fmt.Errorf("blog: snapshot tags: %w", err)
	}
	if err := queryRows(ctx, tx, `SELECT id, author, title, body, category_id, pub_date, draft FROM posts ORDER BY id`, func(rows *sql.Rows) error {
		var (
			p     Post
			date  string
			draft int
		)
		if err := rows.Scan(&p.ID, &p.Author, &p.Title, &p.Body, &p.CategoryID, &date, &draft); err != nil {
			return err
		}
		t, err := time.Parse(pubDateLayout, date)
		if err != nil {
			return fmt.Errorf("post %d pub_date %q: %w", p.ID, date, err)
		}
		p.PubDate = t
		p.Draft = draft == 1
		c.Posts = append(c.Posts, p)
		return nil
	}); err != nil {
		return Collection{}, fmt.Errorf("blog: snapshot posts: %w", err)
	}
	if err := queryRows(ctx, tx, `SELECT id, post_id, tag_id FROM post_tags ORDER BY id`, func(rows *sql.Rows) error {
		var pt PostTag
		if err := rows.Scan(&pt.ID, &pt.PostID, &pt.TagID); err != nil {
			return err
		}
		c.PostTags = append(c.PostTags, pt)
		return nil
	}); err != nil {
		return Collection{}, fmt.Errorf("blog: snapshot post tags: %w", err)
	}
	return c, nil
}

func queryRows(ctx context.Context, tx *sql.Tx, query string, scan func(*sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
