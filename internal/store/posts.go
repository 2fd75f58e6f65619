package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ministry-site/internal/content"
)

const postColumns = `id, title, slug, excerpt, content, format, cover_image, category_id, author,
	published, published_at, created_at, updated_at`

// ExcerptLength is the length of generated post excerpts.
const ExcerptLength = 160

func scanPost(row scanner) (Post, error) {
	var (
		p                Post
		category         sql.NullString
		published        int
		publishedAt      sql.NullInt64
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Format, &p.CoverImage,
		&category, &p.Author, &published, &publishedAt, &created, &updated)
	if err != nil {
		return Post{}, translate(err)
	}
	p.CategoryID = category.String
	p.Published = published != 0
	p.PublishedAt = fromNullMilli(publishedAt)
	p.CreatedAt = fromMilli(created)
	p.UpdatedAt = fromMilli(updated)
	return p, nil
}

// preparePost validates p and fills derived fields.
func (d *DB) preparePost(ctx context.Context, p *Post) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: post title is required", ErrInvalid)
	}
	if p.Format == "" {
		p.Format = string(content.FormatMarkdown)
	}
	if !content.Format(p.Format).Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalid, p.Format)
	}
	if strings.TrimSpace(p.Excerpt) == "" {
		p.Excerpt = content.Excerpt(content.Format(p.Format), p.Content, ExcerptLength)
	}

	slug, err := d.uniqueSlug(ctx, "posts", p.ID, p.Slug, p.Title)
	if err != nil {
		return err
	}
	p.Slug = slug
	return nil
}

// CreatePost inserts p. The slug is derived from the title when empty and
// suffixed until unique.
func (d *DB) CreatePost(ctx context.Context, p Post) (Post, error) {
	p.ID = newID()
	if err := d.preparePost(ctx, &p); err != nil {
		return Post{}, err
	}
	now := d.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Published && p.PublishedAt == nil {
		p.PublishedAt = &now
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO posts(`+postColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Format, p.CoverImage,
		nullString(p.CategoryID), p.Author, boolToInt(p.Published), nullUnixMilli(p.PublishedAt),
		unixMilli(p.CreatedAt), unixMilli(p.UpdatedAt),
	)
	if err != nil {
		return Post{}, translate(err)
	}
	return p, nil
}

func (d *DB) GetPost(ctx context.Context, id string) (Post, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return scanPost(row)
}

// GetPostBySlug returns the post with slug. When publishedOnly is set drafts are not found.
func (d *DB) GetPostBySlug(ctx context.Context, slug string, publishedOnly bool) (Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = ?`
	if publishedOnly {
		query += ` AND published = 1`
	}
	return scanPost(d.db.QueryRowContext(ctx, query, slug))
}

func (d *DB) ListPosts(ctx context.Context, q Query) ([]Post, error) {
	var w where
	w.search(q.Search, "title", "excerpt", "content")
	if q.CategoryID != "" {
		w.add("category_id = ?", q.CategoryID)
	}
	if q.Published != nil {
		w.add("published = ?", boolToInt(*q.Published))
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts`+w.String()+
			orderBy(q.Sort, []string{"title", "published_at", "created_at", "updated_at"},
				"COALESCE(published_at, created_at) DESC, rowid DESC")+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePost replaces the editable fields of p.ID. Publishing a draft stamps
// published_at once; unpublishing keeps the original date.
func (d *DB) UpdatePost(ctx context.Context, p Post) (Post, error) {
	existing, err := d.GetPost(ctx, p.ID)
	if err != nil {
		return Post{}, err
	}
	if err := d.preparePost(ctx, &p); err != nil {
		return Post{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = d.stamp()
	if p.PublishedAt == nil {
		p.PublishedAt = existing.PublishedAt
	}
	if p.Published && p.PublishedAt == nil {
		now := p.UpdatedAt
		p.PublishedAt = &now
	}

	err = affected(d.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, format = ?, cover_image = ?,
		  category_id = ?, author = ?, published = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, p.Format, p.CoverImage,
		nullString(p.CategoryID), p.Author, boolToInt(p.Published), nullUnixMilli(p.PublishedAt),
		unixMilli(p.UpdatedAt), p.ID,
	))
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (d *DB) DeletePost(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id))
}
