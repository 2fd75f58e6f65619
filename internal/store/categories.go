package store

import (
	"context"
	"fmt"
	"strings"

	"ministry-site/internal/content"
)

const categoryColumns = `id, name, slug, description, created_at`

func scanCategory(row scanner) (Category, error) {
	var c Category
	var created int64
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &created); err != nil {
		return Category{}, translate(err)
	}
	c.CreatedAt = fromMilli(created)
	return c, nil
}

// slugTaken reports whether slug is used in table by a row other than excludeID.
func (d *DB) slugTaken(ctx context.Context, table, excludeID string) func(string) (bool, error) {
	return func(slug string) (bool, error) {
		var n int
		err := d.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE slug = ? AND id <> ?`, slug, excludeID,
		).Scan(&n)
		return n > 0, err
	}
}

func (d *DB) uniqueSlug(ctx context.Context, table, id, slug, title string) (string, error) {
	base := content.Slugify(slug)
	if base == "" {
		base = content.Slugify(title)
	}
	s, err := content.UniqueSlug(base, d.slugTaken(ctx, table, id))
	if err != nil {
		return "", fmt.Errorf("slug lookup: %w", err)
	}
	return s, nil
}

func (d *DB) CreateCategory(ctx context.Context, c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	c.ID = newID()
	c.CreatedAt = d.stamp()

	slug, err := d.uniqueSlug(ctx, "categories", c.ID, c.Slug, c.Name)
	if err != nil {
		return Category{}, err
	}
	c.Slug = slug

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO categories(`+categoryColumns+`) VALUES (?,?,?,?,?)`,
		c.ID, c.Name, c.Slug, c.Description, unixMilli(c.CreatedAt),
	)
	if err != nil {
		return Category{}, translate(err)
	}
	return c, nil
}

func (d *DB) GetCategory(ctx context.Context, id string) (Category, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (d *DB) ListCategories(ctx context.Context, q Query) ([]Category, error) {
	var w where
	w.search(q.Search, "name", "description")

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories`+w.String()+
			orderBy(q.Sort, []string{"name", "slug", "created_at"}, "name ASC")+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory replaces the editable fields of c.ID.
func (d *DB) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	existing, err := d.GetCategory(ctx, c.ID)
	if err != nil {
		return Category{}, err
	}

	slug, err := d.uniqueSlug(ctx, "categories", c.ID, c.Slug, c.Name)
	if err != nil {
		return Category{}, err
	}
	c.Slug = slug
	c.CreatedAt = existing.CreatedAt

	err = affected(d.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.ID,
	))
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func (d *DB) DeleteCategory(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id))
}
