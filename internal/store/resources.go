package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const resourceColumns = `id, title, description, kind, url, thumbnail, category_id, duration_seconds,
	published, created_at, updated_at`

var resourceKinds = []string{KindAudio, KindVideo, KindDocument, KindLink}

func scanResource(row scanner) (Resource, error) {
	var (
		r                Resource
		category         sql.NullString
		published        int
		created, updated int64
	)
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Kind, &r.URL, &r.Thumbnail, &category,
		&r.DurationSeconds, &published, &created, &updated)
	if err != nil {
		return Resource{}, translate(err)
	}
	r.CategoryID = category.String
	r.Published = published != 0
	r.CreatedAt = fromMilli(created)
	r.UpdatedAt = fromMilli(updated)
	return r, nil
}

func validateResource(r *Resource) error {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	switch {
	case r.Title == "":
		return fmt.Errorf("%w: resource title is required", ErrInvalid)
	case r.URL == "":
		return fmt.Errorf("%w: resource url is required", ErrInvalid)
	case !lo.Contains(resourceKinds, r.Kind):
		return fmt.Errorf("%w: unknown resource kind %q", ErrInvalid, r.Kind)
	case r.DurationSeconds < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	return nil
}

func (d *DB) CreateResource(ctx context.Context, r Resource) (Resource, error) {
	if err := validateResource(&r); err != nil {
		return Resource{}, err
	}
	r.ID = newID()
	now := d.stamp()
	r.CreatedAt, r.UpdatedAt = now, now

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO resources(`+resourceColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Title, r.Description, r.Kind, r.URL, r.Thumbnail, nullString(r.CategoryID),
		r.DurationSeconds, boolToInt(r.Published), unixMilli(r.CreatedAt), unixMilli(r.UpdatedAt),
	)
	if err != nil {
		return Resource{}, translate(err)
	}
	return r, nil
}

func (d *DB) GetResource(ctx context.Context, id string) (Resource, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

func (d *DB) ListResources(ctx context.Context, q Query) ([]Resource, error) {
	var w where
	w.search(q.Search, "title", "description")
	if q.Kind != "" {
		w.add("kind = ?", q.Kind)
	}
	if q.CategoryID != "" {
		w.add("category_id = ?", q.CategoryID)
	}
	if q.Published != nil {
		w.add("published = ?", boolToInt(*q.Published))
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources`+w.String()+
			orderBy(q.Sort, []string{"title", "kind", "created_at", "updated_at", "duration_seconds"},
				"created_at DESC, rowid DESC")+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resource{}
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) UpdateResource(ctx context.Context, r Resource) (Resource, error) {
	if err := validateResource(&r); err != nil {
		return Resource{}, err
	}
	existing, err := d.GetResource(ctx, r.ID)
	if err != nil {
		return Resource{}, err
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = d.stamp()

	err = affected(d.db.ExecContext(ctx, `
		UPDATE resources SET title = ?, description = ?, kind = ?, url = ?, thumbnail = ?,
		  category_id = ?, duration_seconds = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		r.Title, r.Description, r.Kind, r.URL, r.Thumbnail, nullString(r.CategoryID),
		r.DurationSeconds, boolToInt(r.Published), unixMilli(r.UpdatedAt), r.ID,
	))
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

func (d *DB) DeleteResource(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id))
}
