package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const socialColumns = `id, platform, url, icon, position, active`

func scanSocial(row scanner) (SocialLink, error) {
	var (
		s      SocialLink
		active int
	)
	if err := row.Scan(&s.ID, &s.Platform, &s.URL, &s.Icon, &s.Position, &active); err != nil {
		return SocialLink{}, translate(err)
	}
	s.Active = active != 0
	return s, nil
}

func validateSocial(s *SocialLink) error {
	s.Platform = strings.TrimSpace(s.Platform)
	s.URL = strings.TrimSpace(s.URL)
	if s.Platform == "" || s.URL == "" {
		return fmt.Errorf("%w: platform and url are required", ErrInvalid)
	}
	return nil
}

// CreateSocialLink appends s after the last link.
func (d *DB) CreateSocialLink(ctx context.Context, s SocialLink) (SocialLink, error) {
	if err := validateSocial(&s); err != nil {
		return SocialLink{}, err
	}
	s.ID = newID()

	err := d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM social_links`).Scan(&s.Position)
	if err != nil {
		return SocialLink{}, err
	}

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO social_links(`+socialColumns+`) VALUES (?,?,?,?,?,?)`,
		s.ID, s.Platform, s.URL, s.Icon, s.Position, boolToInt(s.Active),
	)
	if err != nil {
		return SocialLink{}, translate(err)
	}
	return s, nil
}

func (d *DB) GetSocialLink(ctx context.Context, id string) (SocialLink, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+socialColumns+` FROM social_links WHERE id = ?`, id)
	return scanSocial(row)
}

// ListSocialLinks returns links in display order.
func (d *DB) ListSocialLinks(ctx context.Context, q Query) ([]SocialLink, error) {
	var w where
	if q.Active != nil {
		w.add("active = ?", boolToInt(*q.Active))
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+socialColumns+` FROM social_links`+w.String()+` ORDER BY position ASC, rowid ASC`+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SocialLink{}
	for rows.Next() {
		s, err := scanSocial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSocialLink edits everything but the position of s.ID.
func (d *DB) UpdateSocialLink(ctx context.Context, s SocialLink) (SocialLink, error) {
	if err := validateSocial(&s); err != nil {
		return SocialLink{}, err
	}
	existing, err := d.GetSocialLink(ctx, s.ID)
	if err != nil {
		return SocialLink{}, err
	}
	s.Position = existing.Position

	err = affected(d.db.ExecContext(ctx,
		`UPDATE social_links SET platform = ?, url = ?, icon = ?, active = ? WHERE id = ?`,
		s.Platform, s.URL, s.Icon, boolToInt(s.Active), s.ID,
	))
	if err != nil {
		return SocialLink{}, err
	}
	return s, nil
}

func (d *DB) DeleteSocialLink(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM social_links WHERE id = ?`, id))
}

// MoveSocialLink swaps id with its neighbour above (delta < 0) or below
// (delta > 0). Moving past either end leaves the order unchanged.
func (d *DB) MoveSocialLink(ctx context.Context, id string, delta int) ([]SocialLink, error) {
	if delta == 0 {
		return d.ListSocialLinks(ctx, Query{})
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var pos int
	err = tx.QueryRowContext(ctx, `SELECT position FROM social_links WHERE id = ?`, id).Scan(&pos)
	if err != nil {
		return nil, translate(err)
	}

	neighbour := `SELECT id, position FROM social_links WHERE position > ? ORDER BY position ASC LIMIT 1`
	if delta < 0 {
		neighbour = `SELECT id, position FROM social_links WHERE position < ? ORDER BY position DESC LIMIT 1`
	}
	var otherID string
	var otherPos int
	err = tx.QueryRowContext(ctx, neighbour, pos).Scan(&otherID, &otherPos)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE social_links SET position = ? WHERE id = ?`, otherPos, id); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE social_links SET position = ? WHERE id = ?`, pos, otherID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return d.ListSocialLinks(ctx, Query{})
}
