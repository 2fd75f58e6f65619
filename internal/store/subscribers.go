package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

const subscriberColumns = `id, email, name, active, subscribed_at, unsubscribed_at`

func scanSubscriber(row scanner) (Subscriber, error) {
	var (
		s            Subscriber
		active       int
		subscribed   int64
		unsubscribed sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &active, &subscribed, &unsubscribed); err != nil {
		return Subscriber{}, translate(err)
	}
	s.Active = active != 0
	s.SubscribedAt = fromMilli(subscribed)
	s.UnsubscribedAt = fromNullMilli(unsubscribed)
	return s, nil
}

// NormalizeEmail lowercases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", ErrInvalid, email)
	}
	return email, nil
}

// Subscribe adds email to the newsletter or reactivates it. Subscribing an
// active address again is a no-op that returns the existing row.
func (d *DB) Subscribe(ctx context.Context, email, name string) (Subscriber, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return Subscriber{}, err
	}

	existing, err := d.GetSubscriberByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		s := Subscriber{
			ID:           newID(),
			Email:        email,
			Name:         strings.TrimSpace(name),
			Active:       true,
			SubscribedAt: d.stamp(),
		}
		_, err := d.db.ExecContext(ctx,
			`INSERT INTO subscribers(`+subscriberColumns+`) VALUES (?,?,?,?,?,NULL)`,
			s.ID, s.Email, s.Name, 1, unixMilli(s.SubscribedAt),
		)
		if err != nil {
			return Subscriber{}, translate(err)
		}
		return s, nil
	case err != nil:
		return Subscriber{}, err
	case existing.Active:
		return existing, nil
	}

	existing.Active = true
	existing.SubscribedAt = d.stamp()
	existing.UnsubscribedAt = nil
	if n := strings.TrimSpace(name); n != "" {
		existing.Name = n
	}
	err = affected(d.db.ExecContext(ctx,
		`UPDATE subscribers SET active = 1, name = ?, subscribed_at = ?, unsubscribed_at = NULL WHERE id = ?`,
		existing.Name, unixMilli(existing.SubscribedAt), existing.ID,
	))
	if err != nil {
		return Subscriber{}, err
	}
	return existing, nil
}

// Unsubscribe deactivates email. Unknown or already inactive addresses are not an error.
func (d *DB) Unsubscribe(ctx context.Context, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`UPDATE subscribers SET active = 0, unsubscribed_at = ? WHERE email = ? AND active = 1`,
		unixMilli(d.stamp()), email,
	)
	return translate(err)
}

func (d *DB) GetSubscriber(ctx context.Context, id string) (Subscriber, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`, id)
	return scanSubscriber(row)
}

func (d *DB) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return scanSubscriber(row)
}

func (d *DB) ListSubscribers(ctx context.Context, q Query) ([]Subscriber, error) {
	var w where
	w.search(q.Search, "email", "name")
	if q.Active != nil {
		w.add("active = ?", boolToInt(*q.Active))
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers`+w.String()+
			orderBy(q.Sort, []string{"email", "name", "subscribed_at"}, "subscribed_at DESC, rowid DESC")+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Subscriber{}
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSubscriber edits the name and active flag of s.ID.
func (d *DB) UpdateSubscriber(ctx context.Context, s Subscriber) (Subscriber, error) {
	existing, err := d.GetSubscriber(ctx, s.ID)
	if err != nil {
		return Subscriber{}, err
	}
	existing.Name = strings.TrimSpace(s.Name)
	if existing.Active != s.Active {
		existing.Active = s.Active
		now := d.stamp()
		if s.Active {
			existing.SubscribedAt = now
			existing.UnsubscribedAt = nil
		} else {
			existing.UnsubscribedAt = &now
		}
	}

	err = affected(d.db.ExecContext(ctx,
		`UPDATE subscribers SET name = ?, active = ?, subscribed_at = ?, unsubscribed_at = ? WHERE id = ?`,
		existing.Name, boolToInt(existing.Active), unixMilli(existing.SubscribedAt),
		nullUnixMilli(existing.UnsubscribedAt), existing.ID,
	))
	if err != nil {
		return Subscriber{}, err
	}
	return existing, nil
}

func (d *DB) DeleteSubscriber(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, id))
}
