package store

import (
	"context"
	"fmt"
	"strings"
)

const messageColumns = `id, name, email, subject, message, read, created_at`

func scanMessage(row scanner) (ContactMessage, error) {
	var (
		m       ContactMessage
		read    int
		created int64
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &read, &created); err != nil {
		return ContactMessage{}, translate(err)
	}
	m.Read = read != 0
	m.CreatedAt = fromMilli(created)
	return m, nil
}

// CreateMessage stores a contact form submission.
func (d *DB) CreateMessage(ctx context.Context, m ContactMessage) (ContactMessage, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	if m.Name == "" || m.Message == "" {
		return ContactMessage{}, fmt.Errorf("%w: name and message are required", ErrInvalid)
	}
	email, err := NormalizeEmail(m.Email)
	if err != nil {
		return ContactMessage{}, err
	}
	m.Email = email
	m.ID = newID()
	m.Read = false
	m.CreatedAt = d.stamp()

	_, err = d.db.ExecContext(ctx,
		`INSERT INTO contact_messages(`+messageColumns+`) VALUES (?,?,?,?,?,0,?)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, unixMilli(m.CreatedAt),
	)
	if err != nil {
		return ContactMessage{}, translate(err)
	}
	return m, nil
}

func (d *DB) GetMessage(ctx context.Context, id string) (ContactMessage, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM contact_messages WHERE id = ?`, id)
	return scanMessage(row)
}

func (d *DB) ListMessages(ctx context.Context, q Query) ([]ContactMessage, error) {
	var w where
	w.search(q.Search, "name", "email", "subject", "message")
	if q.Unread {
		w.add("read = 0")
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM contact_messages`+w.String()+
			orderBy(q.Sort, []string{"created_at", "email", "subject"}, "created_at DESC, rowid DESC")+page(q),
		w.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ContactMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkMessageRead sets the read flag of id.
func (d *DB) MarkMessageRead(ctx context.Context, id string, read bool) (ContactMessage, error) {
	err := affected(d.db.ExecContext(ctx,
		`UPDATE contact_messages SET read = ? WHERE id = ?`, boolToInt(read), id))
	if err != nil {
		return ContactMessage{}, err
	}
	return d.GetMessage(ctx, id)
}

func (d *DB) DeleteMessage(ctx context.Context, id string) error {
	return affected(d.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id))
}
