package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique column already holds the value.
	ErrConflict = errors.New("already exists")
	// ErrInvalid is returned for values the schema rejects.
	ErrInvalid = errors.New("invalid value")
)

// Query filters and orders a listing. Sort is a column name, prefixed with "-"
// for descending order; unknown columns fall back to the collection default.
type Query struct {
	Search     string
	CategoryID string
	Kind       string
	Published  *bool
	Active     *bool
	Unread     bool
	Sort       string
	Limit      int
	Offset     int
}

// MaxLimit caps a single page.
const MaxLimit = 200

type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = like
	}
	w.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// orderBy maps q.Sort onto a whitelisted column. rowid breaks ties so equal
// timestamps keep insertion order.
func orderBy(sort string, allowed []string, def string) string {
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	for _, a := range allowed {
		if a == col {
			dir := "ASC"
			if desc {
				dir = "DESC"
			}
			return fmt.Sprintf(" ORDER BY %s %s, rowid %s", col, dir, dir)
		}
	}
	return " ORDER BY " + def
}

func page(q Query) string {
	limit := q.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(q.Offset, 0))
}

type scanner interface {
	Scan(dest ...any) error
}

func newID() string {
	return uuid.NewString()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func unixMilli(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func nullUnixMilli(t *time.Time) any {
	if t == nil {
		return nil
	}
	return unixMilli(*t)
}

func fromMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromNullMilli(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMilli(n.Int64)
	return &t
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			if strings.Contains(se.Error(), "UNIQUE") {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
