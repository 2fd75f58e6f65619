// Package objstore keeps uploaded files on disk and indexes them in bbolt so
// they can be listed and served by public URL.
package objstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.etcd.io/bbolt"
)

var objectsBucket = []byte("objects")

// PublicPrefix is the URL path objects are served under.
const PublicPrefix = "/objects/"

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidPath = errors.New("invalid object path")
	ErrTooLarge    = errors.New("object too large")
)

// Object is the stored metadata of one file.
type Object struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url,omitempty"`
}

// Options configures a Store.
type Options struct {
	// BaseURL is the public origin, e.g. http://localhost:8180.
	BaseURL string
	// MaxBytes limits a single upload; 0 means unlimited.
	MaxBytes int64
}

type Store struct {
	root string
	opts Options
	db   *bbolt.DB
	now  func() time.Time
}

// Open opens the store rooted at dir. Files live in dir/objects and the index in dir/objects.db.
func Open(dir string, opts Options) (*Store, error) {
	root := filepath.Join(dir, "objects")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create object dir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, "objects.db"), 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(objectsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create objects bucket: %w", err)
	}

	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Store{root: root, opts: opts, db: db, now: time.Now}, nil
}

// CleanPath normalizes p to a relative slash-separated path. Paths that try to
// leave the root are rejected rather than rewritten.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.ContainsAny(p, "\\\x00") {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" || clean == "." || strings.HasSuffix(p, "/") {
		return "", ErrInvalidPath
	}
	return clean, nil
}

func (s *Store) file(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

// Upload writes r to p, replacing any object already there, and records its
// size and sniffed content type.
func (s *Store) Upload(ctx context.Context, p string, r io.Reader) (Object, error) {
	p, err := CleanPath(p)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	dst := s.file(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if s.opts.MaxBytes > 0 {
		src = io.LimitReader(r, s.opts.MaxBytes+1)
	}
	size, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if s.opts.MaxBytes > 0 && size > s.opts.MaxBytes {
		return Object{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.opts.MaxBytes)
	}

	mt, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		return Object{}, fmt.Errorf("detect content type: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Object{}, fmt.Errorf("store object: %w", err)
	}

	obj := Object{
		Path:        p,
		Size:        size,
		ContentType: mt.String(),
		CreatedAt:   s.now().UTC(),
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		value, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		return tx.Bucket(objectsBucket).Put([]byte(p), value)
	})
	if err != nil {
		return Object{}, fmt.Errorf("index object: %w", err)
	}

	obj.URL = s.PublicURL(p)
	return obj, nil
}

// Stat returns the metadata of p.
func (s *Store) Stat(ctx context.Context, p string) (Object, error) {
	p, err := CleanPath(p)
	if err != nil {
		return Object{}, err
	}
	var obj Object
	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(objectsBucket).Get([]byte(p))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &obj)
	})
	if err != nil {
		return Object{}, err
	}
	obj.URL = s.PublicURL(p)
	return obj, nil
}

// Open returns the content of p. The caller closes the file.
func (s *Store) Open(ctx context.Context, p string) (*os.File, Object, error) {
	obj, err := s.Stat(ctx, p)
	if err != nil {
		return nil, Object{}, err
	}
	f, err := os.Open(s.file(obj.Path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, Object{}, ErrNotFound
	}
	if err != nil {
		return nil, Object{}, err
	}
	return f, obj, nil
}

// List returns objects whose path starts with prefix, in path order.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	prefix = strings.TrimLeft(prefix, "/")
	if strings.Contains(prefix, "..") {
		return nil, ErrInvalidPath
	}

	out := []Object{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(objectsBucket).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var obj Object
			if err := json.Unmarshal(v, &obj); err != nil {
				return fmt.Errorf("error deserializing object %s: %w", k, err)
			}
			obj.URL = s.PublicURL(obj.Path)
			out = append(out, obj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes every path. Paths that do not exist are skipped.
func (s *Store) Delete(ctx context.Context, paths ...string) error {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		c, err := CleanPath(p)
		if err != nil {
			return fmt.Errorf("%w: %q", err, p)
		}
		cleaned = append(cleaned, c)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(objectsBucket)
		for _, p := range cleaned {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.Remove(s.file(p)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", p, err)
			}
			if err := b.Delete([]byte(p)); err != nil {
				return err
			}
		}
		return nil
	})
}

// PublicURL is the address the object is served from.
func (s *Store) PublicURL(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.opts.BaseURL + PublicPrefix + strings.Join(segs, "/")
}

// PathFromURL reports the object path behind a public URL of this store.
func (s *Store) PathFromURL(raw string) (string, bool) {
	base := s.opts.BaseURL + PublicPrefix
	if !strings.HasPrefix(raw, base) {
		return "", false
	}
	rest := strings.TrimPrefix(raw, base)
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	p, err := CleanPath(rest)
	if err != nil {
		return "", false
	}
	return p, true
}

func (s *Store) Close() error {
	return s.db.Close()
}
