package objstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts Options) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8180/"
	}
	s, err := Open(dir, opts)
	require.NoError(t, err, "Failed to open object store")
	t.Cleanup(func() { s.Close() })
	return s, dir
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCleanPath(t *testing.T) {
	good := map[string]string{
		"images/cover.png":   "images/cover.png",
		"/images/cover.png":  "images/cover.png",
		"a//b/./c.mp3":       "a/b/c.mp3",
		"audio/Psalm 23.mp3": "audio/Psalm 23.mp3",
	}
	for in, want := range good {
		got, err := CleanPath(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	for _, bad := range []string{"", "   ", "../etc/passwd", "images/../../secret", "a\\b", "images/", "/", "a\x00b"} {
		_, err := CleanPath(bad)
		require.ErrorIs(t, err, ErrInvalidPath, "path %q should be rejected", bad)
	}
}

func TestUploadStatOpen(t *testing.T) {
	s, dir := newTestStore(t, Options{})
	ctx := context.Background()

	obj, err := s.Upload(ctx, "images/cover.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Equal(t, "images/cover.png", obj.Path)
	require.Equal(t, int64(len(pngHeader)), obj.Size)
	require.Equal(t, "image/png", obj.ContentType)
	require.Equal(t, "http://localhost:8180/objects/images/cover.png", obj.URL)

	_, err = os.Stat(filepath.Join(dir, "objects", "images", "cover.png"))
	require.NoError(t, err, "File should be written under the objects root")

	stat, err := s.Stat(ctx, "images/cover.png")
	require.NoError(t, err)
	require.Equal(t, obj.ContentType, stat.ContentType)

	f, _, err := s.Open(ctx, "/images/cover.png")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, pngHeader, data)

	_, err = s.Stat(ctx, "images/missing.png")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Upload(ctx, "../escape.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestUploadReplaces(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	_, err := s.Upload(ctx, "docs/notes.txt", strings.NewReader("first"))
	require.NoError(t, err)
	obj, err := s.Upload(ctx, "docs/notes.txt", strings.NewReader("second version"))
	require.NoError(t, err)
	require.Equal(t, int64(len("second version")), obj.Size)
	require.True(t, strings.HasPrefix(obj.ContentType, "text/plain"))

	list, err := s.List(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUploadTooLarge(t *testing.T) {
	s, dir := newTestStore(t, Options{MaxBytes: 8})
	ctx := context.Background()

	_, err := s.Upload(ctx, "big.bin", bytes.NewReader(make([]byte, 9)))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = os.Stat(filepath.Join(dir, "objects", "big.bin"))
	require.True(t, os.IsNotExist(err), "Rejected uploads leave no file behind")

	_, err = s.Upload(ctx, "ok.bin", bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
}

func TestListAndDelete(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	for _, p := range []string{"audio/b.mp3", "audio/a.mp3", "images/x.png", "audiobook.txt"} {
		_, err := s.Upload(ctx, p, strings.NewReader(p))
		require.NoError(t, err)
	}

	audio, err := s.List(ctx, "audio/")
	require.NoError(t, err)
	require.Len(t, audio, 2)
	require.Equal(t, "audio/a.mp3", audio[0].Path, "Objects are listed in path order")
	require.Equal(t, "audio/b.mp3", audio[1].Path)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)

	require.NoError(t, s.Delete(ctx, "audio/a.mp3", "audio/never-existed.mp3"))
	audio, err = s.List(ctx, "audio/")
	require.NoError(t, err)
	require.Len(t, audio, 1)

	_, _, err = s.Open(ctx, "audio/a.mp3")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, "../../etc/passwd"), ErrInvalidPath)
	_, err = s.List(ctx, "../")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestPublicURLRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, Options{BaseURL: "https://ministry.example.org"})

	u := s.PublicURL("audio/Psalm 23.mp3")
	require.Equal(t, "https://ministry.example.org/objects/audio/Psalm%2023.mp3", u)

	p, ok := s.PathFromURL(u + "?download=1")
	require.True(t, ok)
	require.Equal(t, "audio/Psalm 23.mp3", p)

	_, ok = s.PathFromURL("https://cdn.example.org/objects/audio/a.mp3")
	require.False(t, ok, "Foreign hosts are not ours")
	_, ok = s.PathFromURL("https://ministry.example.org/objects/../db")
	require.False(t, ok)
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, Options{BaseURL: "http://localhost:8180"})
	require.NoError(t, err)
	_, err = s.Upload(ctx, "keep.txt", strings.NewReader("kept"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir, Options{BaseURL: "http://localhost:8180"})
	require.NoError(t, err)
	defer s.Close()

	obj, err := s.Stat(ctx, "keep.txt")
	require.NoError(t, err)
	require.Equal(t, int64(4), obj.Size)
}
