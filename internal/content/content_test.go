package content

import (
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Sunday   Service  ", "sunday-service"},
		{"Génesis 1:1 - En el principio", "genesis-1-1-en-el-principio"},
		{"God's Grace", "gods-grace"},
		{"Ñandú & Café", "nandu-cafe"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"sermon": true, "sermon-2": true}
	got, err := UniqueSlug("sermon", func(s string) (bool, error) { return taken[s], nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sermon-3" {
		t.Errorf("expected sermon-3, got %s", got)
	}

	got, _ = UniqueSlug("", func(string) (bool, error) { return false, nil })
	if got != "untitled" {
		t.Errorf("expected untitled, got %s", got)
	}

	boom := errors.New("db down")
	if _, err := UniqueSlug("x", func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("expected lookup error, got %v", err)
	}
}

func TestRender(t *testing.T) {
	out, err := Render(FormatMarkdown, "# Welcome\n\nJoin us **Sunday**.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`<h1 id="welcome">Welcome</h1>`, "<strong>Sunday</strong>", "<table>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	raw := "<p>Already <em>html</em></p>"
	out, err = Render(FormatHTML, raw)
	if err != nil || out != raw {
		t.Errorf("html should pass through, got %q, %v", out, err)
	}

	if _, err := Render("docx", "x"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExcerpt(t *testing.T) {
	body := "Faith comes by hearing, and hearing by the word of God."

	if got := Excerpt(FormatMarkdown, body, 100); got != body {
		t.Errorf("short text should be unchanged, got %q", got)
	}
	if got := Excerpt(FormatMarkdown, body, 22); got != "Faith comes by…" {
		t.Errorf("unexpected excerpt %q", got)
	}
	if got := Excerpt(FormatHTML, "<p>Hello <b>there</b></p>", 50); got != "Hello there" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}
