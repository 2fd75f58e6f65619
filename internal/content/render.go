package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Format is the markup a post body is written in.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatMarkdown || f == FormatHTML
}

// Posts are written by trusted editors, so raw HTML inside markdown is kept.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts body to HTML. HTML bodies from the rich-text editor pass through.
func Render(format Format, body string) (string, error) {
	switch format {
	case FormatHTML:
		return body, nil
	case FormatMarkdown, "":
		var buf bytes.Buffer
		if err := md.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// PlainText strips tags from rendered HTML and collapses whitespace.
func PlainText(htmlBody string) string {
	text := tagRe.ReplaceAllString(htmlBody, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Excerpt returns at most n runes of the post's plain text, cut on a word
// boundary and suffixed with an ellipsis when shortened.
func Excerpt(format Format, body string, n int) string {
	rendered, err := Render(format, body)
	if err != nil {
		rendered = body
	}
	text := PlainText(rendered)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}

	cut := []rune(text)[:n]
	if i := strings.LastIndexByte(string(cut), ' '); i > 0 {
		return strings.TrimRight(string(cut)[:i], " ,.;:") + "…"
	}
	return string(cut) + "…"
}
