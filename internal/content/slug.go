// Package content holds text helpers shared by the blog and resource handlers.
package content

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a title into a lowercase, hyphen-separated ASCII slug.
// Accents are folded ("Génesis" -> "genesis"); anything else that is not a
// letter or digit becomes a separator.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	sep := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			sep = false
		case r == '\'' || r == '’':
			// "God's" -> "gods"
		default:
			sep = true
		}
	}
	return b.String()
}

// UniqueSlug appends -2, -3, ... to base until taken reports false.
func UniqueSlug(base string, taken func(string) (bool, error)) (string, error) {
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for i := 2; ; i++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
