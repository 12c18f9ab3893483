// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Make lowercases name, strips diacritics, drops anything that is not a word
// character, space or hyphen, and joins words with hyphens.
// "Bague Émeraude" becomes "bague-emeraude".
func Make(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, lowered)
	if err != nil {
		stripped = lowered
	}

	stripped = disallowed.ReplaceAllString(stripped, "")
	return whitespace.ReplaceAllString(stripped, "-")
}

// WithTimestamp appends the creation time in milliseconds so products sharing
// a name still get distinct slugs.
func WithTimestamp(name string, at time.Time) string {
	return Make(name) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
