package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a display name, drops diacritics and joins the remaining
// alphanumeric runs with '-': "Padaria São João" -> "padaria-sao-joao".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(plain), "-")
	return strings.Trim(slug, "-")
}
