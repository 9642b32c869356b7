// Package normalize cleans up free-text book fields before they are stored.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Opening or self-closing tags commonly pasted from publisher blurbs.
	htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)
)

// genreAliases folds common spellings onto one slug so filters match.
//
//nolint:gochecknoglobals // static lookup table
var genreAliases = map[string]string{
	"sci-fi":          "science-fiction",
	"scifi":           "science-fiction",
	"sf":              "science-fiction",
	"ya":              "young-adult",
	"teen":            "young-adult",
	"non-fiction":     "nonfiction",
	"biography":       "biography-memoir",
	"memoir":          "biography-memoir",
	"thriller":        "mystery-thriller",
	"mystery":         "mystery-thriller",
	"suspense":        "mystery-thriller",
	"horror-fiction":  "horror",
	"romantic-comedy": "romance",
}

// Slugify converts s to a lowercase ASCII slug.
// "Science Fiction" -> "science-fiction", "Café Noir" -> "cafe-noir".
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenreSlug returns the canonical slug for a free-text genre, or "" for blank input.
func GenreSlug(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := genreAliases[slug]; ok {
		return canonical
	}
	return slug
}

// Text removes NUL bytes and surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Description converts an HTML description to Markdown. Plain text passes
// through unchanged apart from trimming, as does HTML that fails to convert.
func Description(s string) string {
	s = Text(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
