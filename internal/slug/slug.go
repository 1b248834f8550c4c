// Package slug turns free-text artist and title names into the URL path
// fragments used by the metadata provider, and prepares free text for
// catalog search.
package slug

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// "(feat. X)", "[ft X]", "(featuring X)"
	bracketFeatRe = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s[^\)\]]*[\)\]]?`)
	// trailing "feat. X" / "ft. X" without brackets
	trailingFeatRe = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s.*$`)

	invalidCharsRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	hyphensRe      = regexp.MustCompile(`-+`)

	digitLetterRe = regexp.MustCompile(`(\pN)(\pL)`)
	letterDigitRe = regexp.MustCompile(`(\pL)(\pN)`)
)

// Normalize returns the lowercase hyphenated slug for text.
// The result is either empty or matches ^[a-z0-9]+(-[a-z0-9]+)*$, and
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = StripFeatured(s)
	s = invalidCharsRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = hyphensRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripFeatured removes featured-artist annotations from text.
func StripFeatured(text string) string {
	s := bracketFeatRe.ReplaceAllString(text, "")
	return trailingFeatRe.ReplaceAllString(s, "")
}

// SearchQuery prepares text for a catalog search: digit/letter boundaries
// are split with a space ("2soonkeshi" becomes "2 soonkeshi") and
// whitespace is collapsed. Text without a letter or digit in any script
// yields "".
func SearchQuery(text string) string {
	if strings.IndexFunc(text, isLetterOrDigit) < 0 {
		return ""
	}
	s := digitLetterRe.ReplaceAllString(text, "$1 $2")
	s = letterDigitRe.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}

func isLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
