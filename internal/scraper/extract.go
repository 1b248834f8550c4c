package scraper

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaki95/songinfo/internal/domain"
)

var (
	bareIntegerRe = regexp.MustCompile(`^\d+$`)
	musicalKeyRe  = regexp.MustCompile(`^[A-G](?:#|b|♯|♭)?(?:m|\s+(?i:major|minor))?$`)
)

var genreVocabulary = []string{
	"pop",
	"rock",
	"r&b",
	"hip hop",
	"electronic",
	"dance",
	"jazz",
	"classical",
	"soul",
	"indie",
	"alternative",
}

// Extract reads tempo, key and genre out of a song page. Every dd element is
// a candidate value and the nearest preceding dt sibling is its label. The
// first acceptable value for each field wins.
func Extract(html []byte) domain.SongMetadata {
	var md domain.SongMetadata

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return md
	}

	doc.Find("dd").EachWithBreak(func(_ int, dd *goquery.Selection) bool {
		value := strings.TrimSpace(dd.Text())
		if value == "" {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(dd.PrevAllFiltered("dt").First().Text()))

		if md.BPM == nil && (strings.Contains(label, "tempo") || strings.Contains(label, "bpm")) {
			if bareIntegerRe.MatchString(value) {
				if n, err := strconv.Atoi(value); err == nil && domain.ValidBPM(n) {
					md.BPM = domain.IntPtr(n)
				}
			}
		}

		if md.Key == nil && strings.Contains(label, "key") && musicalKeyRe.MatchString(value) {
			md.Key = domain.StringPtr(value)
		}

		if md.Genre == nil && containsGenre(value) {
			md.Genre = domain.StringPtr(value)
		}

		return md.BPM == nil || md.Key == nil || md.Genre == nil
	})

	return md
}

func containsGenre(value string) bool {
	lower := strings.ToLower(value)
	for _, genre := range genreVocabulary {
		if strings.Contains(lower, genre) {
			return true
		}
	}
	return false
}

// FindSongLink scans an artist index page for the first site-relative link
// into the artist's namespace whose href or text contains titleSlug.
func FindSongLink(html []byte, artistSlug, titleSlug string) (string, bool) {
	if artistSlug == "" || titleSlug == "" {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", false
	}

	prefix := "/@" + artistSlug + "/"
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.IsAbs() || u.Host != "" {
			return true
		}
		if !strings.HasPrefix(strings.ToLower(u.Path), prefix) {
			return true
		}

		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if strings.Contains(strings.ToLower(u.Path), titleSlug) || strings.Contains(text, titleSlug) {
			found = href
			return false
		}
		return true
	})

	return found, found != ""
}
