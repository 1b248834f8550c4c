package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jaki95/songinfo/internal/domain"
)

const (
	// A winner below both thresholds is treated as a probable mismatch.
	lowConfidencePopularity = 30
	lowConfidenceScore      = 40

	// The fallback candidate must be at least this popular.
	overridePopularity = 60
)

// Score rates how well a candidate matches query. Higher is better.
func Score(query string, c domain.SearchCandidate) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	title := strings.ToLower(strings.TrimSpace(c.Title))
	artist := strings.ToLower(c.Artist)
	queryWords := strings.Fields(q)

	var score float64
	for _, w := range queryWords {
		if strings.Contains(title, w) {
			score += 20
		}
		if strings.Contains(artist, w) {
			score += 5
		}
	}

	for _, w := range queryWords {
		if strings.HasPrefix(title, w) {
			score += 10
			break
		}
	}

	if q != "" && title == q {
		score += 100
	}
	if q != "" && strings.Contains(title, q) {
		score += 30
	}

	score += float64(c.Popularity) / 5.0
	if c.Popularity >= 80 {
		score += 30
	}

	for _, tw := range titleWords(title) {
		if utf8.RuneCountInString(tw) < 3 {
			continue
		}
		if !matchesAny(tw, queryWords) {
			score -= 8
		}
	}

	return score
}

// PickBest returns the best scoring candidate, or nil when there are none.
// Ties keep the earliest candidate. A weak, obscure winner is swapped for
// the most popular candidate when that one is popular enough.
func PickBest(query string, candidates []domain.SearchCandidate) *domain.SearchCandidate {
	if len(candidates) == 0 {
		return nil
	}

	bestIdx := 0
	bestScore := Score(query, candidates[0])
	for i := 1; i < len(candidates); i++ {
		if s := Score(query, candidates[i]); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}

	best := candidates[bestIdx]
	if best.Popularity < lowConfidencePopularity && bestScore < lowConfidenceScore {
		popular := candidates[0]
		for _, c := range candidates[1:] {
			if c.Popularity > popular.Popularity {
				popular = c
			}
		}
		if popular.Popularity >= overridePopularity {
			return &popular
		}
	}

	return &best
}

func titleWords(title string) []string {
	return strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesAny(word string, queryWords []string) bool {
	for _, qw := range queryWords {
		if word == qw || strings.Contains(word, qw) || strings.Contains(qw, word) {
			return true
		}
	}
	return false
}
