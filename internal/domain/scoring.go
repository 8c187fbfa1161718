package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Exact title match bonus (huge boost)
	ScoreExactTitleBonus = 200.0

	// Weight applied to a hostname match relative to a title match
	ScoreHostnameWeight = 0.5
)

// LinkCandidate is a link with its match score.
type LinkCandidate struct {
	Link  Link    `json:"link"`
	Score float64 `json:"score"`
}

// ScoreLink calculates the match score for a link against a query string.
// The title is scored first; the URL hostname contributes a weaker fallback.
func ScoreLink(queryStr string, link Link) float64 {
	queryStr = strings.ToLower(strings.TrimSpace(queryStr))
	if queryStr == "" {
		return 0.0
	}

	score := scoreText(queryStr, strings.ToLower(link.Title), true)

	host := strings.ToLower(HostnameTitle(link.URL))
	if hs := scoreText(queryStr, host, false) * ScoreHostnameWeight; hs > score {
		score = hs
	}

	return score
}

func scoreText(queryStr, text string, exactBonus bool) float64 {
	if text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if queryStr == text {
		if exactBonus {
			return ScoreExactMatch + ScoreExactTitleBonus
		}
		return ScoreExactMatch
	}

	// Prefix match
	if strings.HasPrefix(text, queryStr) {
		return ScorePrefixMatch + ScorePositionBonus
	}

	// Substring match
	if index := strings.Index(text, queryStr); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Word match: every query word appears somewhere, earlier words weigh more
	queryWords := strings.Fields(queryStr)
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch + calculatePositionBonus(len(queryWords))
		}
	}

	// Character similarity
	similarity := calculateSimilarity(queryStr, text)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity calculates fuzzy similarity between two strings
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	// Simple similarity: ratio of matching characters
	matches := 0
	total := 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

// RankLinks scores links against queryStr and returns the matches, best first.
// Ties keep the input order.
func RankLinks(queryStr string, links []Link) []LinkCandidate {
	candidates := make([]LinkCandidate, 0, len(links))

	for _, link := range links {
		score := ScoreLink(queryStr, link)

		// Skip links with zero score (no match)
		if score == 0.0 {
			continue
		}

		candidates = append(candidates, LinkCandidate{Link: link, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}
