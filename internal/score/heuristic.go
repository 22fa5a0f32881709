package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"jobradar/internal/ai"
	"jobradar/internal/tracker"
)

// dealBreakerFloor is the hard ceiling for any listing whose title carries a
// deal-breaker term, on both scoring paths.
const dealBreakerFloor = 1.5

// Heuristic is the deterministic fallback: score from the fraction of
// profile skills and roles present in the title, with a templated reasoning
// naming the matched terms.
func Heuristic(listing *tracker.Listing, profile *tracker.CandidateProfile) *ai.Assessment {
	if term, hit := profile.HasDealBreaker(listing.Title); hit {
		return &ai.Assessment{
			Score:      dealBreakerFloor,
			Reasoning:  fmt.Sprintf("Deal-breaker term %q found in title %q; hard constraint applied.", term, listing.Title),
			Confidence: tracker.ConfidenceHigh,
		}
	}

	terms := profileTerms(profile)
	matched := matchedTerms(listing.Title, terms)

	fraction := 0.0
	if len(terms) > 0 {
		fraction = float64(len(matched)) / float64(len(terms))
	}
	score := roundHalf(1 + fraction*9)

	confidence := tracker.ConfidenceLow
	if fraction >= 0.5 {
		confidence = tracker.ConfidenceMedium
	}

	reasoning := fmt.Sprintf("No profile terms found in title %q.", listing.Title)
	if len(matched) > 0 {
		reasoning = fmt.Sprintf("Title %q matches profile terms: %s (%d of %d).",
			listing.Title, strings.Join(matched, ", "), len(matched), len(terms))
	}

	return &ai.Assessment{
		Score:      score,
		Reasoning:  reasoning,
		Confidence: confidence,
	}
}

func profileTerms(profile *tracker.CandidateProfile) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, group := range [][]string{profile.Skills, profile.Roles} {
		for _, term := range group {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" && !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	sort.Strings(terms)
	return terms
}

func matchedTerms(title string, terms []string) []string {
	lower := strings.ToLower(title)
	var matched []string
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// roundHalf keeps scores on a 0.5 grid inside [1,10].
func roundHalf(v float64) float64 {
	rounded := math.Round(v*2) / 2
	if rounded < 1 {
		return 1
	}
	if rounded > 10 {
		return 10
	}
	return rounded
}
