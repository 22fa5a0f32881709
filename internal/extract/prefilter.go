package extract

import (
	"regexp"
	"strings"

	"jobradar/internal/tracker"
)

// Keywords a plausible job title must contain at least one of.
var jobTitleKeywords = []string{
	"engineer", "developer", "manager", "director", "lead", "analyst",
	"specialist", "coordinator", "intern", "associate", "officer",
	"consultant", "advisor", "head of", "chief", "founder", "partner",
	"scientist", "researcher", "designer", "architect", "product",
	"marketing", "sales", "business development", "operations",
	"finance", "legal", "human resources", "strategy",
}

// Navigation chrome and boilerplate that anchors on careers pages often carry.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(apply now|read more|careers|news|latest|about|contact)$`),
	regexp.MustCompile(`(?i)^(home|about us|privacy|terms)$`),
	regexp.MustCompile(`(?i)^(program|accelerator|incubator|apply|application)$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^[^a-zA-Z]*$`),
}

// Phrases that mark accelerator program pages rather than job openings.
var programIndicators = []string{
	"apply now", "application deadline", "cohort", "batch", "accelerator program",
}

// Sector vocabularies for the relevance pre-filter, keyed by focus tag.
var sectorVocabulary = map[tracker.FocusTag][]string{
	tracker.FocusBlockchain: {"blockchain", "crypto", "web3", "defi", "smart contract", "solidity", "protocol"},
	tracker.FocusClimate:    {"climate", "sustainability", "carbon", "renewable", "energy", "environment"},
	tracker.FocusAI:         {"ai", "machine learning", "ml", "data", "deep learning", "nlp"},
}

// ValidTitle reports whether text looks like a real job posting title rather
// than navigation noise or program marketing.
func ValidTitle(title string) bool {
	title = strings.TrimSpace(title)
	if len(title) < 5 || len(title) > 150 {
		return false
	}

	lower := strings.ToLower(title)
	for _, pattern := range noisePatterns {
		if pattern.MatchString(lower) {
			return false
		}
	}
	for _, indicator := range programIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	for _, keyword := range jobTitleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Prefilter checks a title against the sector vocabulary of the source's
// focus tags. Failed listings are still stored for audit but never reach the
// scorer. Sources tagged only as other fall back to the generic job keyword
// check, which ValidTitle already guaranteed.
func Prefilter(title string, tags []tracker.FocusTag) bool {
	lower := strings.ToLower(title)

	sectorTagged := false
	for _, tag := range tags {
		vocabulary, ok := sectorVocabulary[tag]
		if !ok {
			continue
		}
		sectorTagged = true
		for _, keyword := range vocabulary {
			if containsWord(lower, keyword) {
				return true
			}
		}
	}

	return !sectorTagged
}

// containsWord matches keyword on word boundaries so that "ai" does not match
// inside "maintainer".
func containsWord(text, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(text, keyword)
	}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if word == keyword {
			return true
		}
	}
	return false
}
