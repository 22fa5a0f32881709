package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Confidence of a match result.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Method records which scoring path produced a match result.
type Method string

const (
	MethodAI                Method = "ai"
	MethodHeuristicFallback Method = "heuristic-fallback"
)

// MatchResult is the scored relevance of one listing against one version of
// the candidate profile. Immutable once created; a changed profile supersedes
// it with a new row under the new profile version.
type MatchResult struct {
	ListingID      string
	Score          float64
	Reasoning      string
	Confidence     Confidence
	Method         Method
	ProfileVersion string
	ScoredAt       time.Time
}

// Validate checks the invariants that must hold before a result row is committed.
func (m *MatchResult) Validate() error {
	if m.ListingID == "" {
		return fmt.Errorf("%w: match result has no listing id", ErrValidationFailed)
	}
	if m.Score < 1.0 || m.Score > 10.0 {
		return fmt.Errorf("%w: match result for %s score %.2f out of [1,10]", ErrValidationFailed, m.ListingID, m.Score)
	}
	if strings.TrimSpace(m.Reasoning) == "" {
		return fmt.Errorf("%w: match result for %s has empty reasoning", ErrValidationFailed, m.ListingID)
	}
	if m.ProfileVersion == "" {
		return fmt.Errorf("%w: match result for %s has no profile version", ErrValidationFailed, m.ListingID)
	}
	return nil
}
