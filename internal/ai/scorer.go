package ai

import (
	"context"

	"jobradar/internal/tracker"
)

// FailureKind classifies why the scoring service produced no usable result.
// The pipeline treats any non-conforming response identically to a timeout:
// both route to fallback scoring.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureQuota     FailureKind = "quota"
	FailureNetwork   FailureKind = "network"
	FailureMalformed FailureKind = "malformed"
)

// Assessment is a successful relevance evaluation of one listing.
type Assessment struct {
	Score      float64
	Reasoning  string
	Confidence tracker.Confidence
}

// Outcome is the tagged result of one scoring call: either an assessment or
// a failure kind, never both. Fallback logic dispatches on the tag instead of
// driving control flow through errors.
type Outcome struct {
	Assessment *Assessment
	Failure    FailureKind
	// Detail preserves the underlying cause for logs.
	Detail string
}

// Failed reports whether the outcome carries no assessment.
func (o Outcome) Failed() bool {
	return o.Assessment == nil
}

// Scorer evaluates a listing against the candidate profile.
type Scorer interface {
	Score(ctx context.Context, listing *tracker.Listing, source *tracker.Source, profile *tracker.CandidateProfile) Outcome
}
