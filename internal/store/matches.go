package store

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"jobradar/internal/tracker"
)

var matchColumns = []string{
	"listing_id", "score", "reasoning", "confidence",
	"method", "profile_version", "scored_at",
}

type matchKey struct {
	listingID      string
	profileVersion string
}

// MatchRepo is the CSV-backed repository of scored results. Exactly one row
// may exist per (listing id, profile version); rows are immutable once
// committed, so a changed profile supersedes rather than overwrites.
type MatchRepo struct {
	path string

	mu    sync.Mutex
	byKey map[matchKey]*tracker.MatchResult
	order []matchKey
}

// OpenMatches loads the scored-results table from path.
func OpenMatches(path string) (*MatchRepo, error) {
	repo := &MatchRepo{
		path:  path,
		byKey: make(map[matchKey]*tracker.MatchResult),
	}

	rows, err := readTable(path, len(matchColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		score, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: match for %s score %q", tracker.ErrMalformedResponse, row[0], row[1])
		}
		scoredAt, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return nil, fmt.Errorf("%w: match for %s scored_at %q", tracker.ErrMalformedResponse, row[0], row[6])
		}
		result := &tracker.MatchResult{
			ListingID:      row[0],
			Score:          score,
			Reasoning:      row[2],
			Confidence:     tracker.Confidence(row[3]),
			Method:         tracker.Method(row[4]),
			ProfileVersion: row[5],
			ScoredAt:       scoredAt,
		}
		key := matchKey{result.ListingID, result.ProfileVersion}
		repo.byKey[key] = result
		repo.order = append(repo.order, key)
	}
	return repo, nil
}

// Has reports whether a result already exists for the listing under the
// given profile version. Re-scoring such a listing is a no-op.
func (r *MatchRepo) Has(listingID, profileVersion string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byKey[matchKey{listingID, profileVersion}]
	return ok
}

// Put commits a new result. Committing a second result for the same
// (listing id, profile version) returns false without touching the stored row.
func (r *MatchRepo) Put(result *tracker.MatchResult) (bool, error) {
	if err := result.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey{result.ListingID, result.ProfileVersion}
	if _, ok := r.byKey[key]; ok {
		return false, nil
	}

	clone := *result
	r.byKey[key] = &clone
	r.order = append(r.order, key)
	return true, nil
}

// All returns the results in stable insertion order.
func (r *MatchRepo) All() []*tracker.MatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*tracker.MatchResult, 0, len(r.order))
	for _, key := range r.order {
		clone := *r.byKey[key]
		out = append(out, &clone)
	}
	return out
}

// Flush writes the whole table atomically.
func (r *MatchRepo) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]string, 0, len(r.order))
	for _, key := range r.order {
		m := r.byKey[key]
		rows = append(rows, []string{
			m.ListingID,
			strconv.FormatFloat(m.Score, 'f', 1, 64),
			m.Reasoning,
			string(m.Confidence),
			string(m.Method),
			m.ProfileVersion,
			m.ScoredAt.UTC().Format(time.RFC3339),
		})
	}
	return writeTable(r.path, matchColumns, rows)
}
