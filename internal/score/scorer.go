package score

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"jobradar/internal/ai"
	"jobradar/internal/pool"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

// Scorer produces exactly one match result per (listing, profile version).
type Scorer struct {
	assessor ai.Scorer
	sources  *store.SourceRepo
	listings *store.ListingRepo
	matches  *store.MatchRepo
	profile  *tracker.CandidateProfile
	logger   *zap.Logger
	workers  int
	now      func() time.Time

	// quotaHit flips once the AI service reports quota exhaustion; the rest
	// of the batch goes straight to fallback scoring instead of burning
	// attempts.
	quotaHit atomic.Bool
}

// Summary reports one scoring run.
type Summary struct {
	Candidates int
	Scored     int
	AIScored   int
	Fallback   int
	Skipped    int
	Failed     int
}

// New builds a scoring stage. A nil assessor forces heuristic-only scoring.
func New(assessor ai.Scorer, sources *store.SourceRepo, listings *store.ListingRepo, matches *store.MatchRepo, profile *tracker.CandidateProfile, workers int, logger *zap.Logger) *Scorer {
	if workers <= 0 {
		workers = 3
	}
	return &Scorer{
		assessor: assessor,
		sources:  sources,
		listings: listings,
		matches:  matches,
		profile:  profile,
		logger:   logger,
		workers:  workers,
		now:      time.Now,
	}
}

// Run scores every pre-filter-passed listing not yet scored under the
// current profile version. Re-running with an unchanged profile is a no-op.
func (s *Scorer) Run(ctx context.Context) (*Summary, error) {
	version := s.profile.Version()
	summary := &Summary{}

	var pending []*tracker.Listing
	for _, listing := range s.listings.Scorable() {
		if s.matches.Has(listing.ID, version) {
			summary.Skipped++
			continue
		}
		pending = append(pending, listing)
	}
	summary.Candidates = len(pending)

	methods := make(chan tracker.Method, len(pending))

	workers := pool.New(s.workers, len(pending))
	results := workers.Run(ctx)

	for _, listing := range pending {
		listing := listing
		workers.Submit(func(ctx context.Context) error {
			method, err := s.scoreOne(ctx, listing, version)
			if err != nil {
				return fmt.Errorf("listing %s (%s): %w", listing.ID, listing.Title, err)
			}
			methods <- method
			return nil
		})
	}
	workers.Close()

	for result := range results {
		if result.Err != nil {
			summary.Failed++
			s.logger.Warn("scoring listing failed", zap.Error(result.Err))
		}
	}
	close(methods)
	for method := range methods {
		summary.Scored++
		if method == tracker.MethodAI {
			summary.AIScored++
		} else {
			summary.Fallback++
		}
	}

	if err := s.matches.Flush(); err != nil {
		return summary, fmt.Errorf("flushing match results: %w", err)
	}

	s.logger.Info("scoring done",
		zap.String("profile_version", version),
		zap.Int("candidates", summary.Candidates),
		zap.Int("scored", summary.Scored),
		zap.Int("ai", summary.AIScored),
		zap.Int("fallback", summary.Fallback),
		zap.Int("already_scored", summary.Skipped),
	)
	return summary, nil
}

// scoreOne evaluates one listing, applies the deal-breaker floor and commits
// the result.
func (s *Scorer) scoreOne(ctx context.Context, listing *tracker.Listing, version string) (tracker.Method, error) {
	assessment, method := s.assess(ctx, listing)

	// Deal-breakers are hard constraints: they suppress the score to the
	// floor no matter which path produced it.
	if term, hit := s.profile.HasDealBreaker(listing.Title); hit && assessment.Score > dealBreakerFloor {
		assessment.Score = dealBreakerFloor
		assessment.Reasoning = fmt.Sprintf("Deal-breaker term %q present; score floored. %s", term, assessment.Reasoning)
	}

	result := &tracker.MatchResult{
		ListingID:      listing.ID,
		Score:          assessment.Score,
		Reasoning:      assessment.Reasoning,
		Confidence:     assessment.Confidence,
		Method:         method,
		ProfileVersion: version,
		ScoredAt:       s.now().UTC(),
	}

	created, err := s.matches.Put(result)
	if err != nil {
		return method, err
	}
	if !created {
		s.logger.Debug("match result already committed",
			zap.String("listing_id", listing.ID),
			zap.String("profile_version", version),
		)
	}
	return method, nil
}

// assess picks the scoring path: AI when available and quota remains,
// heuristic fallback otherwise.
func (s *Scorer) assess(ctx context.Context, listing *tracker.Listing) (*ai.Assessment, tracker.Method) {
	if s.assessor == nil || s.quotaHit.Load() {
		return Heuristic(listing, s.profile), tracker.MethodHeuristicFallback
	}

	outcome := s.assessor.Score(ctx, listing, s.sources.Get(listing.SourceID), s.profile)
	if !outcome.Failed() {
		return outcome.Assessment, tracker.MethodAI
	}

	if outcome.Failure == ai.FailureQuota {
		s.quotaHit.Store(true)
		s.logger.Warn("ai quota exhausted, falling back for the rest of the batch",
			zap.String("detail", outcome.Detail),
		)
	} else {
		s.logger.Debug("ai scoring failed, using fallback",
			zap.String("listing_id", listing.ID),
			zap.String("failure", string(outcome.Failure)),
			zap.String("detail", outcome.Detail),
		)
	}

	return Heuristic(listing, s.profile), tracker.MethodHeuristicFallback
}
