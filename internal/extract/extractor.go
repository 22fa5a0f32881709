package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobradar/internal/fetch"
	"jobradar/internal/pool"
	"jobradar/internal/retry"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

const defaultMaxPerSource = 25

// Extractor pulls job listings from high and medium priority sources.
type Extractor struct {
	fetcher  *fetch.Client
	sources  *store.SourceRepo
	listings *store.ListingRepo
	logger   *zap.Logger
	policy   retry.Policy
	workers  int

	// MaxPerSource caps listings taken from one page to keep a noisy markup
	// match from flooding the store.
	MaxPerSource int
	now          func() time.Time
}

// Summary reports one extraction run.
type Summary struct {
	Sources        int
	New            int
	Resighted      int
	PrefilterFails int
	Failed         int
}

// New builds an extraction stage.
func New(fetcher *fetch.Client, sources *store.SourceRepo, listings *store.ListingRepo, policy retry.Policy, workers int, logger *zap.Logger) *Extractor {
	if workers <= 0 {
		workers = 3
	}
	return &Extractor{
		fetcher:      fetcher,
		sources:      sources,
		listings:     listings,
		logger:       logger,
		policy:       policy,
		workers:      workers,
		MaxPerSource: defaultMaxPerSource,
		now:          time.Now,
	}
}

// Run extracts listings from every extractable source across the worker
// pool. A single source failing all strategies is logged and skipped, never
// fatal to the batch.
func (e *Extractor) Run(ctx context.Context) (*Summary, error) {
	var targets []*tracker.Source
	for _, src := range e.sources.All() {
		if src.Extractable() {
			targets = append(targets, src)
		}
	}

	summary := &Summary{Sources: len(targets)}
	counts := make(chan sourceCount, len(targets))

	workers := pool.New(e.workers, len(targets))
	results := workers.Run(ctx)

	for _, src := range targets {
		src := src
		workers.Submit(func(ctx context.Context) error {
			count, err := e.extractOne(ctx, src)
			if err != nil {
				return fmt.Errorf("source %s (%s): %w", src.ID, src.Name, err)
			}
			counts <- count
			return nil
		})
	}
	workers.Close()

	for result := range results {
		if result.Err != nil {
			summary.Failed++
			e.logger.Warn("source extraction failed", zap.Error(result.Err))
		}
	}
	close(counts)
	for count := range counts {
		summary.New += count.created
		summary.Resighted += count.resighted
		summary.PrefilterFails += count.prefilterFails
	}

	if err := e.listings.Flush(); err != nil {
		return summary, fmt.Errorf("flushing listings: %w", err)
	}

	e.logger.Info("extraction done",
		zap.Int("sources", summary.Sources),
		zap.Int("new_listings", summary.New),
		zap.Int("resighted", summary.Resighted),
		zap.Int("prefilter_fails", summary.PrefilterFails),
		zap.Int("failed_sources", summary.Failed),
	)
	return summary, nil
}

type sourceCount struct {
	created        int
	resighted      int
	prefilterFails int
}

// extractOne fetches one source's careers page, runs the strategy cascade
// and commits the surviving listings.
func (e *Extractor) extractOne(ctx context.Context, src *tracker.Source) (sourceCount, error) {
	var count sourceCount

	pageURL := src.CareersURL
	if pageURL == "" {
		pageURL = src.Website
	}

	var page *fetch.Page
	err := e.policy.Do(ctx, func() error {
		var err error
		page, err = e.fetcher.Get(ctx, pageURL)
		return err
	})
	if err != nil {
		return count, err
	}
	if page.StatusCode != 200 {
		return count, fmt.Errorf("%w: careers page %s answered %d", tracker.ErrNetworkUnavailable, pageURL, page.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return count, fmt.Errorf("%w: parsing %s: %v", tracker.ErrMalformedResponse, pageURL, err)
	}

	platform := DetectPlatform(pageURL, doc)
	postings, used := e.cascade(platform, doc, pageURL)
	if len(postings) == 0 {
		e.logger.Debug("no postings extracted",
			zap.String("source_id", src.ID),
			zap.String("careers_url", pageURL),
			zap.String("platform", string(platform)),
		)
		return count, nil
	}

	e.logger.Debug("postings extracted",
		zap.String("source_id", src.ID),
		zap.String("platform", string(platform)),
		zap.String("strategy", used),
		zap.Int("raw", len(postings)),
	)

	now := e.now()
	seen := make(map[string]bool)
	kept := 0
	for _, posting := range postings {
		if kept >= e.MaxPerSource {
			break
		}

		title := tracker.NormalizeTitle(posting.Title)
		if !ValidTitle(title) {
			continue
		}

		listing := tracker.NewListing(src.ID, title, posting.URL, platform, now)
		if listing.URL == "" || seen[listing.ID] {
			continue
		}
		seen[listing.ID] = true
		kept++

		listing.PrefilterPassed = Prefilter(title, src.FocusTags)
		if !listing.PrefilterPassed {
			count.prefilterFails++
		}

		created, err := e.listings.Record(listing, now)
		if err != nil {
			e.logger.Warn("skipping invalid listing",
				zap.String("source_id", src.ID),
				zap.String("title", title),
				zap.Error(err),
			)
			continue
		}
		if created {
			count.created++
		} else {
			count.resighted++
		}
	}

	return count, nil
}

// cascade runs the strategy chain for the platform and returns the first
// plausible result set plus the strategy that produced it.
func (e *Extractor) cascade(platform tracker.Platform, doc *goquery.Document, baseURL string) ([]Posting, string) {
	for _, strategy := range strategyFor(platform) {
		postings := strategy.Attempt(doc, baseURL)
		if plausible(postings) {
			return postings, strategy.Name()
		}
	}
	return nil, ""
}

// plausible requires at least one posting with a usable title.
func plausible(postings []Posting) bool {
	for _, posting := range postings {
		if strings.TrimSpace(posting.Title) != "" {
			return true
		}
	}
	return false
}
