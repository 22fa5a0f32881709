package validate

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"jobradar/internal/fetch"
	"jobradar/internal/pool"
	"jobradar/internal/retry"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

// Conventional careers path suffixes probed as a last resort.
var careersPaths = []string{
	"/careers", "/jobs", "/career", "/work-with-us", "/join-us",
	"/open-positions", "/opportunities", "/hiring",
}

var careersLinkPattern = regexp.MustCompile(`(?i)careers?|jobs?|join.us|work.with.us|open.positions|opportunit|hiring`)

// Validator probes each source for liveness and hiring activity and assigns
// the priority tier extraction consumes. Re-validation is idempotent: the
// same network responses yield the same status and score.
type Validator struct {
	fetcher *fetch.Client
	sources *store.SourceRepo
	logger  *zap.Logger
	policy  retry.Policy
	workers int
}

// Summary reports one validation run.
type Summary struct {
	Validated   int
	Active      int
	Inactive    int
	Unreachable int
	Failed      int
}

// New builds a validation stage.
func New(fetcher *fetch.Client, sources *store.SourceRepo, policy retry.Policy, workers int, logger *zap.Logger) *Validator {
	if workers <= 0 {
		workers = 3
	}
	return &Validator{
		fetcher: fetcher,
		sources: sources,
		logger:  logger,
		policy:  policy,
		workers: workers,
	}
}

// Run validates every source in the repository across the worker pool.
// Per-source failures are logged and never abort the batch; whatever was
// committed survives a stage timeout.
func (v *Validator) Run(ctx context.Context) (*Summary, error) {
	all := v.sources.All()
	summary := &Summary{}

	workers := pool.New(v.workers, len(all))
	results := workers.Run(ctx)

	for _, src := range all {
		src := src
		workers.Submit(func(ctx context.Context) error {
			return v.validateOne(ctx, src)
		})
	}
	workers.Close()

	for result := range results {
		summary.Validated++
		if result.Err != nil {
			summary.Failed++
			v.logger.Warn("source validation failed", zap.Error(result.Err))
		}
	}

	for _, src := range v.sources.All() {
		switch src.Status {
		case tracker.StatusActive:
			summary.Active++
		case tracker.StatusInactive:
			summary.Inactive++
		case tracker.StatusUnreachable:
			summary.Unreachable++
		}
	}

	if err := v.sources.Flush(); err != nil {
		return summary, fmt.Errorf("flushing sources: %w", err)
	}

	v.logger.Info("validation done",
		zap.Int("validated", summary.Validated),
		zap.Int("active", summary.Active),
		zap.Int("inactive", summary.Inactive),
		zap.Int("unreachable", summary.Unreachable),
	)
	return summary, nil
}

// validateOne runs the full probe sequence for a single source and commits
// the outcome. Only the validator mutates status, careers URL, activity score
// and priority.
func (v *Validator) validateOne(ctx context.Context, src *tracker.Source) error {
	root, err := v.fetchWithRetry(ctx, src.Website)
	if err != nil {
		src.Status = tracker.StatusUnreachable
		src.ActivityScore = nil
		src.Priority = tracker.DerivePriority(src.Status, nil)
		if putErr := v.sources.Put(src); putErr != nil {
			return fmt.Errorf("source %s: %w", src.ID, putErr)
		}
		v.logger.Info("source unreachable",
			zap.String("source_id", src.ID),
			zap.String("website", src.Website),
			zap.Error(err),
		)
		return nil
	}

	careersURL, careersPage := v.locateCareers(ctx, src, root)

	var signals Signals
	if careersPage != nil {
		src.CareersURL = careersURL
		src.Status = tracker.StatusActive
		signals = MeasureSignals(careersPage)
	} else {
		// No resolvable careers page caps the source at inactive.
		src.Status = tracker.StatusInactive
		signals = Signals{JobCount: 0, Freshness: freshnessSignal(root.LastModified), Latency: latencySignal(root.Latency)}
	}

	score := ActivityScore(signals)
	src.ActivityScore = &score
	src.Priority = tracker.DerivePriority(src.Status, src.ActivityScore)

	if err := v.sources.Put(src); err != nil {
		return fmt.Errorf("source %s: %w", src.ID, err)
	}

	v.logger.Debug("source validated",
		zap.String("source_id", src.ID),
		zap.String("status", string(src.Status)),
		zap.Int("activity_score", score),
		zap.String("priority", string(src.Priority)),
	)
	return nil
}

// locateCareers resolves the careers page: the recorded URL first, then an
// in-page anchor scan of the site root, then conventional path probes.
func (v *Validator) locateCareers(ctx context.Context, src *tracker.Source, root *fetch.Page) (string, *fetch.Page) {
	if src.CareersURL != "" && src.CareersURL != src.Website {
		if page, err := v.fetchWithRetry(ctx, src.CareersURL); err == nil && page.StatusCode == 200 {
			return src.CareersURL, page
		}
	}

	if found := scanForCareersLink(root.Body, src.Website); found != "" {
		if page, err := v.fetchWithRetry(ctx, found); err == nil && page.StatusCode == 200 {
			return found, page
		}
	}

	for _, path := range careersPaths {
		candidate := tracker.ResolveURL(src.Website, path)
		if !v.fetcher.Probe(ctx, candidate) {
			continue
		}
		if page, err := v.fetchWithRetry(ctx, candidate); err == nil && page.StatusCode == 200 {
			return candidate, page
		}
	}

	return "", nil
}

func (v *Validator) fetchWithRetry(ctx context.Context, pageURL string) (*fetch.Page, error) {
	var page *fetch.Page
	err := v.policy.Do(ctx, func() error {
		var err error
		page, err = v.fetcher.Get(ctx, pageURL)
		return err
	})
	return page, err
}

// scanForCareersLink finds the first same-host anchor whose href or text
// looks careers-like.
func scanForCareersLink(body, website string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	base, err := url.Parse(website)
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if !careersLinkPattern.MatchString(href) && !careersLinkPattern.MatchString(text) {
			return true
		}

		resolved := tracker.ResolveURL(website, href)
		target, err := url.Parse(resolved)
		if err != nil || !strings.EqualFold(target.Hostname(), base.Hostname()) {
			return true
		}

		found = resolved
		return false
	})
	return found
}
