package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jobradar/internal/search"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

// Careers page suffixes probed when a search result does not already point at
// a careers page.
var careersPaths = []string{
	"/careers", "/jobs", "/career", "/work-with-us", "/join-us",
	"/open-positions", "/opportunities", "/hiring",
}

// Focus tag vocabularies matched against result title + snippet.
var focusVocabulary = map[tracker.FocusTag][]string{
	tracker.FocusBlockchain: {"blockchain", "crypto", "web3", "defi", "nft", "dao", "bitcoin", "ethereum"},
	tracker.FocusClimate:    {"climate", "sustainability", "carbon", "renewable", "clean energy", "cleantech", "environment"},
	tracker.FocusAI:         {"artificial intelligence", "machine learning", " ai ", "deep learning"},
}

// Region keyword table, location mention to region tag.
var regionVocabulary = map[string]string{
	"germany": "Germany", "berlin": "Germany", "munich": "Germany",
	"france": "France", "paris": "France",
	"uk": "United Kingdom", "london": "United Kingdom", "britain": "United Kingdom",
	"netherlands": "Netherlands", "amsterdam": "Netherlands",
	"switzerland": "Switzerland", "zurich": "Switzerland",
	"sweden": "Sweden", "stockholm": "Sweden",
	"estonia": "Estonia", "finland": "Finland", "norway": "Norway", "denmark": "Denmark",
	"spain": "Spain", "madrid": "Spain", "barcelona": "Spain",
	"italy": "Italy", "portugal": "Portugal", "lisbon": "Portugal",
	"india": "India", "mumbai": "India", "bangalore": "India",
	"delhi": "India", "hyderabad": "India", "pune": "India", "chennai": "India",
}

// Searcher is the query side of the search backend.
type Searcher interface {
	Query(ctx context.Context, query string) ([]*search.Result, error)
}

// Prober answers whether a candidate careers URL resolves.
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// Discovery turns search results into source rows.
type Discovery struct {
	searcher Searcher
	prober   Prober
	sources  *store.SourceRepo
	logger   *zap.Logger
}

// Summary reports one discovery run.
type Summary struct {
	Queries int
	Added   int
	Merged  int
	Skipped int
}

// New builds a discovery stage.
func New(searcher Searcher, prober Prober, sources *store.SourceRepo, logger *zap.Logger) *Discovery {
	return &Discovery{
		searcher: searcher,
		prober:   prober,
		sources:  sources,
		logger:   logger,
	}
}

// Run executes the query set and appends/merges candidate sources. A single
// malformed result is skipped and logged; a dead search backend surfaces as a
// stage-fatal error after its retry budget is spent. Committed rows are
// flushed before the error is returned.
func (d *Discovery) Run(ctx context.Context, queries []string) (*Summary, error) {
	summary := &Summary{Queries: len(queries)}

	for i, query := range queries {
		d.logger.Info("discovery query",
			zap.Int("n", i+1),
			zap.Int("total", len(queries)),
			zap.String("query", query),
		)

		results, err := d.searcher.Query(ctx, query)
		if err != nil {
			if flushErr := d.sources.Flush(); flushErr != nil {
				d.logger.Error("flushing sources after backend failure", zap.Error(flushErr))
			}
			return summary, fmt.Errorf("search backend unavailable: %w", err)
		}

		for _, result := range results {
			candidate, err := d.extract(ctx, result)
			if err != nil {
				summary.Skipped++
				d.logger.Warn("skipping malformed search result",
					zap.String("query", query),
					zap.String("link", result.Link),
					zap.Error(err),
				)
				continue
			}

			merged, created, err := d.sources.Merge(candidate)
			if err != nil {
				summary.Skipped++
				d.logger.Warn("skipping invalid candidate source",
					zap.String("website", candidate.Website),
					zap.Error(err),
				)
				continue
			}

			if created {
				summary.Added++
				d.logger.Debug("discovered source",
					zap.String("source_id", merged.ID),
					zap.String("name", merged.Name),
					zap.String("website", merged.Website),
				)
			} else {
				summary.Merged++
			}
		}
	}

	if err := d.sources.Flush(); err != nil {
		return summary, fmt.Errorf("flushing sources: %w", err)
	}

	d.logger.Info("discovery done",
		zap.Int("queries", summary.Queries),
		zap.Int("added", summary.Added),
		zap.Int("merged", summary.Merged),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

// extract normalizes one search result into an unvalidated source.
func (d *Discovery) extract(ctx context.Context, result *search.Result) (*tracker.Source, error) {
	website := strings.TrimSpace(result.Link)
	if website == "" {
		return nil, fmt.Errorf("%w: search result has no link", tracker.ErrMalformedResponse)
	}

	name := orgName(result.Title)
	if name == "" {
		name = tracker.NormalizeDomain(website)
	}

	src := tracker.NewSource(name, website)
	src.FocusTags = FocusTags(result.Title + " " + result.Snippet)
	src.Region = Region(result.Snippet)
	src.CareersURL = d.resolveCareersURL(ctx, website)

	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

// resolveCareersURL probes conventional careers paths under the site and
// returns the first that answers, or empty when none do. The validator gets
// another chance later via an in-page link scan.
func (d *Discovery) resolveCareersURL(ctx context.Context, website string) string {
	for _, path := range careersPaths {
		candidate := tracker.ResolveURL(website, path)
		if candidate == "" {
			continue
		}
		if d.prober.Probe(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

// orgName takes the part of a result title before the first " - " separator.
func orgName(title string) string {
	name, _, _ := strings.Cut(title, " - ")
	return strings.TrimSpace(name)
}

// FocusTags infers sector tags from free text, defaulting to other.
func FocusTags(text string) []tracker.FocusTag {
	padded := " " + strings.ToLower(text) + " "

	var tags []tracker.FocusTag
	for _, tag := range []tracker.FocusTag{tracker.FocusBlockchain, tracker.FocusClimate, tracker.FocusAI} {
		for _, keyword := range focusVocabulary[tag] {
			if strings.Contains(padded, keyword) {
				tags = append(tags, tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		tags = []tracker.FocusTag{tracker.FocusOther}
	}
	return tags
}

// Region infers the geographic region tag from free text. Keywords are
// checked in sorted order so repeated runs agree on multi-region snippets.
func Region(text string) string {
	lower := strings.ToLower(text)
	keywords := make([]string, 0, len(regionVocabulary))
	for keyword := range regionVocabulary {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)

	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return regionVocabulary[keyword]
		}
	}
	return ""
}
