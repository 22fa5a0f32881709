package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"jobradar/internal/search"
	"jobradar/internal/store"
	"jobradar/internal/tracker"
)

type stubSearcher struct {
	results map[string][]*search.Result
	err     error
}

func (s *stubSearcher) Query(ctx context.Context, query string) ([]*search.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubProber struct {
	alive map[string]bool
}

func (p *stubProber) Probe(ctx context.Context, url string) bool {
	return p.alive[url]
}

func openTestSources(t *testing.T) *store.SourceRepo {
	t.Helper()
	repo, err := store.OpenSources(filepath.Join(t.TempDir(), "sources.csv"))
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestRunRecordsAndMergesSources(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]*search.Result{
		"q1": {
			{
				Title:   "GreenChain Labs - Blockchain Accelerator",
				Link:    "https://greenchain.example",
				Snippet: "Climate-focused blockchain startup accelerator in Berlin",
			},
		},
		"q2": {
			{
				Title:   "GreenChain Labs",
				Link:    "https://www.greenchain.example/about",
				Snippet: "web3 incubator",
			},
			{
				Title:   "Broken result",
				Link:    "",
				Snippet: "no link here",
			},
		},
	}}
	prober := &stubProber{alive: map[string]bool{
		"https://greenchain.example/careers": true,
	}}
	sources := openTestSources(t)

	stage := New(searcher, prober, sources, zap.NewNop())
	summary, err := stage.Run(context.Background(), []string{"q1", "q2"})
	if err != nil {
		t.Fatal(err)
	}

	if summary.Added != 1 || summary.Merged != 1 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}

	all := sources.All()
	if len(all) != 1 {
		t.Fatalf("%d sources recorded, want 1", len(all))
	}

	src := all[0]
	if src.Name != "GreenChain Labs" {
		t.Errorf("org name = %q", src.Name)
	}
	if src.Status != tracker.StatusUnvalidated {
		t.Errorf("discovery assigned status %s", src.Status)
	}
	if src.CareersURL != "https://greenchain.example/careers" {
		t.Errorf("careers url = %q", src.CareersURL)
	}
	if src.Region != "Germany" {
		t.Errorf("region = %q", src.Region)
	}

	tags := tracker.JoinFocusTags(src.FocusTags)
	if !strings.Contains(tags, "blockchain") || !strings.Contains(tags, "climate") {
		t.Errorf("focus tags = %q", tags)
	}
}

func TestRunBackendFailureIsFatal(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("backend down")}
	sources := openTestSources(t)

	stage := New(searcher, &stubProber{}, sources, zap.NewNop())
	if _, err := stage.Run(context.Background(), []string{"q1"}); err == nil {
		t.Fatal("dead backend did not fail the stage")
	}
}

func TestFocusTagsDefaultToOther(t *testing.T) {
	tags := FocusTags("A generic consulting firm")
	if len(tags) != 1 || tags[0] != tracker.FocusOther {
		t.Errorf("FocusTags = %v", tags)
	}
}

func TestRegionIsDeterministic(t *testing.T) {
	text := "Offices in Berlin and Paris"
	first := Region(text)
	for i := 0; i < 20; i++ {
		if got := Region(text); got != first {
			t.Fatalf("Region flapped: %q vs %q", got, first)
		}
	}
}

func TestQueriesCapAndDedupe(t *testing.T) {
	queries := Queries([]tracker.FocusTag{tracker.FocusBlockchain, tracker.FocusAI}, []string{"Germany", "India"}, 5)
	if len(queries) != 5 {
		t.Fatalf("%d queries, want 5", len(queries))
	}

	seen := make(map[string]bool)
	for _, q := range queries {
		if seen[q] {
			t.Errorf("duplicate query %q", q)
		}
		seen[q] = true
	}
}
