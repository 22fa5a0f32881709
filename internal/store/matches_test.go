package store

import (
	"testing"
	"time"

	"jobradar/internal/tracker"
)

func testResult(listingID, version string, score float64) *tracker.MatchResult {
	return &tracker.MatchResult{
		ListingID:      listingID,
		Score:          score,
		Reasoning:      "strong skill overlap",
		Confidence:     tracker.ConfidenceHigh,
		Method:         tracker.MethodAI,
		ProfileVersion: version,
		ScoredAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPutRefusesOverwrite(t *testing.T) {
	repo, err := OpenMatches(tempPath(t, "matches.csv"))
	if err != nil {
		t.Fatal(err)
	}

	created, err := repo.Put(testResult("l-1", "v1", 8.5))
	if err != nil || !created {
		t.Fatalf("first put: created=%v err=%v", created, err)
	}

	created, err = repo.Put(testResult("l-1", "v1", 2.0))
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second put for the same key reported as created")
	}

	if got := repo.All()[0].Score; got != 8.5 {
		t.Errorf("stored row overwritten, score = %v", got)
	}
}

func TestNewProfileVersionSupersedes(t *testing.T) {
	repo, err := OpenMatches(tempPath(t, "matches.csv"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Put(testResult("l-1", "v1", 8.5)); err != nil {
		t.Fatal(err)
	}
	if repo.Has("l-1", "v2") {
		t.Error("Has() true for unseen profile version")
	}

	created, err := repo.Put(testResult("l-1", "v2", 6.0))
	if err != nil || !created {
		t.Fatalf("new version put: created=%v err=%v", created, err)
	}
	if got := len(repo.All()); got != 2 {
		t.Errorf("supersession replaced instead of adding, %d rows", got)
	}
}

func TestMatchRoundTrip(t *testing.T) {
	path := tempPath(t, "matches.csv")

	repo, err := OpenMatches(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Put(testResult("l-1", "v1", 8.5)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Flush(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenMatches(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Has("l-1", "v1") {
		t.Fatal("row lost across reopen")
	}
	got := reopened.All()[0]
	if got.Score != 8.5 || got.Method != tracker.MethodAI || got.Reasoning == "" {
		t.Errorf("row mutated across reopen: %+v", got)
	}
}

func TestPutRejectsInvalidResult(t *testing.T) {
	repo, err := OpenMatches(tempPath(t, "matches.csv"))
	if err != nil {
		t.Fatal(err)
	}

	bad := testResult("l-1", "v1", 11.0)
	if _, err := repo.Put(bad); err == nil {
		t.Error("out-of-range score accepted")
	}

	bad = testResult("l-1", "v1", 5.0)
	bad.Reasoning = " "
	if _, err := repo.Put(bad); err == nil {
		t.Error("empty reasoning accepted")
	}
}
