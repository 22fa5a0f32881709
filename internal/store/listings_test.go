package store

import (
	"testing"
	"time"

	"jobradar/internal/tracker"
)

func TestRecordFirstAndResighting(t *testing.T) {
	repo, err := OpenListings(tempPath(t, "listings.csv"))
	if err != nil {
		t.Fatal(err)
	}

	seen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	listing := tracker.NewListing("src-1", "Senior Blockchain Engineer", "https://acme.example/jobs/1", tracker.PlatformGeneric, seen)
	listing.PrefilterPassed = true

	created, err := repo.Record(listing, seen)
	if err != nil || !created {
		t.Fatalf("first sighting: created=%v err=%v", created, err)
	}

	later := seen.Add(24 * time.Hour)
	resight := tracker.NewListing("src-1", "Senior Blockchain Engineer", "https://acme.example/jobs/1", tracker.PlatformGeneric, later)

	created, err = repo.Record(resight, later)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("re-sighting reported as new")
	}

	got := repo.Get(listing.ID)
	if !got.FirstSeen.Equal(seen) {
		t.Errorf("first_seen moved: %v", got.FirstSeen)
	}
	if !got.LastSeen.Equal(later) {
		t.Errorf("last_seen not advanced: %v", got.LastSeen)
	}
	if !got.PrefilterPassed {
		t.Error("re-sighting dropped the prefilter flag")
	}
}

func TestScorableFiltersPrefilterFails(t *testing.T) {
	repo, err := OpenListings(tempPath(t, "listings.csv"))
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	passed := tracker.NewListing("src-1", "Blockchain Engineer", "https://acme.example/jobs/1", tracker.PlatformGeneric, now)
	passed.PrefilterPassed = true
	failed := tracker.NewListing("src-1", "Office Manager", "https://acme.example/jobs/2", tracker.PlatformGeneric, now)

	for _, l := range []*tracker.Listing{passed, failed} {
		if _, err := repo.Record(l, now); err != nil {
			t.Fatal(err)
		}
	}

	scorable := repo.Scorable()
	if len(scorable) != 1 || scorable[0].ID != passed.ID {
		t.Errorf("Scorable() = %v", scorable)
	}
	if got := len(repo.All()); got != 2 {
		t.Errorf("failed listing dropped from store, have %d rows", got)
	}
}

func TestListingRoundTrip(t *testing.T) {
	path := tempPath(t, "listings.csv")

	repo, err := OpenListings(path)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	listing := tracker.NewListing("src-1", "Climate Analyst", "https://acme.example/jobs/3", tracker.PlatformLever, now)
	listing.PrefilterPassed = true
	if _, err := repo.Record(listing, now); err != nil {
		t.Fatal(err)
	}
	if err := repo.Flush(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenListings(path)
	if err != nil {
		t.Fatal(err)
	}

	got := reopened.Get(listing.ID)
	if got == nil {
		t.Fatal("row lost across reopen")
	}
	if got.Title != listing.Title || got.Platform != tracker.PlatformLever || !got.PrefilterPassed {
		t.Errorf("row mutated across reopen: %+v", got)
	}
	if !got.FirstSeen.Equal(now) || !got.LastSeen.Equal(now) {
		t.Errorf("timestamps mutated: %v %v", got.FirstSeen, got.LastSeen)
	}
}
