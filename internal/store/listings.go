package store

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"jobradar/internal/tracker"
)

var listingColumns = []string{
	"id", "source_id", "title", "url", "platform",
	"first_seen", "last_seen", "prefilter_passed",
}

// ListingRepo is the CSV-backed repository of extracted job listings.
type ListingRepo struct {
	path string

	mu    sync.Mutex
	byID  map[string]*tracker.Listing
	order []string
}

// OpenListings loads the listing table from path.
func OpenListings(path string) (*ListingRepo, error) {
	repo := &ListingRepo{
		path: path,
		byID: make(map[string]*tracker.Listing),
	}

	rows, err := readTable(path, len(listingColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		firstSeen, err := time.Parse(time.RFC3339, row[5])
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s first_seen %q", tracker.ErrMalformedResponse, row[0], row[5])
		}
		lastSeen, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s last_seen %q", tracker.ErrMalformedResponse, row[0], row[6])
		}
		passed, err := strconv.ParseBool(row[7])
		if err != nil {
			return nil, fmt.Errorf("%w: listing %s prefilter_passed %q", tracker.ErrMalformedResponse, row[0], row[7])
		}
		listing := &tracker.Listing{
			ID:              row[0],
			SourceID:        row[1],
			Title:           row[2],
			URL:             row[3],
			Platform:        tracker.Platform(row[4]),
			FirstSeen:       firstSeen,
			LastSeen:        lastSeen,
			PrefilterPassed: passed,
		}
		repo.byID[listing.ID] = listing
		repo.order = append(repo.order, listing.ID)
	}
	return repo, nil
}

// Record commits a sighting of the listing. On first sighting the listing is
// inserted as given; on re-sighting only last_seen moves forward, guarding
// title and platform against transient extraction noise. Returns true when
// the listing was new.
func (r *ListingRepo) Record(listing *tracker.Listing, now time.Time) (bool, error) {
	if err := listing.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[listing.ID]; ok {
		existing.LastSeen = now.UTC()
		return false, nil
	}

	clone := *listing
	r.byID[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	return true, nil
}

// All returns the listings in stable insertion order.
func (r *ListingRepo) All() []*tracker.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*tracker.Listing, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.byID[id]
		out = append(out, &clone)
	}
	return out
}

// Get returns the listing with the given id, or nil.
func (r *ListingRepo) Get(id string) *tracker.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.byID[id]
	if !ok {
		return nil
	}
	clone := *listing
	return &clone
}

// Scorable returns listings that passed the pre-filter. Failed listings stay
// in the store for audit but never reach the scorer.
func (r *ListingRepo) Scorable() []*tracker.Listing {
	var out []*tracker.Listing
	for _, listing := range r.All() {
		if listing.PrefilterPassed {
			out = append(out, listing)
		}
	}
	return out
}

// Flush writes the whole table atomically.
func (r *ListingRepo) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]string, 0, len(r.order))
	for _, id := range r.order {
		l := r.byID[id]
		rows = append(rows, []string{
			l.ID, l.SourceID, l.Title, l.URL, string(l.Platform),
			l.FirstSeen.UTC().Format(time.RFC3339),
			l.LastSeen.UTC().Format(time.RFC3339),
			strconv.FormatBool(l.PrefilterPassed),
		})
	}
	return writeTable(r.path, listingColumns, rows)
}
