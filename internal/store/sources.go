package store

import (
	"fmt"
	"strconv"
	"sync"

	"jobradar/internal/tracker"
)

var sourceColumns = []string{
	"id", "name", "website", "careers_url", "focus_tags",
	"region", "status", "activity_score", "priority",
}

// SourceRepo is the CSV-backed repository of discovered organizations.
// Rows are keyed by source id; updates are id-scoped so partial batch
// failures never clobber unrelated rows. Sources are never deleted.
type SourceRepo struct {
	path string

	mu    sync.Mutex
	byID  map[string]*tracker.Source
	order []string
}

// OpenSources loads the source table from path, creating an empty repository
// when the file does not exist yet.
func OpenSources(path string) (*SourceRepo, error) {
	repo := &SourceRepo{
		path: path,
		byID: make(map[string]*tracker.Source),
	}

	rows, err := readTable(path, len(sourceColumns))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		src := &tracker.Source{
			ID:         row[0],
			Name:       row[1],
			Website:    row[2],
			CareersURL: row[3],
			FocusTags:  tracker.ParseFocusTags(row[4]),
			Region:     row[5],
			Status:     tracker.Status(row[6]),
			Priority:   tracker.Priority(row[8]),
		}
		if row[7] != "" {
			score, err := strconv.Atoi(row[7])
			if err != nil {
				return nil, fmt.Errorf("%w: source %s activity score %q", tracker.ErrMalformedResponse, src.ID, row[7])
			}
			src.ActivityScore = &score
		}
		repo.byID[src.ID] = src
		repo.order = append(repo.order, src.ID)
	}
	return repo, nil
}

// All returns the sources in stable insertion order.
func (r *SourceRepo) All() []*tracker.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*tracker.Source, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.byID[id]
		out = append(out, &clone)
	}
	return out
}

// Get returns the source with the given id, or nil.
func (r *SourceRepo) Get(id string) *tracker.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.byID[id]
	if !ok {
		return nil
	}
	clone := *src
	return &clone
}

// FindByDomain returns the source whose website matches the normalized domain.
func (r *SourceRepo) FindByDomain(domain string) *tracker.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.byID[id].Domain() == domain {
			clone := *r.byID[id]
			return &clone
		}
	}
	return nil
}

// Put validates and inserts or replaces the row for src.ID.
func (r *SourceRepo) Put(src *tracker.Source) error {
	if err := src.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *src
	if _, exists := r.byID[clone.ID]; !exists {
		r.order = append(r.order, clone.ID)
	}
	r.byID[clone.ID] = &clone
	return nil
}

// Merge folds a freshly discovered candidate into an existing row with the
// same website domain: focus tags are unioned and the more specific careers
// URL wins. When no row matches, the candidate is inserted as-is.
func (r *SourceRepo) Merge(candidate *tracker.Source) (*tracker.Source, bool, error) {
	if err := candidate.Validate(); err != nil {
		return nil, false, err
	}

	existing := r.FindByDomain(candidate.Domain())
	if existing == nil {
		if err := r.Put(candidate); err != nil {
			return nil, false, err
		}
		return candidate, true, nil
	}

	existing.MergeTags(candidate.FocusTags)
	if moreSpecificCareersURL(candidate.CareersURL, existing.CareersURL, existing.Website) {
		existing.CareersURL = candidate.CareersURL
	}
	if existing.Region == "" {
		existing.Region = candidate.Region
	}
	if err := r.Put(existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Flush writes the whole table atomically.
func (r *SourceRepo) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]string, 0, len(r.order))
	for _, id := range r.order {
		src := r.byID[id]
		score := ""
		if src.ActivityScore != nil {
			score = strconv.Itoa(*src.ActivityScore)
		}
		rows = append(rows, []string{
			src.ID, src.Name, src.Website, src.CareersURL,
			tracker.JoinFocusTags(src.FocusTags), src.Region,
			string(src.Status), score, string(src.Priority),
		})
	}
	return writeTable(r.path, sourceColumns, rows)
}

// moreSpecificCareersURL prefers a careers URL that is set and not just the
// site root over an unset one or the bare website.
func moreSpecificCareersURL(candidate, current, website string) bool {
	if candidate == "" || candidate == current {
		return false
	}
	if current == "" || current == website {
		return true
	}
	return false
}
