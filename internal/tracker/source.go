package tracker

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Status reflects the last validation outcome for a source.
type Status string

const (
	StatusUnvalidated Status = "unvalidated"
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusUnreachable Status = "unreachable"
)

// Priority controls whether a source is worth the cost of extraction.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// FocusTag is a sector focus of a source.
type FocusTag string

const (
	FocusBlockchain FocusTag = "blockchain"
	FocusClimate    FocusTag = "climate"
	FocusAI         FocusTag = "ai"
	FocusOther      FocusTag = "other"
)

// Source is a discovered organization whose careers page is monitored.
// Created by discovery, mutated only by the validator, read-only afterwards.
// Sources are never deleted; stale ones are marked inactive.
type Source struct {
	ID         string
	Name       string
	Website    string
	CareersURL string
	FocusTags  []FocusTag
	Region     string
	Status     Status
	// ActivityScore is 1-10, nil until the source has been validated.
	ActivityScore *int
	Priority      Priority
}

// NewSource builds an unvalidated source with a fresh identifier.
func NewSource(name, website string) *Source {
	return &Source{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Website:  strings.TrimSpace(website),
		Status:   StatusUnvalidated,
		Priority: PriorityLow,
	}
}

// Validate checks the invariants that must hold before a source row is committed.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: source id is empty", ErrValidationFailed)
	}
	if s.Website != "" {
		u, err := url.Parse(s.Website)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: source %s website %q is not a valid url", ErrValidationFailed, s.ID, s.Website)
		}
	}
	if s.ActivityScore != nil && (*s.ActivityScore < 1 || *s.ActivityScore > 10) {
		return fmt.Errorf("%w: source %s activity score %d out of range", ErrValidationFailed, s.ID, *s.ActivityScore)
	}
	if s.ActivityScore != nil && s.Status == StatusUnvalidated {
		return fmt.Errorf("%w: source %s has an activity score but no validation status", ErrValidationFailed, s.ID)
	}
	return nil
}

// Domain returns the normalized website domain used as the deduplication key.
func (s *Source) Domain() string {
	return NormalizeDomain(s.Website)
}

// Extractable reports whether the source should be fed to extraction.
// Unreachable sources are excluded entirely; low priority is skipped.
func (s *Source) Extractable() bool {
	if s.Status == StatusUnreachable {
		return false
	}
	return s.Priority == PriorityHigh || s.Priority == PriorityMedium
}

// MergeTags unions the provided tags into the source, keeping a stable order.
func (s *Source) MergeTags(tags []FocusTag) {
	seen := make(map[FocusTag]bool, len(s.FocusTags)+len(tags))
	for _, t := range s.FocusTags {
		seen[t] = true
	}
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			s.FocusTags = append(s.FocusTags, t)
		}
	}
	sort.Slice(s.FocusTags, func(i, j int) bool { return s.FocusTags[i] < s.FocusTags[j] })
}

// DerivePriority computes the priority tier from status and activity score.
// It is the only way a priority may be assigned.
func DerivePriority(status Status, score *int) Priority {
	if status == StatusUnreachable || status == StatusInactive || score == nil {
		return PriorityLow
	}
	switch {
	case *score >= 7:
		return PriorityHigh
	case *score >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// NormalizeDomain lowercases a URL's host and strips a leading www.
func NormalizeDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(rawURL), "www."))
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ParseFocusTags decodes a comma-joined tag list from the source store.
func ParseFocusTags(joined string) []FocusTag {
	var tags []FocusTag
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		switch FocusTag(part) {
		case FocusBlockchain, FocusClimate, FocusAI, FocusOther:
			tags = append(tags, FocusTag(part))
		}
	}
	return tags
}

// JoinFocusTags encodes tags for the source store.
func JoinFocusTags(tags []FocusTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}
