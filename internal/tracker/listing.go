package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Platform is the applicant-tracking system detected behind a careers page.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformGeneric    Platform = "generic"
	PlatformUnknown    Platform = "unknown"
)

// Listing is a single job posting discovered at a source. The identifier is a
// stable hash of the source id and normalized posting URL, so re-extraction of
// the same posting is idempotent.
type Listing struct {
	ID              string
	SourceID        string
	Title           string
	URL             string
	Platform        Platform
	FirstSeen       time.Time
	LastSeen        time.Time
	PrefilterPassed bool
}

// ListingID derives the stable listing identifier.
func ListingID(sourceID, normalizedURL string) string {
	sum := sha256.Sum256([]byte(sourceID + "\n" + normalizedURL))
	return hex.EncodeToString(sum[:])[:16]
}

// NewListing builds a listing for its first sighting.
func NewListing(sourceID, title, rawURL string, platform Platform, now time.Time) *Listing {
	normalized := NormalizeURL(rawURL)
	return &Listing{
		ID:        ListingID(sourceID, normalized),
		SourceID:  sourceID,
		Title:     NormalizeTitle(title),
		URL:       normalized,
		Platform:  platform,
		FirstSeen: now.UTC(),
		LastSeen:  now.UTC(),
	}
}

// Validate checks the invariants that must hold before a listing row is committed.
func (l *Listing) Validate() error {
	if l.ID == "" || l.SourceID == "" {
		return fmt.Errorf("%w: listing id/source id is empty", ErrValidationFailed)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: listing %s has an empty title", ErrValidationFailed, l.ID)
	}
	if l.URL == "" {
		return fmt.Errorf("%w: listing %s has an empty url", ErrValidationFailed, l.ID)
	}
	return nil
}

// NormalizeTitle trims and collapses internal whitespace. Original casing is
// preserved; case-folding happens only at comparison sites.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// NormalizeURL lowercases scheme and host and drops fragments and trailing
// slashes so the same posting always hashes to the same listing id.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(rawURL, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// ResolveURL makes href absolute against the page it was found on.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
