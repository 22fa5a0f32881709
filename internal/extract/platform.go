package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobradar/internal/tracker"
)

// URL substrings that identify the hosting ATS directly.
var platformURLMarkers = []struct {
	marker   string
	platform tracker.Platform
}{
	{"greenhouse.io", tracker.PlatformGreenhouse},
	{"lever.co", tracker.PlatformLever},
	{"myworkdayjobs.com", tracker.PlatformWorkday},
	{"workday.com", tracker.PlatformWorkday},
}

// Structural fingerprints checked when the URL is inconclusive. A platform is
// only claimed when its selector actually matches the document.
var platformFingerprints = []struct {
	selector string
	platform tracker.Platform
}{
	{".opening a", tracker.PlatformGreenhouse},
	{".posting-title a", tracker.PlatformLever},
	{"[data-qa='posting-title']", tracker.PlatformLever},
	{"[data-automation-id='jobPostingTitle']", tracker.PlatformWorkday},
}

// DetectPlatform inspects the careers URL first and the page structure
// second. Anything unrecognized is generic, which routes extraction straight
// to the structural fallback.
func DetectPlatform(careersURL string, doc *goquery.Document) tracker.Platform {
	lower := strings.ToLower(careersURL)
	for _, entry := range platformURLMarkers {
		if strings.Contains(lower, entry.marker) {
			return entry.platform
		}
	}

	if doc != nil {
		for _, entry := range platformFingerprints {
			if doc.Find(entry.selector).Length() > 0 {
				return entry.platform
			}
		}
	}

	return tracker.PlatformGeneric
}
