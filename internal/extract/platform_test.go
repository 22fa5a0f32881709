package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"jobradar/internal/tracker"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestDetectPlatformByURL(t *testing.T) {
	cases := []struct {
		url  string
		want tracker.Platform
	}{
		{"https://boards.greenhouse.io/acme", tracker.PlatformGreenhouse},
		{"https://jobs.lever.co/acme", tracker.PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/careers", tracker.PlatformWorkday},
		{"https://acme.example/careers", tracker.PlatformGeneric},
	}

	empty := parseDoc(t, "<html></html>")
	for _, tc := range cases {
		if got := DetectPlatform(tc.url, empty); got != tc.want {
			t.Errorf("DetectPlatform(%q) = %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestDetectPlatformByFingerprint(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="opening"><a href="/jobs/1">Engineer</a></div>
	</body></html>`)

	if got := DetectPlatform("https://acme.example/careers", doc); got != tracker.PlatformGreenhouse {
		t.Errorf("greenhouse fingerprint detected as %s", got)
	}
}

func TestStrategyCascadeEndsInGeneric(t *testing.T) {
	for _, platform := range []tracker.Platform{
		tracker.PlatformGreenhouse, tracker.PlatformLever,
		tracker.PlatformWorkday, tracker.PlatformGeneric,
	} {
		chain := strategyFor(platform)
		if len(chain) == 0 {
			t.Fatalf("%s has no strategies", platform)
		}
		if chain[len(chain)-1].Name() != "generic" {
			t.Errorf("%s cascade does not end in generic", platform)
		}
	}
}

func TestSelectorStrategyExtractsPostings(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="opening"><a href="/jobs/1">Senior Engineer</a></div>
		<div class="opening"><a href="/jobs/2">Product Manager</a></div>
	</body></html>`)

	chain := strategyFor(tracker.PlatformGreenhouse)
	postings := chain[0].Attempt(doc, "https://acme.example/careers")
	if len(postings) != 2 {
		t.Fatalf("%d postings, want 2", len(postings))
	}
	if postings[0].Title != "Senior Engineer" {
		t.Errorf("title = %q", postings[0].Title)
	}
	if postings[0].URL != "https://acme.example/jobs/1" {
		t.Errorf("url = %q", postings[0].URL)
	}
}

func TestGenericStrategyFindsPostingSections(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav><a href="/about">About</a></nav>
		<section class="open-positions">
			<a href="/jobs/ops">Operations Lead</a>
			<a href="/jobs/eng">Platform Engineer</a>
		</section>
	</body></html>`)

	postings := (&genericStrategy{}).Attempt(doc, "https://acme.example/careers")
	if len(postings) != 2 {
		t.Fatalf("%d postings, want 2: %v", len(postings), postings)
	}
}
