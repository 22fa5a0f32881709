package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobradar/internal/tracker"
)

// Posting is a raw (title, URL) pair yielded by a strategy before
// normalization and filtering.
type Posting struct {
	Title string
	URL   string
}

// Strategy attempts one structural extraction approach against a careers
// page. Returning an empty slice means the structure did not match; the
// cascade falls through to the next strategy.
type Strategy interface {
	Name() string
	Attempt(doc *goquery.Document, baseURL string) []Posting
}

// selectorStrategy pulls postings out of a fixed selector set. One per ATS.
type selectorStrategy struct {
	name      string
	selectors []string
}

func (s *selectorStrategy) Name() string { return s.name }

func (s *selectorStrategy) Attempt(doc *goquery.Document, baseURL string) []Posting {
	var postings []Posting
	for _, selector := range s.selectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			postings = append(postings, postingFromSelection(sel, baseURL))
		})
		if len(postings) > 0 {
			break
		}
	}
	return postings
}

// postingFromSelection reads the title and link from a matched element,
// descending to the first anchor when the element itself is not one.
func postingFromSelection(sel *goquery.Selection, baseURL string) Posting {
	link := sel
	if !sel.Is("a") {
		if inner := sel.Find("a").First(); inner.Length() > 0 {
			link = inner
		}
	}

	title := strings.TrimSpace(link.Text())
	if title == "" {
		title = strings.TrimSpace(sel.Text())
	}

	href, _ := link.Attr("href")
	return Posting{
		Title: title,
		URL:   tracker.ResolveURL(baseURL, href),
	}
}

var genericSectionPattern = regexp.MustCompile(`(?i)job|career|position|opening`)

var genericCareersHrefs = []string{"/careers", "/jobs", "/opportunities", "/open-positions"}

// genericStrategy is the last structural fallback: anchors inside
// posting-like sections first, then careers-path anchors anywhere on the page.
type genericStrategy struct{}

func (s *genericStrategy) Name() string { return "generic" }

func (s *genericStrategy) Attempt(doc *goquery.Document, baseURL string) []Posting {
	var postings []Posting

	doc.Find("div, section, ul").Each(func(_ int, section *goquery.Selection) {
		class, _ := section.Attr("class")
		if !genericSectionPattern.MatchString(class) {
			return
		}
		section.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			postings = append(postings, postingFromSelection(link, baseURL))
		})
	})
	if len(postings) > 0 {
		return postings
	}

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		lower := strings.ToLower(href)
		for _, marker := range genericCareersHrefs {
			if strings.Contains(lower, marker) {
				postings = append(postings, postingFromSelection(link, baseURL))
				break
			}
		}
	})
	return postings
}

// strategyFor returns the cascade for a detected platform: the tailored
// strategy first, the generic fallback last. The chain stops at the first
// strategy yielding a plausible result, trading precision for resilience to
// markup drift.
func strategyFor(platform tracker.Platform) []Strategy {
	generic := &genericStrategy{}

	switch platform {
	case tracker.PlatformGreenhouse:
		return []Strategy{&selectorStrategy{
			name:      "greenhouse",
			selectors: []string{".opening a", "[data-job]"},
		}, generic}
	case tracker.PlatformLever:
		return []Strategy{&selectorStrategy{
			name:      "lever",
			selectors: []string{".posting-title a", "[data-qa='posting-title']"},
		}, generic}
	case tracker.PlatformWorkday:
		return []Strategy{&selectorStrategy{
			name:      "workday",
			selectors: []string{"[data-automation-id='jobPostingTitle'] a"},
		}, generic}
	default:
		return []Strategy{generic}
	}
}
