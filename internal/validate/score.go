package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobradar/internal/fetch"
)

// Weighted-sum composition of the 1-10 activity score. The weights follow the
// default heuristic split: job-count signal dominates, freshness and latency
// refine it.
const (
	weightJobCount  = 0.60
	weightFreshness = 0.25
	weightLatency   = 0.15

	// jobCountSaturation is the posting count at which the job signal maxes out.
	jobCountSaturation = 10
)

// Posting-like element selectors: the major ATS structures plus generic
// posting containers.
var postingSelectors = []string{
	".opening a",
	".posting-title a",
	"[data-qa='posting-title']",
	"[data-automation-id='jobPostingTitle'] a",
	"div[class*='job'] a", "section[class*='job'] a", "ul[class*='job'] a",
	"div[class*='career'] a", "div[class*='position'] a", "div[class*='opening'] a",
}

var jobCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:open|available|current)\s*(?:position|job|role)`),
	regexp.MustCompile(`(?i)view\s*all\s*(\d+)\s*(?:job|position)`),
}

var hiringPhrases = []string{
	"open position", "job opening", "we are hiring", "join our team",
	"current openings", "available position", "career opportunity", "apply now",
}

var atsDomains = []string{
	"greenhouse.io", "lever.co", "myworkdayjobs.com", "workday.com", "bamboohr.com",
}

// Signals are the normalized [0,1] sub-signals feeding the activity score.
type Signals struct {
	JobCount  float64
	Freshness float64
	Latency   float64
}

// MeasureSignals derives the activity sub-signals from a fetched careers page.
func MeasureSignals(page *fetch.Page) Signals {
	return Signals{
		JobCount:  jobCountSignal(page.Body),
		Freshness: freshnessSignal(page.LastModified),
		Latency:   latencySignal(page.Latency),
	}
}

// ActivityScore combines the sub-signals into the 1-10 scale, clamped.
func ActivityScore(s Signals) int {
	weighted := weightJobCount*clamp01(s.JobCount) +
		weightFreshness*clamp01(s.Freshness) +
		weightLatency*clamp01(s.Latency)

	score := 1 + int(weighted*9)
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// jobCountSignal estimates how many postings the page advertises. The
// strongest of three estimators wins: repeated posting-like elements, an
// explicit "N open positions" figure, or hiring-phrase density. ATS
// references bump the estimate since they imply a live board.
func jobCountSignal(body string) float64 {
	lower := strings.ToLower(body)

	count := postingElementCount(body)

	for _, pattern := range jobCountPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			if n, err := strconv.Atoi(match[1]); err == nil && n > count {
				count = n
			}
		}
	}

	phrases := 0
	for _, phrase := range hiringPhrases {
		if strings.Contains(lower, phrase) {
			phrases++
		}
	}
	if phrases > count {
		count = phrases
	}

	for _, domain := range atsDomains {
		if strings.Contains(lower, domain) {
			count += 2
			break
		}
	}

	if count > jobCountSaturation {
		count = jobCountSaturation
	}
	return float64(count) / jobCountSaturation
}

func postingElementCount(body string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0
	}

	best := 0
	for _, selector := range postingSelectors {
		if n := doc.Find(selector).Length(); n > best {
			best = n
		}
	}
	return best
}

// freshnessSignal maps page age to [0,1]. Pages without a usable
// Last-Modified header score neutral.
func freshnessSignal(lastModified time.Time) float64 {
	if lastModified.IsZero() {
		return 0.5
	}
	age := time.Since(lastModified)
	switch {
	case age < 30*24*time.Hour:
		return 1.0
	case age < 90*24*time.Hour:
		return 0.7
	case age < 365*24*time.Hour:
		return 0.4
	default:
		return 0.1
	}
}

// latencySignal maps response time to [0,1]; 5s and above scores zero.
func latencySignal(latency time.Duration) float64 {
	const worst = 5 * time.Second
	if latency <= 0 {
		return 1.0
	}
	if latency >= worst {
		return 0.0
	}
	return 1.0 - float64(latency)/float64(worst)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
