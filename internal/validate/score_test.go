package validate

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"jobradar/internal/fetch"
)

func careersPageBody(postings int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="job-listings">`)
	for i := 0; i < postings; i++ {
		fmt.Fprintf(&b, `<a href="/jobs/%d">Engineer %d</a>`, i, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func TestActivityScoreBounds(t *testing.T) {
	if got := ActivityScore(Signals{}); got != 1 {
		t.Errorf("all-zero signals scored %d, want 1", got)
	}
	if got := ActivityScore(Signals{JobCount: 1, Freshness: 1, Latency: 1}); got != 10 {
		t.Errorf("all-max signals scored %d, want 10", got)
	}
	if got := ActivityScore(Signals{JobCount: 5, Freshness: -3, Latency: 2}); got < 1 || got > 10 {
		t.Errorf("out-of-range signals escaped the clamp: %d", got)
	}
}

func TestActivityScoreBusyBoard(t *testing.T) {
	// Twelve postings saturate the job-count signal; moderate latency and no
	// Last-Modified header leave freshness neutral.
	page := &fetch.Page{
		Body:    careersPageBody(12),
		Latency: 800 * time.Millisecond,
	}

	signals := MeasureSignals(page)
	if signals.JobCount != 1.0 {
		t.Errorf("job count signal = %v, want saturated 1.0", signals.JobCount)
	}
	if signals.Freshness != 0.5 {
		t.Errorf("freshness signal = %v, want neutral 0.5", signals.Freshness)
	}

	if got := ActivityScore(signals); got != 8 {
		t.Errorf("busy board scored %d, want 8", got)
	}
}

func TestJobCountSignalExplicitFigure(t *testing.T) {
	body := `<html><body><p>We have 7 open positions right now.</p></body></html>`
	if got := jobCountSignal(body); got != 0.7 {
		t.Errorf("explicit figure signal = %v, want 0.7", got)
	}
}

func TestJobCountSignalATSBump(t *testing.T) {
	plain := `<html><body><p>We are hiring</p></body></html>`
	withATS := `<html><body><p>We are hiring</p><a href="https://boards.greenhouse.io/acme">Jobs</a></body></html>`

	if jobCountSignal(withATS) <= jobCountSignal(plain) {
		t.Error("ATS reference did not bump the job count signal")
	}
}

func TestFreshnessSignal(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want float64
	}{
		{10 * 24 * time.Hour, 1.0},
		{60 * 24 * time.Hour, 0.7},
		{200 * 24 * time.Hour, 0.4},
		{500 * 24 * time.Hour, 0.1},
	}
	for _, tc := range cases {
		if got := freshnessSignal(time.Now().Add(-tc.age)); got != tc.want {
			t.Errorf("freshnessSignal(age=%v) = %v, want %v", tc.age, got, tc.want)
		}
	}
	if got := freshnessSignal(time.Time{}); got != 0.5 {
		t.Errorf("zero Last-Modified scored %v, want neutral 0.5", got)
	}
}

func TestLatencySignal(t *testing.T) {
	if got := latencySignal(0); got != 1.0 {
		t.Errorf("zero latency = %v", got)
	}
	if got := latencySignal(10 * time.Second); got != 0.0 {
		t.Errorf("slow response = %v", got)
	}
	if got := latencySignal(2500 * time.Millisecond); got != 0.5 {
		t.Errorf("mid latency = %v, want 0.5", got)
	}
}
