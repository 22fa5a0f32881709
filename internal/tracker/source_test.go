package tracker

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestDerivePriority(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		score  *int
		want   Priority
	}{
		{"active high score", StatusActive, intPtr(8), PriorityHigh},
		{"active boundary high", StatusActive, intPtr(7), PriorityHigh},
		{"active medium", StatusActive, intPtr(5), PriorityMedium},
		{"active boundary medium", StatusActive, intPtr(4), PriorityMedium},
		{"active low score", StatusActive, intPtr(3), PriorityLow},
		{"unreachable ignores score", StatusUnreachable, intPtr(9), PriorityLow},
		{"inactive ignores score", StatusInactive, intPtr(9), PriorityLow},
		{"nil score", StatusActive, nil, PriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePriority(tc.status, tc.score); got != tc.want {
				t.Errorf("DerivePriority(%s, %v) = %s, want %s", tc.status, tc.score, got, tc.want)
			}
		})
	}
}

func TestExtractableExcludesUnreachableAndLow(t *testing.T) {
	cases := []struct {
		status   Status
		priority Priority
		want     bool
	}{
		{StatusActive, PriorityHigh, true},
		{StatusActive, PriorityMedium, true},
		{StatusActive, PriorityLow, false},
		{StatusInactive, PriorityMedium, true},
		{StatusUnreachable, PriorityHigh, false},
	}

	for _, tc := range cases {
		src := &Source{Status: tc.status, Priority: tc.priority}
		if got := src.Extractable(); got != tc.want {
			t.Errorf("Extractable() with status=%s priority=%s = %v, want %v", tc.status, tc.priority, got, tc.want)
		}
	}
}

func TestSourceValidate(t *testing.T) {
	src := NewSource("GreenChain Labs", "https://greenchain.example")
	if err := src.Validate(); err != nil {
		t.Fatalf("valid source rejected: %v", err)
	}

	bad := NewSource("No Scheme", "not a url")
	if err := bad.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("invalid website accepted, err = %v", err)
	}

	scored := NewSource("Scored", "https://scored.example")
	scored.ActivityScore = intPtr(11)
	scored.Status = StatusActive
	if err := scored.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("out-of-range activity score accepted, err = %v", err)
	}

	unvalidated := NewSource("Unvalidated", "https://unvalidated.example")
	unvalidated.ActivityScore = intPtr(5)
	if err := unvalidated.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("score without validation status accepted, err = %v", err)
	}
}

func TestMergeTagsUnionsAndSorts(t *testing.T) {
	src := NewSource("Tagged", "https://tagged.example")
	src.FocusTags = []FocusTag{FocusClimate}

	src.MergeTags([]FocusTag{FocusBlockchain, FocusClimate})

	if len(src.FocusTags) != 2 {
		t.Fatalf("got %d tags, want 2: %v", len(src.FocusTags), src.FocusTags)
	}
	if src.FocusTags[0] != FocusBlockchain || src.FocusTags[1] != FocusClimate {
		t.Errorf("tags not sorted: %v", src.FocusTags)
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.Example.COM/careers", "example.com"},
		{"https://example.com", "example.com"},
		{"http://sub.example.com:8080/x", "sub.example.com"},
	}
	for _, tc := range cases {
		if got := NormalizeDomain(tc.in); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFocusTagsRoundTrip(t *testing.T) {
	tags := []FocusTag{FocusBlockchain, FocusOther}
	got := ParseFocusTags(JoinFocusTags(tags))
	if len(got) != 2 || got[0] != FocusBlockchain || got[1] != FocusOther {
		t.Errorf("round trip gave %v, want %v", got, tags)
	}

	if got := ParseFocusTags("blockchain, bogus ,ai"); len(got) != 2 {
		t.Errorf("unknown tags not dropped: %v", got)
	}
}
