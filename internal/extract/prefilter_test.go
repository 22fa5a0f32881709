package extract

import (
	"testing"

	"jobradar/internal/tracker"
)

func TestValidTitle(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"Senior Blockchain Engineer", true},
		{"Head of Climate Strategy", true},
		{"Marketing Intern", true},
		{"Apply Now", false},
		{"Careers", false},
		{"About Us", false},
		{"12345", false},
		{"->>>", false},
		{"Dev", false}, // too short
		{"Join our accelerator program, application deadline May 1", false},
		{"Somewhere over the rainbow", false}, // no job keyword
	}

	for _, tc := range cases {
		if got := ValidTitle(tc.title); got != tc.want {
			t.Errorf("ValidTitle(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestPrefilterSectorMatch(t *testing.T) {
	blockchain := []tracker.FocusTag{tracker.FocusBlockchain}

	if !Prefilter("Senior Blockchain Engineer", blockchain) {
		t.Error("sector-matching title rejected")
	}
	if Prefilter("Office Manager", blockchain) {
		t.Error("off-sector title passed")
	}
}

func TestPrefilterWordBoundaries(t *testing.T) {
	ai := []tracker.FocusTag{tracker.FocusAI}

	if Prefilter("Software Maintainer Lead", ai) {
		t.Error(`"ai" matched inside "maintainer"`)
	}
	if !Prefilter("AI Research Engineer", ai) {
		t.Error("standalone ai keyword rejected")
	}
}

func TestPrefilterUntaggedPasses(t *testing.T) {
	if !Prefilter("Operations Manager", nil) {
		t.Error("untagged source filtered")
	}
	if !Prefilter("Operations Manager", []tracker.FocusTag{tracker.FocusOther}) {
		t.Error("other-only source filtered")
	}
}
