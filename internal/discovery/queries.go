package discovery

import "jobradar/internal/tracker"

// Base query terms per sector. Combined with region names into the query set
// handed to the search backend.
var sectorTerms = map[tracker.FocusTag][]string{
	tracker.FocusBlockchain: {
		"blockchain accelerator",
		"web3 accelerator",
		"crypto startup incubator",
	},
	tracker.FocusClimate: {
		"climate tech accelerator",
		"cleantech startup incubator",
	},
	tracker.FocusAI: {
		"ai startup accelerator",
		"machine learning incubator",
	},
}

// A few standalone queries that historically return strong results.
var highValueQueries = []string{
	"blockchain startup accelerator Europe",
	"climate tech accelerator hiring",
	"web3 incubator program",
}

// Queries expands sector/region templates into the concrete query set for one
// discovery run, capped to keep backend quota predictable.
func Queries(sectors []tracker.FocusTag, regions []string, max int) []string {
	seen := make(map[string]bool)
	var queries []string

	add := func(q string) {
		if q == "" || seen[q] {
			return
		}
		seen[q] = true
		queries = append(queries, q)
	}

	for _, sector := range sectors {
		for _, term := range sectorTerms[sector] {
			for _, region := range regions {
				add(term + " " + region)
			}
			if len(regions) == 0 {
				add(term)
			}
		}
	}
	for _, q := range highValueQueries {
		add(q)
	}

	if max > 0 && len(queries) > max {
		queries = queries[:max]
	}
	return queries
}
