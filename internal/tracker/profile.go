package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CandidateProfile is the read-only candidate input to scoring.
type CandidateProfile struct {
	Skills              []string `json:"skills"`
	Roles               []string `json:"roles"`
	ExperienceLevel     string   `json:"experience_level"`
	LocationPreferences []string `json:"location_preferences"`
	DealBreakers        []string `json:"deal_breakers"`
	NiceToHaves         []string `json:"nice_to_haves"`
	MinScore            float64  `json:"min_score"`
}

// LoadProfile reads a candidate profile from a JSON file.
func LoadProfile(path string) (*CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate profile %q: %w", path, err)
	}
	var profile CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing candidate profile %q: %w", path, err)
	}
	if len(profile.Skills) == 0 && len(profile.Roles) == 0 {
		return nil, fmt.Errorf("candidate profile %q lists no skills or roles", path)
	}
	return &profile, nil
}

// Version returns a stable fingerprint of the profile contents. Match results
// are keyed by (listing id, profile version), so a changed profile supersedes
// earlier scores instead of overwriting them.
func (p *CandidateProfile) Version() string {
	data, err := json.Marshal(p)
	if err != nil {
		return "unversioned"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}

// HasDealBreaker reports whether any deal-breaker term appears in the text.
// Deal-breakers are hard constraints, not a factor to be weighed.
func (p *CandidateProfile) HasDealBreaker(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, term := range p.DealBreakers {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}
