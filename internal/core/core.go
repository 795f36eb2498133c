package core

import (
	"fmt"
	"strings"
)

// Tier is the importance tier assigned to an article.
type Tier string

const (
	TierCritical Tier = "critical"
	TierStandard Tier = "standard"
	TierMinor    Tier = "minor"
)

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierCritical:
		return TierCritical, nil
	case TierStandard:
		return TierStandard, nil
	case TierMinor:
		return TierMinor, nil
	}
	return "", fmt.Errorf("unknown importance tier %q", s)
}

// Budget is the number of dedicated slides an article of this tier may occupy.
// Minor articles get none; they are rolled into a roundup slide.
func (t Tier) Budget() int {
	switch t {
	case TierCritical:
		return 2
	case TierStandard:
		return 1
	default:
		return 0
	}
}

// Metadata carries optional caller-supplied hints about an article.
type Metadata struct {
	ImportanceHint string `json:"importance_hint,omitempty"` // manual override, one of the tier names
	Source         string `json:"source,omitempty"`
}

// Article is one briefing item parsed out of the uploaded document.
type Article struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Scores holds the raw classifier scores behind a tier decision.
type Scores struct {
	Critical int `json:"critical"`
	Standard int `json:"standard"`
	Minor    int `json:"minor"`
}

// Classification is the classifier verdict for a single article.
type Classification struct {
	Title    string `json:"title"`
	Tier     Tier   `json:"tier"`
	Scores   Scores `json:"scores"`
	Override bool   `json:"override,omitempty"` // tier came from Metadata.ImportanceHint
	Words    int    `json:"words"`
}

// Budget is a shortcut for c.Tier.Budget().
func (c Classification) Budget() int {
	return c.Tier.Budget()
}
