package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// GrowthRecord is one measured plant individual from the growth workbook,
// tagged with its school sheet and the school's target EC.
type GrowthRecord struct {
	IndividualID string  `json:"individual_id"`
	LeafCount    Float   `json:"leaf_count"`
	ShootLength  Float   `json:"shoot_length"`
	RootLength   Float   `json:"root_length"`
	FreshWeight  Float   `json:"fresh_weight"`
	School       string  `json:"school"`
	ECGoal       float64 `json:"ec_goal"`
}

// GrowthSummary is the per-target-EC aggregate over growth records. ECGoal
// carries the display label produced by ECLabel; downstream code re-parses it
// to recover the owning school, so the formatting must stay stable.
type GrowthSummary struct {
	ECGoal         string `json:"ec_goal"`
	AvgFreshWeight Float  `json:"avg_fresh_weight"`
	AvgLeafCount   Float  `json:"avg_leaf_count"`
	AvgShootLength Float  `json:"avg_shoot_length"`
	Count          int    `json:"count"`
}

// ECLabel renders a numeric EC target as its display label. Whole values keep
// one decimal place so 1.0 becomes "1.0 EC", matching the label format that
// consumers parse back with ParseECLabel.
func ECLabel(goal float64) string {
	s := strconv.FormatFloat(goal, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " EC"
}

// ParseECLabel recovers the numeric EC target from a display label.
func ParseECLabel(label string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(label), " EC")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid EC label %q: %w", label, err)
	}
	return v, nil
}
