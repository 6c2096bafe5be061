package analytics

import (
	"sort"
	"strings"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// Damage type labels after normalization.
const (
	damageHealth    = "health"
	damageNonHealth = "non-health"
)

// DamageSlice is the summed value of one damage type.
type DamageSlice struct {
	DamageType string  `json:"damage_type"`
	Value      float64 `json:"value"`
}

// Breakdown splits a benefit by damage type. Available is false when the
// detail table is empty or nothing matches the selection; Slices is then
// empty and HealthShare nil.
type Breakdown struct {
	Benefit     string        `json:"benefit"`
	Available   bool          `json:"available"`
	Slices      []DamageSlice `json:"slices"`
	HealthShare *float64      `json:"health_share,omitempty"`
}

// DamageBreakdown groups the detail rows of benefit within valid by damage
// type. When a health slice is present HealthShare is
// health / (health + non-health) * 100, or 0 for a zero denominator.
func DamageBreakdown(details *models.DetailTable, benefit string, valid AreaSet) *Breakdown {
	out := &Breakdown{Benefit: benefit, Slices: []DamageSlice{}}
	if details.Empty() {
		return out
	}

	sums := make(map[string]float64)
	for _, row := range details.Rows {
		if row.Category != benefit || !valid.Has(row.SmallArea) {
			continue
		}
		acc := sums[row.DamageType]
		addFinite(&acc, row.Value)
		sums[row.DamageType] = acc
	}
	if len(sums) == 0 {
		return out
	}

	out.Available = true
	var health, nonHealth float64
	hasHealth := false
	for damage, v := range sums {
		out.Slices = append(out.Slices, DamageSlice{DamageType: damage, Value: v})
		switch normalizeDamage(damage) {
		case damageHealth:
			health += v
			hasHealth = true
		case damageNonHealth:
			nonHealth += v
		}
	}
	sort.Slice(out.Slices, func(i, j int) bool {
		return out.Slices[i].DamageType < out.Slices[j].DamageType
	})

	if hasHealth {
		var share float64
		if denom := health + nonHealth; denom != 0 {
			share = health / denom * 100
		}
		out.HealthShare = &share
	}
	return out
}

// normalizeDamage folds "Non_Health", "non health" and "non-health" together.
func normalizeDamage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
