// Package analytics implements the filter and aggregation steps that sit
// between the loaded dataset and the charts. Every function is a pure
// transformation of its inputs; none of them mutate the dataset.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// Selection errors
var (
	ErrEmptySelection = errors.New("at least one nation must be selected")
	ErrUnknownBenefit = errors.New("unknown benefit category")
	ErrUnknownNation  = errors.New("unknown nation")
)

// Selection is the user's filter: a set of nations and one benefit category.
type Selection struct {
	Nations []string `json:"nations"`
	Benefit string   `json:"benefit"`
}

// AreaSet is a set of small-area identifiers.
type AreaSet map[string]struct{}

// Has reports whether area is in the set. A nil set contains nothing.
func (s AreaSet) Has(area string) bool {
	_, ok := s[area]
	return ok
}

// FilterResult is the nation-filtered subset of the region table.
type FilterResult struct {
	Main []models.Region
	// ValidAreas holds the distinct small areas of Main.
	ValidAreas AreaSet
	// Areas lists ValidAreas in order of first appearance.
	Areas []string
}

// Filter keeps the regions whose nation is selected and collects their small
// areas. The selection must name at least one nation and a known category.
func Filter(table *models.RegionTable, sel Selection) (*FilterResult, error) {
	if len(sel.Nations) == 0 {
		return nil, ErrEmptySelection
	}
	if !table.HasCategory(sel.Benefit) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBenefit, sel.Benefit)
	}

	known := make(map[string]struct{})
	for _, n := range table.Nations() {
		known[n] = struct{}{}
	}
	selected := make(map[string]struct{}, len(sel.Nations))
	for _, n := range sel.Nations {
		if _, ok := known[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNation, n)
		}
		selected[n] = struct{}{}
	}

	result := &FilterResult{
		Main:       []models.Region{},
		ValidAreas: AreaSet{},
		Areas:      []string{},
	}
	for _, r := range table.Rows {
		if _, ok := selected[r.Nation]; !ok {
			continue
		}
		result.Main = append(result.Main, r)
		if !result.ValidAreas.Has(r.SmallArea) {
			result.ValidAreas[r.SmallArea] = struct{}{}
			result.Areas = append(result.Areas, r.SmallArea)
		}
	}
	return result, nil
}

// DefaultNations picks the initial nation selection: preferred when the
// domain offers it, otherwise the first nation alphabetically. domain must be
// sorted. An empty domain yields no selection.
func DefaultNations(domain []string, preferred string) []string {
	for _, n := range domain {
		if n == preferred {
			return []string{preferred}
		}
	}
	if len(domain) == 0 {
		return nil
	}
	return []string{domain[0]}
}

// DefaultBenefit returns preferred if it is a category, else the first one.
func DefaultBenefit(categories []string, preferred string) string {
	for _, c := range categories {
		if c == preferred {
			return c
		}
	}
	if len(categories) == 0 {
		return ""
	}
	return categories[0]
}

// sum adds values, skipping missing ones.
func sum(rows []models.Region, value func(models.Region) float64) float64 {
	var total float64
	for _, r := range rows {
		if v := value(r); !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

func benefitOf(category string) func(models.Region) float64 {
	return func(r models.Region) float64 { return r.Benefit(category) }
}

func totalOf(r models.Region) float64 { return r.Total }

func populationOf(r models.Region) float64 { return r.Population }

// addFinite adds v to *acc unless v is missing.
func addFinite(acc *float64, v float64) {
	if !math.IsNaN(v) {
		*acc += v
	}
}
