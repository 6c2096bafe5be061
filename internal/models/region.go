package models

import (
	"math"
	"sort"
)

// Source column names shared by the fact tables and the lookup sheet.
const (
	ColSmallArea      = "small_area"
	ColLocalAuthority = "local_authority"
	ColNation         = "nation"
	ColPopulation     = "population"
	ColTotal          = "sum"
	ColHouseholds     = "households"
	ColGeometry       = "geometry"
	ColPerCapita      = "benefit_per_capita"
	ColCategory       = "co_benefit_type"
	ColDamageType     = "damage_type"
	ColValue          = "sum"
)

// ExcludedColumns are numeric region columns that are never offered as
// benefit categories.
var ExcludedColumns = []string{ColTotal, ColPopulation, ColHouseholds, ColGeometry, ColPerCapita}

// IsExcludedColumn reports whether name is housekeeping or derived.
func IsExcludedColumn(name string) bool {
	for _, c := range ExcludedColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Region is one small area of the primary table.
// Monetary values are in millions; PerCapita is in whole currency units.
type Region struct {
	SmallArea      string
	LocalAuthority string // "" when unknown
	Nation         string // "" when unknown
	Population     float64
	Total          float64
	PerCapita      float64
	Benefits       map[string]float64 // NaN marks a missing value
}

// Benefit returns the value of a category column, or NaN when absent.
func (r Region) Benefit(category string) float64 {
	v, ok := r.Benefits[category]
	if !ok {
		return math.NaN()
	}
	return v
}

// RegionTable is the primary table after the lookup join.
type RegionTable struct {
	Rows []Region
	// Categories lists benefit category columns in source order.
	Categories        []string
	HasLocalAuthority bool
	HasNation         bool
	HasPopulation     bool
}

// Len returns the number of rows.
func (t *RegionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasCategory reports whether category is a benefit column.
func (t *RegionTable) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Nations returns the distinct known nations, sorted.
func (t *RegionTable) Nations() []string {
	return distinctSorted(t.Rows, func(r Region) string { return r.Nation })
}

// LocalAuthorities returns the distinct known local authorities, sorted.
func (t *RegionTable) LocalAuthorities() []string {
	return distinctSorted(t.Rows, func(r Region) string { return r.LocalAuthority })
}

// NationOf maps each small area to its nation, first row wins.
func (t *RegionTable) NationOf() map[string]string {
	out := make(map[string]string, len(t.Rows))
	for _, r := range t.Rows {
		if _, seen := out[r.SmallArea]; !seen {
			out[r.SmallArea] = r.Nation
		}
	}
	return out
}

func distinctSorted(rows []Region, key func(Region) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
