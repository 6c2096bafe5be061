package analytics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// DefaultTopN is the ranking length used when none is given.
const DefaultTopN = 10

// RankMode selects the value local authorities are ranked by.
type RankMode string

// Ranking modes
const (
	RankTotal     RankMode = "total"
	RankPerCapita RankMode = "per_capita"
)

// ErrUnknownRankMode is returned for a mode other than total or per_capita.
var ErrUnknownRankMode = errors.New("unknown ranking mode")

// ParseRankMode maps a query value to a RankMode; empty means total.
func ParseRankMode(s string) (RankMode, error) {
	switch RankMode(s) {
	case "", RankTotal:
		return RankTotal, nil
	case RankPerCapita:
		return RankPerCapita, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRankMode, s)
}

// RankEntry is one local authority in a ranking. Value is the ranked figure:
// the benefit sum in total mode, the per-capita benefit in per_capita mode.
type RankEntry struct {
	LocalAuthority string  `json:"local_authority"`
	Value          float64 `json:"value"`
	BenefitTotal   float64 `json:"benefit_total"`
	Population     float64 `json:"population"`
}

type laTotals struct {
	benefit    float64
	population float64
}

// Rank groups main by local authority and returns the topN entries by mode,
// highest first. Equal values are ordered by local authority name. In
// per_capita mode authorities with no positive population or a non-positive
// per-capita value are left out. Regions without a local authority are not
// ranked. topN <= 0 means DefaultTopN.
func Rank(main []models.Region, benefit string, mode RankMode, topN int) ([]RankEntry, error) {
	if mode != RankTotal && mode != RankPerCapita {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRankMode, mode)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	groups := make(map[string]*laTotals)
	for _, r := range main {
		if r.LocalAuthority == "" {
			continue
		}
		g, ok := groups[r.LocalAuthority]
		if !ok {
			g = &laTotals{}
			groups[r.LocalAuthority] = g
		}
		addFinite(&g.benefit, r.Benefit(benefit))
		addFinite(&g.population, r.Population)
	}

	entries := make([]RankEntry, 0, len(groups))
	for la, g := range groups {
		e := RankEntry{
			LocalAuthority: la,
			Value:          g.benefit,
			BenefitTotal:   g.benefit,
			Population:     g.population,
		}
		if mode == RankPerCapita {
			if g.population <= 0 {
				continue
			}
			e.Value = g.benefit * perCapitaScale / g.population
			if e.Value <= 0 {
				continue
			}
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].LocalAuthority < entries[j].LocalAuthority
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}
