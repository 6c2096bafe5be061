package analytics

import (
	"github.com/stwalsh4118/cobenefits/internal/models"
)

// Options tune Build. Zero values fall back to defaults; an empty matchup
// side falls back to DefaultPair.
type Options struct {
	TopN      int
	MatchupA  string
	MatchupB  string
	Catalogue *Catalogue
}

// Dashboard is every aggregation for one selection.
type Dashboard struct {
	Selection        Selection       `json:"selection"`
	KPI              KPI             `json:"kpi"`
	Trend            []TrendPoint    `json:"trend"`
	RankingTotal     []RankEntry     `json:"ranking_total"`
	RankingPerCapita []RankEntry     `json:"ranking_per_capita"`
	Correlation      *Correlation    `json:"correlation"`
	Scatter          []ScatterPoint  `json:"scatter"`
	Matchup          *Matchup        `json:"matchup,omitempty"`
	Breakdown        *Breakdown      `json:"breakdown"`
	Comparison       []CategoryTotal `json:"comparison"`
	Insight          *Insight        `json:"insight,omitempty"`
}

// Build filters ds by sel and runs every aggregation over the result.
func Build(ds *models.Dataset, sel Selection, opts Options) (*Dashboard, error) {
	filtered, err := Filter(ds.Regions, sel)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Selection:  sel,
		KPI:        KPIs(filtered.Main, sel.Benefit, ds.Regions.HasPopulation),
		Trend:      Trend(ds.Trends, ds.Regions, sel.Benefit, filtered.ValidAreas),
		Scatter:    Scatter(filtered.Main, sel.Benefit),
		Breakdown:  DamageBreakdown(ds.Details, sel.Benefit, filtered.ValidAreas),
		Comparison: Compare(filtered.Main, ds.Regions.Categories),
	}

	if d.RankingTotal, err = Rank(filtered.Main, sel.Benefit, RankTotal, opts.TopN); err != nil {
		return nil, err
	}
	if d.RankingPerCapita, err = Rank(filtered.Main, sel.Benefit, RankPerCapita, opts.TopN); err != nil {
		return nil, err
	}
	if d.Correlation, err = Correlations(filtered.Main, ds.Regions.Categories, sel.Benefit); err != nil {
		return nil, err
	}

	a, b := opts.MatchupA, opts.MatchupB
	if da, db, ok := DefaultPair(ds.Regions); ok {
		if a == "" {
			a = da
		}
		if b == "" {
			b = db
		}
	}
	if a != "" && b != "" {
		if d.Matchup, err = HeadToHead(ds.Regions, sel.Benefit, a, b); err != nil {
			return nil, err
		}
	}

	if opts.Catalogue != nil {
		if d.Insight, err = opts.Catalogue.Render(d.KPI, d.Correlation); err != nil {
			return nil, err
		}
	}
	return d, nil
}
