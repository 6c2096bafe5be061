package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/cobenefits/internal/analytics"
	"github.com/stwalsh4118/cobenefits/internal/config"
	"github.com/stwalsh4118/cobenefits/internal/logger"
	"github.com/stwalsh4118/cobenefits/internal/models"
)

// Service-level errors
var (
	ErrDatasetUnavailable    = errors.New("dataset unavailable")
	ErrEmptySelection        = analytics.ErrEmptySelection
	ErrUnknownBenefit        = analytics.ErrUnknownBenefit
	ErrUnknownNation         = analytics.ErrUnknownNation
	ErrUnknownLocalAuthority = analytics.ErrUnknownLocalAuthority
	ErrUnknownRankMode       = analytics.ErrUnknownRankMode

	errNoCatalogue = errors.New("no insight catalogue configured")
)

// DatasetProvider hands out the loaded dataset. dataset.Store implements it.
type DatasetProvider interface {
	Get(ctx context.Context) (*models.Dataset, error)
}

// Query is an unresolved selection. A nil Nations slice means the default
// selection; a non-nil empty one is an explicit empty selection. An empty
// Benefit means the default category.
type Query struct {
	Nations []string
	Benefit string
}

// Result pairs an aggregation with the selection it was computed for.
type Result[T any] struct {
	Selection analytics.Selection `json:"selection"`
	Data      T                   `json:"data"`
}

// FilterOptions describes the selectable domain of the loaded dataset.
type FilterOptions struct {
	Nations          []string `json:"nations"`
	DefaultNations   []string `json:"default_nations"`
	Benefits         []string `json:"benefits"`
	DefaultBenefit   string   `json:"default_benefit"`
	LocalAuthorities []string `json:"local_authorities"`
	HasPopulation    bool     `json:"has_population"`
	HasBreakdown     bool     `json:"has_breakdown"`
	Years            []string `json:"years"`
}

// DashboardService defines the dashboard's business operations.
type DashboardService interface {
	// Ready loads the dataset if needed and reports a load failure.
	Ready(ctx context.Context) error
	Filters(ctx context.Context) (*FilterOptions, error)
	KPIs(ctx context.Context, q Query) (*Result[analytics.KPI], error)
	Trend(ctx context.Context, q Query) (*Result[[]analytics.TrendPoint], error)
	Ranking(ctx context.Context, q Query, mode analytics.RankMode) (*Result[[]analytics.RankEntry], error)
	Correlation(ctx context.Context, q Query) (*Result[*analytics.Correlation], error)
	Scatter(ctx context.Context, q Query) (*Result[[]analytics.ScatterPoint], error)
	// HeadToHead compares two local authorities over the unfiltered table.
	// Empty names fall back to the first two authorities alphabetically.
	HeadToHead(ctx context.Context, q Query, a, b string) (*Result[*analytics.Matchup], error)
	Breakdown(ctx context.Context, q Query) (*Result[*analytics.Breakdown], error)
	Comparison(ctx context.Context, q Query) (*Result[[]analytics.CategoryTotal], error)
	Insight(ctx context.Context, q Query) (*Result[*analytics.Insight], error)
	Dashboard(ctx context.Context, q Query, a, b string) (*analytics.Dashboard, error)
}

type dashboardService struct {
	data      DatasetProvider
	cfg       config.DashboardConfig
	catalogue *analytics.Catalogue
	log       *logger.Logger
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(data DatasetProvider, cfg config.DashboardConfig, catalogue *analytics.Catalogue, log *logger.Logger) DashboardService {
	return &dashboardService{
		data:      data,
		cfg:       cfg,
		catalogue: catalogue,
		log:       log,
	}
}

// scope is a resolved, validated selection over a loaded dataset.
type scope struct {
	ds       *models.Dataset
	sel      analytics.Selection
	filtered *analytics.FilterResult
}

func (s *dashboardService) dataset(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	return ds, nil
}

func (s *dashboardService) Ready(ctx context.Context) error {
	_, err := s.dataset(ctx)
	return err
}

// resolve applies defaults to q and runs the filter.
func (s *dashboardService) resolve(ctx context.Context, q Query) (*scope, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	sel := analytics.Selection{Benefit: strings.TrimSpace(q.Benefit)}
	if q.Nations == nil {
		sel.Nations = analytics.DefaultNations(ds.Regions.Nations(), s.cfg.DefaultNation)
	} else {
		sel.Nations = cleanNations(q.Nations)
	}
	if sel.Benefit == "" {
		sel.Benefit = analytics.DefaultBenefit(ds.Regions.Categories, s.cfg.DefaultBenefit)
	}

	filtered, err := analytics.Filter(ds.Regions, sel)
	if err != nil {
		s.log.Warn("Selection rejected", map[string]interface{}{
			"nations": sel.Nations,
			"benefit": sel.Benefit,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.log.Debug("Selection resolved", map[string]interface{}{
		"nations": sel.Nations,
		"benefit": sel.Benefit,
		"regions": len(filtered.Main),
		"areas":   len(filtered.Areas),
	})
	return &scope{ds: ds, sel: sel, filtered: filtered}, nil
}

// cleanNations trims names and drops blanks and repeats, keeping order.
func cleanNations(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (s *dashboardService) Filters(ctx context.Context) (*FilterOptions, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	nations := ds.Regions.Nations()
	years := []string{}
	if ds.Trends != nil {
		years = append(years, ds.Trends.Years...)
	}
	return &FilterOptions{
		Nations:          nations,
		DefaultNations:   analytics.DefaultNations(nations, s.cfg.DefaultNation),
		Benefits:         append([]string{}, ds.Regions.Categories...),
		DefaultBenefit:   analytics.DefaultBenefit(ds.Regions.Categories, s.cfg.DefaultBenefit),
		LocalAuthorities: ds.Regions.LocalAuthorities(),
		HasPopulation:    ds.Regions.HasPopulation,
		HasBreakdown:     !ds.Details.Empty(),
		Years:            years,
	}, nil
}

func (s *dashboardService) KPIs(ctx context.Context, q Query) (*Result[analytics.KPI], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	kpi := analytics.KPIs(sc.filtered.Main, sc.sel.Benefit, sc.ds.Regions.HasPopulation)
	return &Result[analytics.KPI]{Selection: sc.sel, Data: kpi}, nil
}

func (s *dashboardService) Trend(ctx context.Context, q Query) (*Result[[]analytics.TrendPoint], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	points := analytics.Trend(sc.ds.Trends, sc.ds.Regions, sc.sel.Benefit, sc.filtered.ValidAreas)
	if len(points) == 0 {
		s.log.Info("No trend data for selection", map[string]interface{}{
			"nations": sc.sel.Nations,
			"benefit": sc.sel.Benefit,
		})
	}
	return &Result[[]analytics.TrendPoint]{Selection: sc.sel, Data: points}, nil
}

func (s *dashboardService) Ranking(ctx context.Context, q Query, mode analytics.RankMode) (*Result[[]analytics.RankEntry], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	entries, err := analytics.Rank(sc.filtered.Main, sc.sel.Benefit, mode, s.cfg.RankingTopN)
	if err != nil {
		return nil, err
	}
	return &Result[[]analytics.RankEntry]{Selection: sc.sel, Data: entries}, nil
}

func (s *dashboardService) Correlation(ctx context.Context, q Query) (*Result[*analytics.Correlation], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	corr, err := analytics.Correlations(sc.filtered.Main, sc.ds.Regions.Categories, sc.sel.Benefit)
	if err != nil {
		return nil, err
	}
	return &Result[*analytics.Correlation]{Selection: sc.sel, Data: corr}, nil
}

func (s *dashboardService) Scatter(ctx context.Context, q Query) (*Result[[]analytics.ScatterPoint], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Result[[]analytics.ScatterPoint]{
		Selection: sc.sel,
		Data:      analytics.Scatter(sc.filtered.Main, sc.sel.Benefit),
	}, nil
}

func (s *dashboardService) HeadToHead(ctx context.Context, q Query, a, b string) (*Result[*analytics.Matchup], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if da, db, ok := analytics.DefaultPair(sc.ds.Regions); ok {
		if a == "" {
			a = da
		}
		if b == "" {
			b = db
		}
	}

	m, err := analytics.HeadToHead(sc.ds.Regions, sc.sel.Benefit, a, b)
	if err != nil {
		s.log.Warn("Head-to-head rejected", map[string]interface{}{
			"a":     a,
			"b":     b,
			"error": err.Error(),
		})
		return nil, err
	}
	return &Result[*analytics.Matchup]{Selection: sc.sel, Data: m}, nil
}

func (s *dashboardService) Breakdown(ctx context.Context, q Query) (*Result[*analytics.Breakdown], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Result[*analytics.Breakdown]{
		Selection: sc.sel,
		Data:      analytics.DamageBreakdown(sc.ds.Details, sc.sel.Benefit, sc.filtered.ValidAreas),
	}, nil
}

func (s *dashboardService) Comparison(ctx context.Context, q Query) (*Result[[]analytics.CategoryTotal], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	return &Result[[]analytics.CategoryTotal]{
		Selection: sc.sel,
		Data:      analytics.Compare(sc.filtered.Main, sc.ds.Regions.Categories),
	}, nil
}

func (s *dashboardService) Insight(ctx context.Context, q Query) (*Result[*analytics.Insight], error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.catalogue == nil {
		return nil, errNoCatalogue
	}

	kpi := analytics.KPIs(sc.filtered.Main, sc.sel.Benefit, sc.ds.Regions.HasPopulation)
	corr, err := analytics.Correlations(sc.filtered.Main, sc.ds.Regions.Categories, sc.sel.Benefit)
	if err != nil {
		return nil, err
	}
	insight, err := s.catalogue.Render(kpi, corr)
	if err != nil {
		return nil, fmt.Errorf("failed to render insight: %w", err)
	}
	return &Result[*analytics.Insight]{Selection: sc.sel, Data: insight}, nil
}

func (s *dashboardService) Dashboard(ctx context.Context, q Query, a, b string) (*analytics.Dashboard, error) {
	sc, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}

	d, err := analytics.Build(sc.ds, sc.sel, analytics.Options{
		TopN:      s.cfg.RankingTopN,
		MatchupA:  strings.TrimSpace(a),
		MatchupB:  strings.TrimSpace(b),
		Catalogue: s.catalogue,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Dashboard built", map[string]interface{}{
		"nations":       sc.sel.Nations,
		"benefit":       sc.sel.Benefit,
		"benefit_total": d.KPI.BenefitTotal,
		"trend_points":  len(d.Trend),
		"breakdown":     d.Breakdown.Available,
	})
	return d, nil
}
