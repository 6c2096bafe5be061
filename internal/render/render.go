// Package render draws the dashboard aggregations as PNG charts.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/stwalsh4118/cobenefits/internal/analytics"
)

// ErrNoData is returned when an aggregation has nothing to draw. Callers show
// an "unavailable" notice instead of a chart.
var ErrNoData = errors.New("no data to chart")

// ErrUnknownChart is returned for a chart name that is not in Charts.
var ErrUnknownChart = errors.New("unknown chart")

// Chart names a dashboard chart.
type Chart string

// Dashboard charts
const (
	ChartTrend            Chart = "trend"
	ChartRanking          Chart = "ranking"
	ChartRankingPerCapita Chart = "ranking-per-capita"
	ChartCorrelation      Chart = "correlation"
	ChartScatter          Chart = "scatter"
	ChartHeadToHead       Chart = "head-to-head"
	ChartBreakdown        Chart = "breakdown"
	ChartComparison       Chart = "comparison"
)

// Charts lists every chart in display order.
var Charts = []Chart{
	ChartTrend,
	ChartRanking,
	ChartRankingPerCapita,
	ChartCorrelation,
	ChartScatter,
	ChartHeadToHead,
	ChartBreakdown,
	ChartComparison,
}

// ParseChart validates a chart name.
func ParseChart(name string) (Chart, error) {
	for _, c := range Charts {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Size is a chart's pixel size.
type Size struct {
	Width  int
	Height int
}

// DefaultSize suits a dashboard tile.
var DefaultSize = Size{Width: 1024, Height: 576}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Dashboard writes chart c of d to w.
func Dashboard(w io.Writer, c Chart, d *analytics.Dashboard, size Size) error {
	size = size.orDefault()
	benefit := analytics.Title(d.Selection.Benefit)

	switch c {
	case ChartTrend:
		return Trend(w, benefit+" forecast", d.Trend, size)
	case ChartRanking:
		return Ranking(w, "Top local authorities: "+benefit, d.RankingTotal, size)
	case ChartRankingPerCapita:
		return Ranking(w, "Top local authorities per capita: "+benefit, d.RankingPerCapita, size)
	case ChartCorrelation:
		return Correlation(w, "Correlation with "+benefit, d.Correlation, size)
	case ChartScatter:
		return Scatter(w, "Population vs "+benefit, d.Scatter, size)
	case ChartHeadToHead:
		return HeadToHead(w, "Head-to-head: "+benefit, d.Matchup, size)
	case ChartBreakdown:
		return Breakdown(w, benefit+" by damage type", d.Breakdown, size)
	case ChartComparison:
		return Comparison(w, "Total value by benefit", d.Comparison, size)
	}
	return fmt.Errorf("%w: %q", ErrUnknownChart, c)
}
