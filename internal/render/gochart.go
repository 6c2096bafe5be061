package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/stwalsh4118/cobenefits/internal/analytics"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	healthColor    = drawing.Color{R: 0xEF, G: 0x55, B: 0x3B, A: 0xFF}
	nonHealthColor = drawing.Color{R: 0x63, G: 0x6E, B: 0xFA, A: 0xFF}
)

// paddedRange returns a chart range around [min, max] that is never empty.
func paddedRange(min, max float64) *chart.ContinuousRange {
	if min == max {
		pad := math.Max(math.Abs(min)*0.1, 1)
		return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
	}
	pad := (max - min) * 0.05
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}

// barRange always includes zero so bars start from the axis.
func barRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = 1
	}
	return &chart.ContinuousRange{Min: lo * 1.1, Max: hi * 1.1}
}

func yearValue(year string) (float64, bool) {
	if len(year) < 4 {
		return 0, false
	}
	v, err := strconv.ParseFloat(year[:4], 64)
	return v, err == nil
}

// Trend draws one line per nation across the forecast years.
func Trend(w io.Writer, title string, points []analytics.TrendPoint, size Size) error {
	if len(points) == 0 {
		return ErrNoData
	}

	byNation := make(map[string]*chart.ContinuousSeries)
	var nations []string
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)

	for _, p := range points {
		x, ok := yearValue(p.Year)
		if !ok {
			continue
		}
		s, seen := byNation[p.Nation]
		if !seen {
			s = &chart.ContinuousSeries{Name: p.Nation}
			byNation[p.Nation] = s
			nations = append(nations, p.Nation)
		}
		s.XValues = append(s.XValues, x)
		s.YValues = append(s.YValues, p.Value)
		xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
		yMin, yMax = math.Min(yMin, p.Value), math.Max(yMax, p.Value)
	}
	if len(nations) == 0 {
		return ErrNoData
	}
	sort.Strings(nations)

	series := make([]chart.Series, 0, len(nations))
	for i, n := range nations {
		s := byNation[n]
		s.Style = chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.GetDefaultColor(i),
			DotWidth:    3,
			DotColor:    chart.GetDefaultColor(i),
		}
		series = append(series, *s)
	}

	size = size.orDefault()
	ch := chart.Chart{
		Title:      title,
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: paddedRange(xMin, xMax),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "£ million",
			Range: paddedRange(yMin, yMax),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func bars(w io.Writer, title string, values []chart.Value, size Size) error {
	if len(values) == 0 {
		return ErrNoData
	}
	size = size.orDefault()

	raw := make([]float64, len(values))
	for i, v := range values {
		raw[i] = v.Value
	}
	barWidth := (size.Width - 120) / (2 * len(values))
	barWidth = max(8, min(60, barWidth))

	bc := chart.BarChart{
		Title:        title,
		Width:        size.Width,
		Height:       size.Height,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     barWidth,
		BarSpacing:   barWidth / 2,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        chart.YAxis{Range: barRange(raw)},
		Bars:         values,
	}
	return bc.Render(chart.PNG, w)
}

// Ranking draws the ranked local authorities, highest first.
func Ranking(w io.Writer, title string, entries []analytics.RankEntry, size Size) error {
	values := make([]chart.Value, len(entries))
	for i, e := range entries {
		values[i] = chart.Value{Label: e.LocalAuthority, Value: e.Value}
	}
	return bars(w, title, values, size)
}

// Comparison draws every benefit category's total.
func Comparison(w io.Writer, title string, totals []analytics.CategoryTotal, size Size) error {
	values := make([]chart.Value, len(totals))
	for i, t := range totals {
		values[i] = chart.Value{Label: analytics.Title(t.Category), Value: t.Total}
	}
	return bars(w, title, values, size)
}

// HeadToHead draws the two sides of a matchup.
func HeadToHead(w io.Writer, title string, m *analytics.Matchup, size Size) error {
	if m == nil {
		return ErrNoData
	}
	return bars(w, title, []chart.Value{
		{Label: m.A.LocalAuthority, Value: m.A.Value, Style: chart.Style{FillColor: chart.GetDefaultColor(0), StrokeColor: chart.GetDefaultColor(0)}},
		{Label: m.B.LocalAuthority, Value: m.B.Value, Style: chart.Style{FillColor: chart.GetDefaultColor(1), StrokeColor: chart.GetDefaultColor(1)}},
	}, size)
}

// Breakdown draws the damage-type split as a pie. Only positive slices can be
// drawn; a breakdown without any is reported as ErrNoData.
func Breakdown(w io.Writer, title string, b *analytics.Breakdown, size Size) error {
	if b == nil || !b.Available {
		return ErrNoData
	}

	var values []chart.Value
	for i, s := range b.Slices {
		if !(s.Value > 0) {
			continue
		}
		fill := chart.GetDefaultColor(i)
		switch s.DamageType {
		case "health", "Health":
			fill = healthColor
		case "non-health", "non_health", "Non-Health", "Non Health":
			fill = nonHealthColor
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f)", s.DamageType, s.Value),
			Value: s.Value,
			Style: chart.Style{FillColor: fill},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	size = size.orDefault()
	pie := chart.PieChart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}
