package analytics

import (
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// TrendPoint is the summed forecast of one nation in one year.
type TrendPoint struct {
	Year   string  `json:"year"`
	Nation string  `json:"nation"`
	Value  float64 `json:"value"`
}

type trendKey struct {
	year   string
	nation string
}

// Trend sums the forecast of benefit per (year, nation) over the small areas
// in valid. Nations come from the region table; rows whose area has no known
// nation are dropped. The result is ordered by year, then nation, and is
// empty rather than nil when nothing matches.
func Trend(trends *models.TrendTable, regions *models.RegionTable, benefit string, valid AreaSet) []TrendPoint {
	points := []TrendPoint{}
	if trends.Len() == 0 {
		return points
	}

	nationOf := regions.NationOf()
	sums := make(map[trendKey]float64)

	for _, row := range trends.Rows {
		if row.Category != benefit || !valid.Has(row.SmallArea) {
			continue
		}
		nation := nationOf[row.SmallArea]
		if nation == "" {
			continue
		}
		for i, year := range trends.Years {
			k := trendKey{year: year, nation: nation}
			acc := sums[k]
			if i < len(row.Values) {
				addFinite(&acc, row.Values[i])
			}
			sums[k] = acc
		}
	}

	for k, v := range sums {
		points = append(points, TrendPoint{Year: k.year, Nation: k.nation, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Nation < points[j].Nation
	})
	return points
}
