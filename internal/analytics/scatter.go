package analytics

import (
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// ScatterPoint is one local authority's population against its benefit.
type ScatterPoint struct {
	LocalAuthority string  `json:"local_authority"`
	Nation         string  `json:"nation"`
	Population     float64 `json:"population"`
	Value          float64 `json:"value"`
}

// Scatter groups main by local authority, summing population and benefit and
// keeping the first known nation. Points are ordered by local authority.
func Scatter(main []models.Region, benefit string) []ScatterPoint {
	index := make(map[string]int)
	points := []ScatterPoint{}

	for _, r := range main {
		if r.LocalAuthority == "" {
			continue
		}
		i, ok := index[r.LocalAuthority]
		if !ok {
			i = len(points)
			index[r.LocalAuthority] = i
			points = append(points, ScatterPoint{LocalAuthority: r.LocalAuthority})
		}
		p := &points[i]
		addFinite(&p.Population, r.Population)
		addFinite(&p.Value, r.Benefit(benefit))
		if p.Nation == "" {
			p.Nation = r.Nation
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].LocalAuthority < points[j].LocalAuthority
	})
	return points
}
