package analytics

import (
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// CategoryTotal is the summed value of one benefit category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Compare totals every category over main, largest first.
func Compare(main []models.Region, categories []string) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryTotal{Category: c, Total: sum(main, benefitOf(c))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}
