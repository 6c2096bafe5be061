package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/stwalsh4118/cobenefits/internal/models"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise Pearson coefficients between categories.
// Undefined coefficients (fewer than two paired values, or a constant
// column) are NaN, except on the diagonal which is always 1.
type CorrelationMatrix struct {
	Categories []string
	Values     [][]float64
}

// Correlate is one category's coefficient against the selected benefit.
type Correlate struct {
	Category    string  `json:"category"`
	Coefficient float64 `json:"coefficient"`
}

// Correlation ranks every category by its correlation with Benefit, highest
// first. The benefit itself is listed with coefficient 1. TopPositive is the
// best other category with a positive coefficient, if any.
type Correlation struct {
	Benefit     string      `json:"benefit"`
	Correlates  []Correlate `json:"correlates"`
	TopPositive *Correlate  `json:"top_positive,omitempty"`
}

// NewCorrelationMatrix computes the matrix over main using, for each pair,
// the rows where both values are present.
func NewCorrelationMatrix(main []models.Region, categories []string) *CorrelationMatrix {
	cols := make([][]float64, len(categories))
	for j, c := range categories {
		cols[j] = make([]float64, len(main))
		for i, r := range main {
			cols[j][i] = r.Benefit(c)
		}
	}

	m := &CorrelationMatrix{
		Categories: append([]string(nil), categories...),
		Values:     make([][]float64, len(categories)),
	}
	for i := range categories {
		m.Values[i] = make([]float64, len(categories))
	}
	for i := range categories {
		m.Values[i][i] = 1
		for j := i + 1; j < len(categories); j++ {
			r := pearson(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearson(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	// rounding can push a perfect fit just past ±1
	return math.Max(-1, math.Min(1, r))
}

// Rank extracts the column for benefit and orders it. Undefined
// coefficients are omitted.
func (m *CorrelationMatrix) Rank(benefit string) (*Correlation, error) {
	idx := -1
	for i, c := range m.Categories {
		if c == benefit {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBenefit, benefit)
	}

	out := &Correlation{Benefit: benefit, Correlates: []Correlate{}}
	for j, c := range m.Categories {
		v := m.Values[j][idx]
		if math.IsNaN(v) {
			continue
		}
		out.Correlates = append(out.Correlates, Correlate{Category: c, Coefficient: v})
	}
	sort.SliceStable(out.Correlates, func(i, j int) bool {
		a, b := out.Correlates[i], out.Correlates[j]
		if a.Coefficient != b.Coefficient {
			return a.Coefficient > b.Coefficient
		}
		if (a.Category == benefit) != (b.Category == benefit) {
			return a.Category == benefit
		}
		return a.Category < b.Category
	})

	for _, c := range out.Correlates {
		if c.Category == benefit || c.Coefficient <= 0 {
			continue
		}
		top := c
		out.TopPositive = &top
		break
	}
	return out, nil
}

// Correlations is NewCorrelationMatrix followed by Rank.
func Correlations(main []models.Region, categories []string, benefit string) (*Correlation, error) {
	return NewCorrelationMatrix(main, categories).Rank(benefit)
}
