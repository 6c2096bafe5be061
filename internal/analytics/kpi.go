package analytics

import (
	"github.com/stwalsh4118/cobenefits/internal/models"
)

// perCapitaScale converts millions to whole currency units.
const perCapitaScale = 1e6

// KPI holds the headline figures for a selection. Totals are in millions.
type KPI struct {
	Benefit      string   `json:"benefit"`
	BenefitTotal float64  `json:"benefit_total"`
	GrandTotal   float64  `json:"grand_total"`
	Population   float64  `json:"population"`
	PerCapita    *float64 `json:"per_capita,omitempty"`
	SharePercent float64  `json:"share_percent"`
}

// KPIs sums the selected category and the total column over main. PerCapita
// is only reported when the table carries population, and is 0 when the
// population sum is not positive.
func KPIs(main []models.Region, benefit string, hasPopulation bool) KPI {
	kpi := KPI{
		Benefit:      benefit,
		BenefitTotal: sum(main, benefitOf(benefit)),
		GrandTotal:   sum(main, totalOf),
	}
	kpi.SharePercent = percent(kpi.BenefitTotal, kpi.GrandTotal)

	if hasPopulation {
		kpi.Population = sum(main, populationOf)
		pc := ratioPerCapita(kpi.BenefitTotal, kpi.Population)
		kpi.PerCapita = &pc
	}
	return kpi
}

func ratioPerCapita(total, population float64) float64 {
	if population <= 0 {
		return 0
	}
	return total * perCapitaScale / population
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
