package models

// TrendRecord is one small area × category row of the forecast table.
// Values align with TrendTable.Years.
type TrendRecord struct {
	SmallArea string
	Category  string
	Values    []float64
}

// TrendTable holds forecast rows in wide form.
type TrendTable struct {
	Years []string
	Rows  []TrendRecord
}

// Len returns the number of rows.
func (t *TrendTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// DetailRecord is one small area × category × damage type value.
type DetailRecord struct {
	SmallArea  string
	Category   string
	DamageType string
	Value      float64
}

// DetailTable is optional; an empty table is a valid state.
type DetailTable struct {
	Rows []DetailRecord
}

// Empty reports whether no detail rows were loaded.
func (t *DetailTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Dataset is the read-only result of a load.
type Dataset struct {
	Regions *RegionTable
	Trends  *TrendTable
	Details *DetailTable
}
