package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/cobenefits/internal/models"
)

var nan = math.NaN()

func region(area, la, nation string, population, total float64, benefits map[string]float64) models.Region {
	pc := 0.0
	if population > 0 {
		pc = total * 1e6 / population
	}
	return models.Region{
		SmallArea:      area,
		LocalAuthority: la,
		Nation:         nation,
		Population:     population,
		Total:          total,
		PerCapita:      pc,
		Benefits:       benefits,
	}
}

// testRegions is a small table spanning three nations plus an unmatched row.
func testRegions() *models.RegionTable {
	return &models.RegionTable{
		Categories:        []string{"physical_activity", "air_quality", "noise"},
		HasLocalAuthority: true,
		HasNation:         true,
		HasPopulation:     true,
		Rows: []models.Region{
			region("E01", "Leeds", "England", 1_000_000, 200, map[string]float64{"physical_activity": 100, "air_quality": 10, "noise": 1}),
			region("E02", "Leeds", "England", 0, 20, map[string]float64{"physical_activity": 0, "air_quality": 20, "noise": 2}),
			region("E03", "York", "England", 100_000, 40, map[string]float64{"physical_activity": 30, "air_quality": 30, "noise": 3}),
			region("S01", "Glasgow", "Scotland", 100_000, 60, map[string]float64{"physical_activity": 50, "air_quality": 40, "noise": 4}),
			region("W01", "Cardiff", "Wales", 50_000, 10, map[string]float64{"physical_activity": nan, "air_quality": 5, "noise": 5}),
			region("X01", "", "", nan, 5, map[string]float64{"physical_activity": 1, "air_quality": 1, "noise": 6}),
		},
	}
}

func TestFilter(t *testing.T) {
	table := testRegions()

	result, err := Filter(table, Selection{Nations: []string{"England", "Wales"}, Benefit: "air_quality"})
	require.NoError(t, err)

	assert.Len(t, result.Main, 4)
	for _, r := range result.Main {
		assert.Contains(t, []string{"England", "Wales"}, r.Nation)
	}
	assert.Equal(t, []string{"E01", "E02", "E03", "W01"}, result.Areas)
	assert.Len(t, result.ValidAreas, 4)
	assert.True(t, result.ValidAreas.Has("W01"))
	assert.False(t, result.ValidAreas.Has("S01"))
	assert.False(t, result.ValidAreas.Has("X01"))
}

func TestFilter_DuplicateAreasCountedOnce(t *testing.T) {
	table := testRegions()
	table.Rows = append(table.Rows, table.Rows[0])

	result, err := Filter(table, Selection{Nations: []string{"England"}, Benefit: "noise"})
	require.NoError(t, err)
	assert.Len(t, result.Main, 4)
	assert.Equal(t, []string{"E01", "E02", "E03"}, result.Areas)
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	table := testRegions()
	before := len(table.Rows)

	_, err := Filter(table, Selection{Nations: []string{"Scotland"}, Benefit: "noise"})
	require.NoError(t, err)
	assert.Len(t, table.Rows, before)
}

func TestFilter_Errors(t *testing.T) {
	table := testRegions()

	tests := []struct {
		name string
		sel  Selection
		want error
	}{
		{name: "no nations", sel: Selection{Benefit: "noise"}, want: ErrEmptySelection},
		{name: "empty nations", sel: Selection{Nations: []string{}, Benefit: "noise"}, want: ErrEmptySelection},
		{name: "unknown benefit", sel: Selection{Nations: []string{"England"}, Benefit: "sum"}, want: ErrUnknownBenefit},
		{name: "unknown nation", sel: Selection{Nations: []string{"Atlantis"}, Benefit: "noise"}, want: ErrUnknownNation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Filter(table, tt.sel)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultNations(t *testing.T) {
	assert.Equal(t,
		[]string{"United Kingdom (All)"},
		DefaultNations([]string{"England", "United Kingdom (All)", "Wales"}, "United Kingdom (All)"))
	assert.Equal(t,
		[]string{"England"},
		DefaultNations([]string{"England", "Wales"}, "United Kingdom (All)"))
	assert.Nil(t, DefaultNations(nil, "United Kingdom (All)"))
}

func TestDefaultBenefit(t *testing.T) {
	assert.Equal(t, "physical_activity", DefaultBenefit([]string{"air_quality", "physical_activity"}, "physical_activity"))
	assert.Equal(t, "air_quality", DefaultBenefit([]string{"air_quality", "noise"}, "physical_activity"))
	assert.Equal(t, "", DefaultBenefit(nil, "physical_activity"))
}
