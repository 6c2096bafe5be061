package frame

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestFrame_AddRejectsMismatchedLengths(t *testing.T) {
	f := New()
	require.NoError(t, f.AddStrings("small_area", []string{"a", "b"}))

	err := f.AddNumbers("sum", []float64{1})
	assert.Error(t, err)

	err = f.AddStrings("small_area", []string{"c", "d"})
	assert.Error(t, err, "duplicate column names are rejected")
}

func TestFrame_Require(t *testing.T) {
	f := New()
	require.NoError(t, f.AddStrings("small_area", []string{"a"}))

	assert.NoError(t, f.Require("small_area"))
	err := f.Require("small_area", "sum")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"sum"`)
}

func TestColumn_Conversions(t *testing.T) {
	num := &Column{Name: "n", Kind: KindNumber, Numbers: []float64{1.5, 2, math.NaN()}}
	assert.Equal(t, "1.5", num.String(0))
	assert.Equal(t, "2", num.String(1))
	assert.Equal(t, "", num.String(2))

	str := &Column{Name: "s", Kind: KindString, Strings: []string{"3.25", "x"}}
	assert.Equal(t, 3.25, str.Number(0))
	assert.True(t, math.IsNaN(str.Number(1)))
}

func TestFromRecords_InfersKinds(t *testing.T) {
	header := []string{"small_area", "sum", "nation", " blank "}
	records := [][]string{
		{"E01", "1.5", "England", ""},
		{"E02", "", "Wales"},
	}

	f, err := FromRecords(header, records)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"small_area", "sum", "nation", "blank"}, f.Names())

	sum, ok := f.Column("sum")
	require.True(t, ok)
	assert.Equal(t, KindNumber, sum.Kind)
	assert.Equal(t, 1.5, sum.Numbers[0])
	assert.True(t, math.IsNaN(sum.Numbers[1]))

	nation, _ := f.Column("nation")
	assert.Equal(t, KindString, nation.Kind)

	blank, _ := f.Column("blank")
	assert.Equal(t, KindString, blank.Kind, "all-empty columns stay textual")
	assert.Equal(t, []string{"", ""}, blank.Strings)
}

func TestReadCSV(t *testing.T) {
	input := "small_area,co_benefit_type,2025,2030\nE01,air_quality,1,2\nE02,air_quality,3,\n"

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())

	y2030, ok := f.Column("2030")
	require.True(t, ok)
	assert.Equal(t, KindNumber, y2030.Kind)
	assert.Equal(t, 2.0, y2030.Numbers[0])
	assert.True(t, math.IsNaN(y2030.Numbers[1]))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

type parquetRegion struct {
	SmallArea  string   `parquet:"small_area"`
	Sum        float64  `parquet:"sum"`
	AirQuality float64  `parquet:"air_quality"`
	Households int64    `parquet:"households"`
	Population *float64 `parquet:"population,optional"`
}

func TestReadParquet(t *testing.T) {
	pop := 1500.0
	rows := []parquetRegion{
		{SmallArea: "E01", Sum: 2.5, AirQuality: 1.25, Households: 40, Population: &pop},
		{SmallArea: "E02", Sum: 4, AirQuality: 0.5, Households: 12},
	}

	var buf bytes.Buffer
	require.NoError(t, parquet.Write(&buf, rows))

	f, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())

	area, ok := f.Column("small_area")
	require.True(t, ok)
	assert.Equal(t, KindString, area.Kind)
	assert.Equal(t, []string{"E01", "E02"}, area.Strings)

	households, _ := f.Column("households")
	assert.Equal(t, KindNumber, households.Kind)
	assert.Equal(t, []float64{40, 12}, households.Numbers)

	population, _ := f.Column("population")
	assert.Equal(t, 1500.0, population.Numbers[0])
	assert.True(t, math.IsNaN(population.Numbers[1]))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.xlsx")

	book := xlsx.NewFile()
	sheet, err := book.AddSheet("lookup")
	require.NoError(t, err)
	for _, rec := range [][]interface{}{
		{"small_area", "local_authority", "nation", "population"},
		{"E01", "Leeds", "England", 1200},
		{"W01", "Cardiff", "Wales", 800},
	} {
		row := sheet.AddRow()
		for _, v := range rec {
			cell := row.AddCell()
			switch val := v.(type) {
			case string:
				cell.SetString(val)
			case int:
				cell.SetInt(val)
			}
		}
	}
	require.NoError(t, book.Save(path))

	f, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())

	population, ok := f.Column("population")
	require.True(t, ok)
	assert.Equal(t, KindNumber, population.Kind)
	assert.Equal(t, []float64{1200, 800}, population.Numbers)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "missing"})
	assert.Error(t, err)

	_, err = ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
