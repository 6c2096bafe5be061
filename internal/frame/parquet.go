package frame

import (
	"errors"
	"io"
	"math"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/rotisserie/eris"
)

const parquetBatchSize = 512

// parquetColumn accumulates the values of one top-level leaf column.
type parquetColumn struct {
	name    string
	kind    Kind
	numbers []float64
	strings []string
}

// ReadParquet reads a flat parquet file into a frame. Nested and INT96
// columns are skipped. Null values become NaN or "".
func ReadParquet(r io.ReaderAt, size int64) (*Frame, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, eris.Wrap(err, "parquet: open file")
	}

	schema := file.Schema()
	byIndex := make(map[int]*parquetColumn)
	var ordered []*parquetColumn

	for _, path := range schema.Columns() {
		if len(path) != 1 {
			continue
		}
		leaf, ok := schema.Lookup(path...)
		if !ok {
			continue
		}
		col := &parquetColumn{name: path[0]}
		switch leaf.Node.Type().Kind() {
		case parquet.Boolean, parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
			col.kind = KindNumber
		case parquet.ByteArray, parquet.FixedLenByteArray:
			col.kind = KindString
		default:
			continue
		}
		byIndex[leaf.ColumnIndex] = col
		ordered = append(ordered, col)
	}

	reader := parquet.NewReader(file)
	defer reader.Close()

	rows := make([]parquet.Row, parquetBatchSize)
	for {
		n, err := reader.ReadRows(rows)
		for _, row := range rows[:n] {
			appendParquetRow(byIndex, row)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "parquet: read rows")
		}
		if n == 0 {
			break
		}
	}

	f := New()
	for _, col := range ordered {
		if col.kind == KindNumber {
			err = f.AddNumbers(col.name, col.numbers)
		} else {
			err = f.AddStrings(col.name, col.strings)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func appendParquetRow(byIndex map[int]*parquetColumn, row parquet.Row) {
	for _, v := range row {
		col, ok := byIndex[v.Column()]
		if !ok {
			continue
		}
		if col.kind == KindString {
			if v.IsNull() {
				col.strings = append(col.strings, "")
			} else {
				col.strings = append(col.strings, strings.TrimSpace(string(v.ByteArray())))
			}
			continue
		}
		col.numbers = append(col.numbers, parquetNumber(v))
	}
}

func parquetNumber(v parquet.Value) float64 {
	if v.IsNull() {
		return math.NaN()
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return 1
		}
		return 0
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return math.NaN()
	}
}
