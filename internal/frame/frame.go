// Package frame holds loaded tables as typed columns before they are mapped
// onto the dataset records. Readers for each supported source format live
// alongside it.
package frame

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind is the storage type of a column.
type Kind int

const (
	// KindNumber columns hold float64 values; missing values are NaN.
	KindNumber Kind = iota
	// KindString columns hold strings; missing values are "".
	KindString
)

func (k Kind) String() string {
	if k == KindNumber {
		return "number"
	}
	return "string"
}

// Column is a single named, typed column.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Strings []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind == KindNumber {
		return len(c.Numbers)
	}
	return len(c.Strings)
}

// Number returns the value at row i as a float. String columns are parsed;
// values that do not parse are NaN.
func (c *Column) Number(i int) float64 {
	if c.Kind == KindNumber {
		return c.Numbers[i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Strings[i]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// String returns the value at row i as text. Numeric values are formatted
// without trailing zeros and NaN becomes "".
func (c *Column) String(i int) string {
	if c.Kind == KindString {
		return c.Strings[i]
	}
	v := c.Numbers[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Frame is an ordered set of equal-length columns.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// AddNumbers appends a numeric column.
func (f *Frame) AddNumbers(name string, values []float64) error {
	return f.add(&Column{Name: name, Kind: KindNumber, Numbers: values})
}

// AddStrings appends a string column.
func (f *Frame) AddStrings(name string, values []string) error {
	return f.add(&Column{Name: name, Kind: KindString, Strings: values})
}

func (f *Frame) add(col *Column) error {
	if _, exists := f.index[col.Name]; exists {
		return eris.Errorf("frame: duplicate column %q", col.Name)
	}
	if len(f.columns) > 0 && col.Len() != f.rows {
		return eris.Errorf("frame: column %q has %d rows, expected %d", col.Name, col.Len(), f.rows)
	}
	f.rows = col.Len()
	f.index[col.Name] = len(f.columns)
	f.columns = append(f.columns, col)
	return nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f == nil || f.rows == 0
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Columns returns the columns in source order.
func (f *Frame) Columns() []*Column {
	return f.columns
}

// Names returns the column names in source order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Require returns an error naming the first missing column.
func (f *Frame) Require(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return eris.Errorf("frame: required column %q is missing", name)
		}
	}
	return nil
}
