package repository

import (
	"context"
	"errors"

	"github.com/stwalsh4118/cobenefits/internal/frame"
)

// Table names one of the dashboard's source tables.
type Table string

// Source tables.
const (
	TableRegions Table = "regions"
	TableTrends  Table = "trends"
	TableDetails Table = "details"
	TableLookup  Table = "lookup"
)

// Tables lists every source table in load order.
var Tables = []Table{TableRegions, TableTrends, TableDetails, TableLookup}

// ErrTableNotFound is returned when a table is not configured or its backing
// file or relation does not exist.
var ErrTableNotFound = errors.New("table not found")

// TableRepository defines read access to the source tables.
type TableRepository interface {
	// Load reads a whole table into memory.
	// Returns an error wrapping ErrTableNotFound when the table is absent.
	Load(ctx context.Context, table Table) (*frame.Frame, error)

	// Describe returns a human-readable location for the table, for logs.
	Describe(table Table) string
}
