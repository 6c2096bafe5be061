package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stwalsh4118/cobenefits/internal/config"
	"github.com/stwalsh4118/cobenefits/internal/frame"
)

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// postgresRepository reads whole tables from PostgreSQL.
type postgresRepository struct {
	db     Querier
	tables map[Table]string
}

// NewPostgresRepository creates a TableRepository that reads the relations
// named in cfg.
func NewPostgresRepository(db Querier, cfg config.DatabaseConfig) TableRepository {
	return &postgresRepository{
		db: db,
		tables: map[Table]string{
			TableRegions: cfg.RegionsTable,
			TableTrends:  cfg.TrendsTable,
			TableDetails: cfg.DetailsTable,
			TableLookup:  cfg.LookupTable,
		},
	}
}

// Describe returns the relation name for table.
func (r *postgresRepository) Describe(table Table) string {
	return r.tables[table]
}

// Load selects every row of the relation configured for table. Column kinds
// follow the Go types pgx decodes: numeric types become number columns and
// everything else is rendered as text.
func (r *postgresRepository) Load(ctx context.Context, table Table) (*frame.Frame, error) {
	name := r.tables[table]
	if name == "" {
		return nil, fmt.Errorf("%w: no relation configured for %s", ErrTableNotFound, table)
	}

	query, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("*").
		From(pgx.Identifier{name}.Sanitize()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", table, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyQueryError(table, name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([][]any, len(fields))

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		for i := range columns {
			var v any
			if i < len(values) {
				v = values[i]
			}
			columns[i] = append(columns[i], v)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, classifyQueryError(table, name, err)
	}

	f := frame.New()
	for i, fd := range fields {
		if err := addColumn(f, fd.Name, columns[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func classifyQueryError(table Table, name string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: relation %s", ErrTableNotFound, name)
	}
	return fmt.Errorf("failed to query %s table %s: %w", table, name, err)
}

// addColumn appends values as a number column when every non-null value is
// numeric, otherwise as a string column.
func addColumn(f *frame.Frame, name string, values []any) error {
	numbers := make([]float64, len(values))
	numeric := true
	for i, v := range values {
		n, ok := toNumber(v)
		if !ok {
			numeric = false
			break
		}
		numbers[i] = n
	}
	if numeric {
		return f.AddNumbers(name, numbers)
	}

	strs := make([]string, len(values))
	for i, v := range values {
		if v != nil {
			strs[i] = fmt.Sprint(v)
		}
	}
	return f.AddStrings(name, strs)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return math.NaN(), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case pgtype.Numeric:
		if !n.Valid {
			return math.NaN(), true
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return math.NaN(), true
		}
		return f.Float64, true
	default:
		return 0, false
	}
}
