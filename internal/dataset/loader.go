// Package dataset turns the raw source tables into the read-only Dataset the
// dashboard queries, and memoizes it for the lifetime of the process.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/stwalsh4118/cobenefits/internal/frame"
	"github.com/stwalsh4118/cobenefits/internal/logger"
	"github.com/stwalsh4118/cobenefits/internal/models"
	"github.com/stwalsh4118/cobenefits/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ErrLoad marks a fatal load failure: the regions, trends or lookup table
// could not be read or lacks required columns.
var ErrLoad = errors.New("dataset load failed")

// perCapitaScale converts millions to whole currency units.
const perCapitaScale = 1e6

var yearColumn = regexp.MustCompile(`^\d{4}`)

// Loader reads the source tables and assembles a Dataset.
type Loader struct {
	repo repository.TableRepository
	log  *logger.Logger
}

// NewLoader creates a Loader reading from repo.
func NewLoader(repo repository.TableRepository, log *logger.Logger) *Loader {
	return &Loader{repo: repo, log: log}
}

// Load reads all four tables. Failure of the regions, trends or lookup table
// is fatal and wraps ErrLoad; a missing or unreadable details table yields an
// empty DetailTable.
func (l *Loader) Load(ctx context.Context) (*models.Dataset, error) {
	start := time.Now()

	var regions, trends, details, lookup *frame.Frame
	var detailsErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		regions, err = l.load(gctx, repository.TableRegions)
		return err
	})
	g.Go(func() (err error) {
		trends, err = l.load(gctx, repository.TableTrends)
		return err
	})
	g.Go(func() (err error) {
		lookup, err = l.load(gctx, repository.TableLookup)
		return err
	})
	g.Go(func() error {
		details, detailsErr = l.repo.Load(gctx, repository.TableDetails)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	regionTable, err := BuildRegions(regions, lookup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	trendTable, err := BuildTrends(trends)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	detailTable := &models.DetailTable{}
	if detailsErr != nil {
		l.log.Warn("Detail table unavailable, continuing without damage breakdown", map[string]interface{}{
			"source": l.repo.Describe(repository.TableDetails),
			"error":  detailsErr.Error(),
		})
	} else if detailTable, err = BuildDetails(details); err != nil {
		l.log.Warn("Detail table malformed, continuing without damage breakdown", map[string]interface{}{
			"source": l.repo.Describe(repository.TableDetails),
			"error":  err.Error(),
		})
		detailTable = &models.DetailTable{}
	}

	l.log.Info("Dataset loaded", map[string]interface{}{
		"regions":     regionTable.Len(),
		"categories":  len(regionTable.Categories),
		"trends":      trendTable.Len(),
		"years":       len(trendTable.Years),
		"details":     len(detailTable.Rows),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &models.Dataset{
		Regions: regionTable,
		Trends:  trendTable,
		Details: detailTable,
	}, nil
}

func (l *Loader) load(ctx context.Context, table repository.Table) (*frame.Frame, error) {
	f, err := l.repo.Load(ctx, table)
	if err != nil {
		l.log.Error("Failed to load table", err, map[string]interface{}{
			"table":  string(table),
			"source": l.repo.Describe(table),
		})
		return nil, fmt.Errorf("%w: %s table: %w", ErrLoad, table, err)
	}
	l.log.Debug("Table loaded", map[string]interface{}{
		"table":   string(table),
		"rows":    f.Len(),
		"columns": len(f.Names()),
	})
	return f, nil
}

// BuildRegions left-joins the present lookup columns onto the primary table
// and derives the per-capita column. Lookup values take precedence over
// same-named primary columns; the first lookup row wins for duplicate keys.
func BuildRegions(regions, lookup *frame.Frame) (*models.RegionTable, error) {
	if err := regions.Require(models.ColSmallArea, models.ColTotal); err != nil {
		return nil, fmt.Errorf("regions table: %w", err)
	}
	if err := lookup.Require(models.ColSmallArea); err != nil {
		return nil, fmt.Errorf("lookup table: %w", err)
	}

	lookupKeys, _ := lookup.Column(models.ColSmallArea)
	lookupRow := make(map[string]int, lookup.Len())
	for i := 0; i < lookup.Len(); i++ {
		key := lookupKeys.String(i)
		if _, seen := lookupRow[key]; !seen {
			lookupRow[key] = i
		}
	}

	laOf := joinedColumn(regions, lookup, models.ColLocalAuthority)
	nationOf := joinedColumn(regions, lookup, models.ColNation)
	popOf := joinedColumn(regions, lookup, models.ColPopulation)

	table := &models.RegionTable{
		Categories:        categoryColumns(regions),
		HasLocalAuthority: laOf != nil,
		HasNation:         nationOf != nil,
		HasPopulation:     popOf != nil,
	}

	keys, _ := regions.Column(models.ColSmallArea)
	totals, _ := regions.Column(models.ColTotal)
	categoryCols := make([]*frame.Column, len(table.Categories))
	for j, name := range table.Categories {
		categoryCols[j], _ = regions.Column(name)
	}

	table.Rows = make([]models.Region, regions.Len())
	for i := range table.Rows {
		key := keys.String(i)
		li, matched := lookupRow[key]

		r := models.Region{
			SmallArea:  key,
			Total:      totals.Number(i),
			Population: math.NaN(),
			Benefits:   make(map[string]float64, len(categoryCols)),
		}
		if laOf != nil {
			r.LocalAuthority = laOf.text(i, li, matched)
		}
		if nationOf != nil {
			r.Nation = nationOf.text(i, li, matched)
		}
		if popOf != nil {
			r.Population = popOf.number(i, li, matched)
			r.PerCapita = PerCapita(r.Total, r.Population)
		}
		for j, col := range categoryCols {
			r.Benefits[table.Categories[j]] = col.Number(i)
		}
		table.Rows[i] = r
	}

	return table, nil
}

// PerCapita returns total (in millions) per person, or 0 when the population
// is not positive.
func PerCapita(total, population float64) float64 {
	if !(population > 0) {
		return 0
	}
	v := total * perCapitaScale / population
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// joined reads a column either from the lookup (by matched row) or from the
// primary table.
type joined struct {
	col        *frame.Column
	fromLookup bool
}

func joinedColumn(regions, lookup *frame.Frame, name string) *joined {
	if col, ok := lookup.Column(name); ok {
		return &joined{col: col, fromLookup: true}
	}
	if col, ok := regions.Column(name); ok {
		return &joined{col: col}
	}
	return nil
}

func (j *joined) text(regionRow, lookupRow int, matched bool) string {
	if !j.fromLookup {
		return strings.TrimSpace(j.col.String(regionRow))
	}
	if !matched {
		return ""
	}
	return strings.TrimSpace(j.col.String(lookupRow))
}

func (j *joined) number(regionRow, lookupRow int, matched bool) float64 {
	if !j.fromLookup {
		return j.col.Number(regionRow)
	}
	if !matched {
		return math.NaN()
	}
	return j.col.Number(lookupRow)
}

// categoryColumns infers the benefit categories: numeric columns that are
// neither excluded, identifiers, join columns nor writer-internal.
func categoryColumns(regions *frame.Frame) []string {
	var out []string
	for _, col := range regions.Columns() {
		if col.Kind != frame.KindNumber {
			continue
		}
		switch {
		case models.IsExcludedColumn(col.Name),
			col.Name == models.ColSmallArea,
			col.Name == models.ColLocalAuthority,
			col.Name == models.ColNation,
			strings.HasPrefix(col.Name, "__"):
			continue
		}
		out = append(out, col.Name)
	}
	return out
}

// BuildTrends maps the forecast table. Year columns are those whose name
// starts with a four-digit year.
func BuildTrends(trends *frame.Frame) (*models.TrendTable, error) {
	if err := trends.Require(models.ColSmallArea, models.ColCategory); err != nil {
		return nil, fmt.Errorf("trends table: %w", err)
	}

	var yearCols []*frame.Column
	table := &models.TrendTable{}
	for _, col := range trends.Columns() {
		if yearColumn.MatchString(col.Name) {
			table.Years = append(table.Years, col.Name)
			yearCols = append(yearCols, col)
		}
	}

	keys, _ := trends.Column(models.ColSmallArea)
	categories, _ := trends.Column(models.ColCategory)

	table.Rows = make([]models.TrendRecord, trends.Len())
	for i := range table.Rows {
		values := make([]float64, len(yearCols))
		for j, col := range yearCols {
			values[j] = col.Number(i)
		}
		table.Rows[i] = models.TrendRecord{
			SmallArea: keys.String(i),
			Category:  strings.TrimSpace(categories.String(i)),
			Values:    values,
		}
	}
	return table, nil
}

// BuildDetails maps the optional damage-type table.
func BuildDetails(details *frame.Frame) (*models.DetailTable, error) {
	if details.Empty() {
		return &models.DetailTable{}, nil
	}
	if err := details.Require(models.ColSmallArea, models.ColCategory, models.ColDamageType, models.ColValue); err != nil {
		return nil, fmt.Errorf("details table: %w", err)
	}

	keys, _ := details.Column(models.ColSmallArea)
	categories, _ := details.Column(models.ColCategory)
	damage, _ := details.Column(models.ColDamageType)
	values, _ := details.Column(models.ColValue)

	table := &models.DetailTable{Rows: make([]models.DetailRecord, details.Len())}
	for i := range table.Rows {
		table.Rows[i] = models.DetailRecord{
			SmallArea:  keys.String(i),
			Category:   strings.TrimSpace(categories.String(i)),
			DamageType: strings.TrimSpace(damage.String(i)),
			Value:      values.Number(i),
		}
	}
	return table, nil
}
