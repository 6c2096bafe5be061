package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/cobenefits/internal/frame"
	"github.com/stwalsh4118/cobenefits/internal/logger"
	"github.com/stwalsh4118/cobenefits/internal/models"
	"github.com/stwalsh4118/cobenefits/internal/repository"
)

// MockTableRepository is a mock implementation of TableRepository for testing
type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) Load(ctx context.Context, table repository.Table) (*frame.Frame, error) {
	args := m.Called(table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*frame.Frame), args.Error(1)
}

func (m *MockTableRepository) Describe(table repository.Table) string {
	return string(table) + ".parquet"
}

func mustFrame(t *testing.T, build func(f *frame.Frame) error) *frame.Frame {
	t.Helper()
	f := frame.New()
	require.NoError(t, build(f))
	return f
}

func regionsFrame(t *testing.T) *frame.Frame {
	return mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01", "E02", "W01", "Z99"}); err != nil {
			return err
		}
		if err := f.AddNumbers("sum", []float64{2, 4, 1, 3}); err != nil {
			return err
		}
		if err := f.AddNumbers("air_quality", []float64{1, 2, 0.5, math.NaN()}); err != nil {
			return err
		}
		if err := f.AddNumbers("physical_activity", []float64{1, 2, 0.5, 3}); err != nil {
			return err
		}
		if err := f.AddNumbers("households", []float64{10, 20, 5, 1}); err != nil {
			return err
		}
		return f.AddNumbers("__index_level_0__", []float64{0, 1, 2, 3})
	})
}

func lookupFrame(t *testing.T) *frame.Frame {
	return mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01", "E02", "W01", "E01"}); err != nil {
			return err
		}
		if err := f.AddStrings("local_authority", []string{"Leeds", "York", "Cardiff", "Duplicate"}); err != nil {
			return err
		}
		if err := f.AddStrings("nation", []string{"England", "England", "Wales", "Scotland"}); err != nil {
			return err
		}
		return f.AddNumbers("population", []float64{1000, 0, 500, 1})
	})
}

func trendsFrame(t *testing.T) *frame.Frame {
	return mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01", "W01"}); err != nil {
			return err
		}
		if err := f.AddStrings("co_benefit_type", []string{"air_quality", "air_quality"}); err != nil {
			return err
		}
		if err := f.AddNumbers("2025", []float64{1, 2}); err != nil {
			return err
		}
		if err := f.AddNumbers("2030", []float64{3, 4}); err != nil {
			return err
		}
		return f.AddNumbers("scenario", []float64{0, 0})
	})
}

func detailsFrame(t *testing.T) *frame.Frame {
	return mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01"}); err != nil {
			return err
		}
		if err := f.AddStrings("co_benefit_type", []string{"air_quality"}); err != nil {
			return err
		}
		if err := f.AddStrings("damage_type", []string{"health"}); err != nil {
			return err
		}
		return f.AddNumbers("sum", []float64{0.6})
	})
}

func TestBuildRegions_JoinAndPerCapita(t *testing.T) {
	table, err := BuildRegions(regionsFrame(t), lookupFrame(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"air_quality", "physical_activity"}, table.Categories)
	assert.True(t, table.HasLocalAuthority)
	assert.True(t, table.HasNation)
	assert.True(t, table.HasPopulation)
	require.Len(t, table.Rows, 4)

	e01 := table.Rows[0]
	assert.Equal(t, "Leeds", e01.LocalAuthority, "first lookup row wins")
	assert.Equal(t, "England", e01.Nation)
	assert.Equal(t, 2*1e6/1000, e01.PerCapita)

	e02 := table.Rows[1]
	assert.Equal(t, 0.0, e02.PerCapita, "zero population yields zero per-capita")

	z99 := table.Rows[3]
	assert.Equal(t, "", z99.LocalAuthority, "unmatched rows keep empty join columns")
	assert.Equal(t, "", z99.Nation)
	assert.True(t, math.IsNaN(z99.Population))
	assert.Equal(t, 0.0, z99.PerCapita)
	assert.Equal(t, 3.0, z99.Total)
	assert.True(t, math.IsNaN(z99.Benefit("air_quality")))
}

func TestBuildRegions_PartialLookup(t *testing.T) {
	lookup := mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01"}); err != nil {
			return err
		}
		return f.AddStrings("nation", []string{"England"})
	})

	table, err := BuildRegions(regionsFrame(t), lookup)
	require.NoError(t, err)

	assert.True(t, table.HasNation)
	assert.False(t, table.HasLocalAuthority)
	assert.False(t, table.HasPopulation)
	assert.Equal(t, 0.0, table.Rows[0].PerCapita)
	assert.Equal(t, "England", table.Rows[0].Nation)
}

func TestBuildRegions_RegionColumnsUsedWhenLookupLacksThem(t *testing.T) {
	regions := mustFrame(t, func(f *frame.Frame) error {
		if err := f.AddStrings("small_area", []string{"E01"}); err != nil {
			return err
		}
		if err := f.AddNumbers("sum", []float64{5}); err != nil {
			return err
		}
		if err := f.AddNumbers("population", []float64{2500}); err != nil {
			return err
		}
		return f.AddNumbers("noise", []float64{1})
	})
	lookup := mustFrame(t, func(f *frame.Frame) error {
		return f.AddStrings("small_area", []string{"E01"})
	})

	table, err := BuildRegions(regions, lookup)
	require.NoError(t, err)
	assert.Equal(t, []string{"noise"}, table.Categories)
	assert.True(t, table.HasPopulation)
	assert.Equal(t, 5*1e6/2500, table.Rows[0].PerCapita)
}

func TestBuildRegions_MissingColumns(t *testing.T) {
	noTotal := mustFrame(t, func(f *frame.Frame) error {
		return f.AddStrings("small_area", []string{"E01"})
	})
	_, err := BuildRegions(noTotal, lookupFrame(t))
	assert.Error(t, err)

	noKey := mustFrame(t, func(f *frame.Frame) error {
		return f.AddStrings("nation", []string{"England"})
	})
	_, err = BuildRegions(regionsFrame(t), noKey)
	assert.Error(t, err)
}

func TestPerCapita(t *testing.T) {
	tests := []struct {
		name       string
		total      float64
		population float64
		want       float64
	}{
		{name: "positive population", total: 100, population: 1_000_000, want: 100},
		{name: "small population", total: 50, population: 100_000, want: 500},
		{name: "zero population", total: 50, population: 0, want: 0},
		{name: "negative population", total: 50, population: -5, want: 0},
		{name: "missing population", total: 50, population: math.NaN(), want: 0},
		{name: "missing total", total: math.NaN(), population: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PerCapita(tt.total, tt.population))
		})
	}
}

func TestBuildTrends(t *testing.T) {
	table, err := BuildTrends(trendsFrame(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"2025", "2030"}, table.Years)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, models.TrendRecord{SmallArea: "W01", Category: "air_quality", Values: []float64{2, 4}}, table.Rows[1])

	_, err = BuildTrends(mustFrame(t, func(f *frame.Frame) error {
		return f.AddStrings("small_area", []string{"E01"})
	}))
	assert.Error(t, err)
}

func TestBuildDetails(t *testing.T) {
	table, err := BuildDetails(detailsFrame(t))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "health", table.Rows[0].DamageType)

	empty, err := BuildDetails(nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}

func newMockRepo(t *testing.T) *MockTableRepository {
	repo := new(MockTableRepository)
	repo.On("Load", repository.TableRegions).Return(regionsFrame(t), nil)
	repo.On("Load", repository.TableTrends).Return(trendsFrame(t), nil)
	repo.On("Load", repository.TableLookup).Return(lookupFrame(t), nil)
	return repo
}

func TestLoader_Load(t *testing.T) {
	repo := newMockRepo(t)
	repo.On("Load", repository.TableDetails).Return(detailsFrame(t), nil)

	ds, err := NewLoader(repo, logger.Nop()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Regions.Len())
	assert.Equal(t, 2, ds.Trends.Len())
	assert.Len(t, ds.Details.Rows, 1)
	repo.AssertExpectations(t)
}

func TestLoader_MissingDetailsIsRecoverable(t *testing.T) {
	repo := newMockRepo(t)
	repo.On("Load", repository.TableDetails).Return(nil, fmt.Errorf("%w: optimized_level_3.parquet", repository.ErrTableNotFound))

	ds, err := NewLoader(repo, logger.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Details.Empty())
}

func TestLoader_MalformedDetailsIsRecoverable(t *testing.T) {
	repo := newMockRepo(t)
	malformed := mustFrame(t, func(f *frame.Frame) error {
		return f.AddStrings("small_area", []string{"E01"})
	})
	repo.On("Load", repository.TableDetails).Return(malformed, nil)

	ds, err := NewLoader(repo, logger.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ds.Details.Empty())
}

func TestLoader_FatalTables(t *testing.T) {
	for _, table := range []repository.Table{repository.TableRegions, repository.TableTrends, repository.TableLookup} {
		t.Run(string(table), func(t *testing.T) {
			repo := new(MockTableRepository)
			for _, other := range repository.Tables {
				if other == table {
					repo.On("Load", other).Return(nil, errors.New("unreadable"))
					continue
				}
				switch other {
				case repository.TableRegions:
					repo.On("Load", other).Return(regionsFrame(t), nil).Maybe()
				case repository.TableTrends:
					repo.On("Load", other).Return(trendsFrame(t), nil).Maybe()
				case repository.TableLookup:
					repo.On("Load", other).Return(lookupFrame(t), nil).Maybe()
				case repository.TableDetails:
					repo.On("Load", other).Return(detailsFrame(t), nil).Maybe()
				}
			}

			ds, err := NewLoader(repo, logger.Nop()).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.True(t, errors.Is(err, ErrLoad))
		})
	}
}

// countingLoader counts Load calls.
type countingLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingLoader) Load(ctx context.Context) (*models.Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.Dataset{Regions: &models.RegionTable{}}, nil
}

func TestStore_LoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	store := NewStore(loader)

	var wg sync.WaitGroup
	results := make([]*models.Dataset, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := store.Get(context.Background())
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, loader.calls)
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestStore_MemoizesError(t *testing.T) {
	loader := &countingLoader{err: ErrLoad}
	store := NewStore(loader)

	_, err1 := store.Get(context.Background())
	_, err2 := store.Get(context.Background())

	assert.ErrorIs(t, err1, ErrLoad)
	assert.ErrorIs(t, err2, ErrLoad)
	assert.Equal(t, 1, loader.calls)
}

func TestStore_IgnoresCancelledFirstCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(&ctxLoader{})
	ds, err := store.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ds)
}

type ctxLoader struct{}

func (ctxLoader) Load(ctx context.Context) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.Dataset{}, nil
}
