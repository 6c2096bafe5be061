package dataset

import (
	"context"
	"sync"

	"github.com/stwalsh4118/cobenefits/internal/models"
)

// DatasetLoader produces a Dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (*models.Dataset, error)
}

// Store loads the dataset at most once per process and hands out the same
// read-only result, or the same error, to every caller.
type Store struct {
	loader DatasetLoader
	once   sync.Once
	ds     *models.Dataset
	err    error
}

// NewStore creates a Store. Nothing is loaded until the first Get.
func NewStore(loader DatasetLoader) *Store {
	return &Store{loader: loader}
}

// Get returns the memoized dataset, loading it on first use. The load is
// detached from ctx cancellation so an aborted first request cannot poison
// the cache.
func (s *Store) Get(ctx context.Context) (*models.Dataset, error) {
	s.once.Do(func() {
		s.ds, s.err = s.loader.Load(context.WithoutCancel(ctx))
	})
	return s.ds, s.err
}
