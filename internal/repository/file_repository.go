package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stwalsh4118/cobenefits/internal/config"
	"github.com/stwalsh4118/cobenefits/internal/frame"
)

// fileRepository reads tables from parquet, csv or xlsx files.
type fileRepository struct {
	paths       map[Table]string
	lookupSheet string
}

// NewFileRepository creates a TableRepository backed by the files named in cfg.
func NewFileRepository(cfg config.DataConfig) TableRepository {
	return &fileRepository{
		paths: map[Table]string{
			TableRegions: cfg.Path(cfg.RegionsFile),
			TableTrends:  cfg.Path(cfg.TrendsFile),
			TableDetails: cfg.Path(cfg.DetailsFile),
			TableLookup:  cfg.Path(cfg.LookupFile),
		},
		lookupSheet: cfg.LookupSheet,
	}
}

// Describe returns the file path for table.
func (r *fileRepository) Describe(table Table) string {
	return r.paths[table]
}

// Load reads the file configured for table. The format follows the file
// extension.
func (r *fileRepository) Load(ctx context.Context, table Table) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.paths[table]
	if path == "" {
		return nil, fmt.Errorf("%w: no file configured for %s", ErrTableNotFound, table)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var f *frame.Frame
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		f, err = readParquetFile(path, info.Size())
	case ".csv":
		f, err = readCSVFile(path)
	case ".xlsx":
		opts := frame.XLSXOptions{}
		if table == TableLookup {
			opts.SheetName = r.lookupSheet
		}
		f, err = frame.ReadXLSX(path, opts)
	default:
		return nil, fmt.Errorf("unsupported file format %q for %s", ext, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table from %s: %w", table, path, err)
	}

	return f, nil
}

func readParquetFile(path string, size int64) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return frame.ReadParquet(file, size)
}

func readCSVFile(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return frame.ReadCSV(file)
}
