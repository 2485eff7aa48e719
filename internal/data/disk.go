package data

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

// diskCache is the durable tier: one parquet file per CacheKey. All IO
// failures degrade to cache misses with a warning; they never propagate.
type diskCache struct {
	dir string
	log *logger.Logger
}

func newDiskCache(dir string, log *logger.Logger) (*diskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &diskCache{dir: dir, log: log}, nil
}

func (d *diskCache) path(key CacheKey) string {
	return filepath.Join(d.dir, key.FileName())
}

// Load reads the series for a key. A missing or unreadable file is a miss.
func (d *diskCache) Load(key CacheKey) (types.PriceSeries, bool) {
	path := d.path(key)

	if _, err := os.Stat(path); err != nil {
		return nil, false
	}

	rows, err := parquet.ReadFile[types.Bar](path)
	if err != nil {
		d.log.Warn("Failed to read cache file, treating as miss",
			zap.String("file", path),
			zap.Error(err),
		)

		return nil, false
	}

	if len(rows) == 0 {
		return nil, false
	}

	return types.PriceSeries(rows), true
}

// Store writes the series for a key. Concurrent writers racing on the
// same key may overwrite each other; the content is a deterministic
// function of the key, so the last write is as good as any.
func (d *diskCache) Store(key CacheKey, series types.PriceSeries) {
	path := d.path(key)

	if err := parquet.WriteFile(path, []types.Bar(series)); err != nil {
		d.log.Warn("Failed to write cache file",
			zap.String("file", path),
			zap.Error(err),
		)
	}
}

// Clear removes cache files. With an empty symbol every file goes; with a
// symbol only files whose key symbol matches are removed.
func (d *diskCache) Clear(symbol string) (int, error) {
	pattern := "*.parquet"
	if symbol != "" {
		pattern = symbol + "_*.parquet"
	}

	files, err := filepath.Glob(filepath.Join(d.dir, pattern))
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, file := range files {
		if err := os.Remove(file); err != nil {
			d.log.Warn("Failed to remove cache file",
				zap.String("file", file),
				zap.Error(err),
			)

			continue
		}

		removed++
	}

	return removed, nil
}

// Count returns the number of durable cache files.
func (d *diskCache) Count() int {
	files, err := filepath.Glob(filepath.Join(d.dir, "*.parquet"))
	if err != nil {
		return 0
	}

	return len(files)
}
