package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/market"
	"github.com/astocklab/astock-eval/internal/types"
)

// ErrDataUnavailable marks a source fetch that failed or came back
// empty. The facade absorbs it into an empty series; it surfaces in
// logs only.
var ErrDataUnavailable = errors.New("market data unavailable")

// CacheInfo reports the size of both cache tiers.
type CacheInfo struct {
	MemoryEntries int
	DiskFiles     int
}

// Manager is the data access facade. It is safe for concurrent use by
// the batch evaluator's workers: the memory tier is guarded by an
// RWMutex, and the disk tier is per-key files.
type Manager struct {
	source market.Source
	disk   *diskCache
	log    *logger.Logger

	mu     sync.RWMutex
	memory map[CacheKey]types.PriceSeries
}

// NewManager creates a facade over the given source with a durable cache
// directory. The directory is created if missing.
func NewManager(source market.Source, cacheDir string, log *logger.Logger) (*Manager, error) {
	disk, err := newDiskCache(cacheDir, log)
	if err != nil {
		return nil, err
	}

	log.Info("Data manager initialized",
		zap.String("cache_dir", cacheDir),
	)

	return &Manager{
		source: source,
		disk:   disk,
		log:    log,
		memory: make(map[CacheKey]types.PriceSeries),
	}, nil
}

// GetData returns the price series for the request, consulting the
// memory tier, then the disk tier, then the external source. A source
// failure or empty result is logged and returned as an empty series; it
// is never cached. Every return is a copy; callers may mutate it freely.
func (m *Manager) GetData(ctx context.Context, symbol string, start time.Time, end time.Time, adjust types.AdjustMode, forceRefresh bool) types.PriceSeries {
	key := NewCacheKey(symbol, start, end, adjust)

	if !forceRefresh {
		m.mu.RLock()
		cached, ok := m.memory[key]
		m.mu.RUnlock()

		if ok {
			m.log.Debug("Memory cache hit", zap.String("key", key.String()))
			return cached.Copy()
		}

		if series, ok := m.disk.Load(key); ok {
			m.log.Debug("Disk cache hit", zap.String("key", key.String()))
			m.storeMemory(key, series)

			return series.Copy()
		}
	}

	m.log.Info("Fetching from market data source",
		zap.String("symbol", symbol),
		zap.String("start", key.Start),
		zap.String("end", key.End),
	)

	series, err := m.source.FetchDaily(ctx, symbol, start, end, adjust)
	if err != nil {
		m.log.Warn("Fetch failed",
			zap.String("symbol", symbol),
			zap.Error(fmt.Errorf("%w: %w", ErrDataUnavailable, err)),
		)

		return nil
	}

	if series.IsEmpty() {
		m.log.Warn("Fetch returned no data",
			zap.String("symbol", symbol),
			zap.Error(ErrDataUnavailable),
		)

		return nil
	}

	m.storeMemory(key, series)
	m.disk.Store(key, series)

	return series.Copy()
}

// GetBatchData fetches many symbols over one range. Symbols with empty
// results are omitted from the returned map.
func (m *Manager) GetBatchData(ctx context.Context, symbols []string, start time.Time, end time.Time, adjust types.AdjustMode) map[string]types.PriceSeries {
	m.log.Info("Batch fetch started", zap.Int("symbols", len(symbols)))

	results := make(map[string]types.PriceSeries, len(symbols))
	bar := progressbar.Default(int64(len(symbols)), "fetching")

	for _, symbol := range symbols {
		series := m.GetData(ctx, symbol, start, end, adjust, false)
		if !series.IsEmpty() {
			results[symbol] = series
		}

		_ = bar.Add(1)
	}

	m.log.Info("Batch fetch finished",
		zap.Int("succeeded", len(results)),
		zap.Int("failed", len(symbols)-len(results)),
	)

	return results
}

// ClearCache drops cache entries. With an empty symbol both tiers are
// cleared entirely; with a symbol only entries whose key symbol matches.
func (m *Manager) ClearCache(symbol string) error {
	m.mu.Lock()

	if symbol == "" {
		m.memory = make(map[CacheKey]types.PriceSeries)
	} else {
		for key := range m.memory {
			if key.Symbol == symbol {
				delete(m.memory, key)
			}
		}
	}

	m.mu.Unlock()

	removed, err := m.disk.Clear(symbol)
	if err != nil {
		return err
	}

	m.log.Info("Cache cleared",
		zap.String("symbol", symbol),
		zap.Int("disk_files_removed", removed),
	)

	return nil
}

// Info returns cache tier sizes.
func (m *Manager) Info() CacheInfo {
	m.mu.RLock()
	memEntries := len(m.memory)
	m.mu.RUnlock()

	return CacheInfo{
		MemoryEntries: memEntries,
		DiskFiles:     m.disk.Count(),
	}
}

func (m *Manager) storeMemory(key CacheKey, series types.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.memory[key] = series.Copy()
}
