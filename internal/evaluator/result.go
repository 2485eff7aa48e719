package evaluator

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/astocklab/astock-eval/internal/types"
)

// RankedRecord pairs a symbol with its performance record for display.
type RankedRecord struct {
	Symbol string
	Record *types.PerformanceRecord
}

// BatchResult aggregates one strategy over N instruments. Records carries
// only successful evaluations; Success + Fail always equals Total.
type BatchResult struct {
	RunID        string
	StrategyName string
	Start        time.Time
	End          time.Time
	Total        int
	Success      int
	Fail         int

	mu      sync.Mutex
	records map[string]*types.PerformanceRecord
	order   []string
}

func newBatchResult(runID, strategyName string, start, end time.Time, total int) *BatchResult {
	return &BatchResult{
		RunID:        runID,
		StrategyName: strategyName,
		Start:        start,
		End:          end,
		Total:        total,
		records:      make(map[string]*types.PerformanceRecord, total),
	}
}

func (r *BatchResult) addSuccess(symbol string, record *types.PerformanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[symbol] = record
	r.order = append(r.order, symbol)
	r.Success++
}

func (r *BatchResult) addFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Fail++
}

// Record returns the record for a symbol, if the evaluation succeeded.
func (r *BatchResult) Record(symbol string) (*types.PerformanceRecord, bool) {
	record, ok := r.records[symbol]
	return record, ok
}

// Records returns all successful (symbol, record) pairs in insertion
// order. Insertion order is completion order under parallel execution.
func (r *BatchResult) Records() []RankedRecord {
	out := make([]RankedRecord, 0, len(r.order))
	for _, symbol := range r.order {
		out = append(out, RankedRecord{Symbol: symbol, Record: r.records[symbol]})
	}

	return out
}

// TopN ranks the successful records by the metric and returns the best n.
// Ranking is descending except for max drawdown, which is ascending; ties
// keep insertion order.
func (r *BatchResult) TopN(n int, metric Metric) ([]RankedRecord, error) {
	ranked := r.Records()

	// Validate the metric before sorting so an unsupported name is an
	// error even for an empty result.
	if _, err := metricValue(&types.PerformanceRecord{}, metric); err != nil {
		return nil, err
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, _ := metricValue(ranked[i].Record, metric)
		b, _ := metricValue(ranked[j].Record, metric)

		return metricBetter(a, b, metric)
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}

	return ranked, nil
}

// Statistics summarizes the successful records.
type Statistics struct {
	MeanReturn   float64
	StdReturn    float64
	MaxReturn    float64
	MinReturn    float64
	Positive     int
	Negative     int
	PositiveRate float64
	MeanSharpe   float64
	MeanWinRate  float64
	MeanDrawdown float64
}

// Statistics computes summary statistics over all successful records.
// The standard deviation is the sample standard deviation.
func (r *BatchResult) Statistics() Statistics {
	records := r.Records()
	if len(records) == 0 {
		return Statistics{}
	}

	stats := Statistics{
		MaxReturn: math.Inf(-1),
		MinReturn: math.Inf(1),
	}

	var sumReturn, sumSharpe, sumWinRate, sumDrawdown float64

	for _, item := range records {
		rec := item.Record
		sumReturn += rec.TotalReturn
		sumSharpe += rec.SharpeRatio
		sumWinRate += rec.WinRate
		sumDrawdown += rec.MaxDrawdown

		if rec.TotalReturn > stats.MaxReturn {
			stats.MaxReturn = rec.TotalReturn
		}

		if rec.TotalReturn < stats.MinReturn {
			stats.MinReturn = rec.TotalReturn
		}

		if rec.TotalReturn > 0 {
			stats.Positive++
		} else if rec.TotalReturn < 0 {
			stats.Negative++
		}
	}

	n := float64(len(records))
	stats.MeanReturn = sumReturn / n
	stats.MeanSharpe = sumSharpe / n
	stats.MeanWinRate = sumWinRate / n
	stats.MeanDrawdown = sumDrawdown / n
	stats.PositiveRate = float64(stats.Positive) / n * 100

	if len(records) > 1 {
		var variance float64
		for _, item := range records {
			diff := item.Record.TotalReturn - stats.MeanReturn
			variance += diff * diff
		}

		stats.StdReturn = math.Sqrt(variance / (n - 1))
	}

	return stats
}

// Summary renders the human-readable aggregate dump.
func (r *BatchResult) Summary() string {
	stats := r.Statistics()

	return fmt.Sprintf(`========== batch result ==========
strategy: %s
range: %s ~ %s
total: %d  success: %d  fail: %d
mean return: %.2f%%  std: %.2f
max return: %.2f%%  min return: %.2f%%
positive: %d  negative: %d  positive rate: %.2f%%
mean sharpe: %.2f  mean win rate: %.2f%%  mean drawdown: %.2f%%
==================================
`,
		r.StrategyName,
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
		r.Total, r.Success, r.Fail,
		stats.MeanReturn, stats.StdReturn,
		stats.MaxReturn, stats.MinReturn,
		stats.Positive, stats.Negative, stats.PositiveRate,
		stats.MeanSharpe, stats.MeanWinRate, stats.MeanDrawdown,
	)
}
