// Package evaluator orchestrates strategy evaluation: one strategy over
// many instruments (batch) or many strategies over one instrument
// (comparison). Simulation engines are created fresh per task and per-task
// failures are absorbed into accounting, never aborting the run.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/astocklab/astock-eval/internal/types"
)

// Metric selects the ranking dimension for TopN and Best.
type Metric string

const (
	MetricTotalReturn Metric = "total_return"
	MetricSharpeRatio Metric = "sharpe_ratio"
	MetricWinRate     Metric = "win_rate"
	MetricMaxDrawdown Metric = "max_drawdown"
)

var (
	// ErrNoResults is returned when every task of a run failed and no
	// usable result exists.
	ErrNoResults = errors.New("no successful results")
	// ErrUnknownMetric is returned for an unsupported metric name.
	ErrUnknownMetric = errors.New("unsupported metric")
)

// metricValue extracts the metric from a record.
func metricValue(record *types.PerformanceRecord, metric Metric) (float64, error) {
	switch metric {
	case MetricTotalReturn:
		return record.TotalReturn, nil
	case MetricSharpeRatio:
		return record.SharpeRatio, nil
	case MetricWinRate:
		return record.WinRate, nil
	case MetricMaxDrawdown:
		return record.MaxDrawdown, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
}

// metricBetter reports whether a beats b for the metric. Every metric
// prefers larger values except max drawdown, where smaller is better.
func metricBetter(a, b float64, metric Metric) bool {
	if metric == MetricMaxDrawdown {
		return a < b
	}

	return a > b
}
