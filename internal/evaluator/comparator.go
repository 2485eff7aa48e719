package evaluator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/engine"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/types"
)

// ComparisonResult holds the outcome of running several strategies over
// the same instrument and window. Records preserves the order the
// strategies were supplied in.
type ComparisonResult struct {
	Symbol  string
	Start   time.Time
	End     time.Time
	records map[string]*types.PerformanceRecord
	order   []string
}

func newComparisonResult(symbol string, start, end time.Time) *ComparisonResult {
	return &ComparisonResult{
		Symbol:  symbol,
		Start:   start,
		End:     end,
		records: make(map[string]*types.PerformanceRecord),
	}
}

func (c *ComparisonResult) add(name string, record *types.PerformanceRecord) {
	if _, ok := c.records[name]; !ok {
		c.order = append(c.order, name)
	}

	c.records[name] = record
}

// Record returns the result for one strategy by name.
func (c *ComparisonResult) Record(name string) (*types.PerformanceRecord, bool) {
	record, ok := c.records[name]
	return record, ok
}

// Names returns the strategy names that produced a result, in input order.
func (c *ComparisonResult) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)

	return names
}

// Best returns the strategy that wins on the given metric. An empty
// result set yields empty values and no error.
func (c *ComparisonResult) Best(metric Metric) (string, *types.PerformanceRecord, error) {
	if _, err := metricValue(&types.PerformanceRecord{}, metric); err != nil {
		return "", nil, err
	}

	if len(c.order) == 0 {
		return "", nil, nil
	}

	bestName := c.order[0]
	bestValue, _ := metricValue(c.records[bestName], metric)

	for _, name := range c.order[1:] {
		value, _ := metricValue(c.records[name], metric)
		if metricBetter(value, bestValue, metric) {
			bestName = name
			bestValue = value
		}
	}

	return bestName, c.records[bestName], nil
}

// Comparator runs several strategies over a single instrument. The price
// series is fetched exactly once and shared read-only; every strategy
// gets its own engine instance.
type Comparator struct {
	config  BatchConfig
	manager *data.Manager
	factory engine.Factory
	log     *logger.Logger
}

func NewComparator(config BatchConfig, manager *data.Manager, factory engine.Factory, log *logger.Logger) (*Comparator, error) {
	if config.Commission == nil {
		return nil, fmt.Errorf("comparator requires a commission model")
	}

	return &Comparator{
		config:  config,
		manager: manager,
		factory: factory,
		log:     log,
	}, nil
}

// Compare evaluates every strategy config against one symbol. A strategy
// that fails is logged and omitted from the result; if every strategy
// fails the comparison itself is an error.
func (c *Comparator) Compare(ctx context.Context, symbol string, configs []StrategyConfig, start, end time.Time) (*ComparisonResult, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no strategies to compare")
	}

	series := c.manager.GetData(ctx, symbol, start, end, c.config.Adjust, false)
	if series.IsEmpty() {
		return nil, fmt.Errorf("no data for %s", symbol)
	}

	result := newComparisonResult(symbol, start, end)

	for _, strategyConfig := range configs {
		record, err := c.evaluate(strategyConfig, series)
		if err != nil {
			c.log.Warn("Strategy comparison task failed",
				zap.String("symbol", symbol),
				zap.String("strategy", strategyConfig.Name),
				zap.Error(err),
			)

			continue
		}

		result.add(strategyConfig.Name, record)
	}

	if len(result.order) == 0 {
		return nil, fmt.Errorf("comparison of %s: %w", symbol, ErrNoResults)
	}

	return result, nil
}

func (c *Comparator) evaluate(strategyConfig StrategyConfig, series types.PriceSeries) (record *types.PerformanceRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = fmt.Errorf("panic in strategy %s: %v", strategyConfig.Name, r)
		}
	}()

	eng := c.factory()

	if err := eng.Configure(c.config.InitialCash, c.config.Commission, c.config.SlippagePct); err != nil {
		return nil, err
	}

	if err := eng.SetSeries(series); err != nil {
		return nil, err
	}

	if err := eng.SetStrategy(strategyConfig.Type, strategyConfig.Params); err != nil {
		return nil, err
	}

	return eng.Run()
}
