package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/engine"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/strategy"
	"github.com/astocklab/astock-eval/internal/types"
)

// StrategyConfig describes one strategy to evaluate. Name is the display
// name used in results; Type selects the strategy implementation.
type StrategyConfig struct {
	Name   string          `yaml:"name" validate:"required"`
	Type   string          `yaml:"type" validate:"required"`
	Params strategy.Params `yaml:"params"`
}

// BatchConfig holds the evaluation parameters shared by all tasks.
type BatchConfig struct {
	InitialCash float64 `yaml:"initial_cash" validate:"gt=0"`
	SlippagePct float64 `yaml:"slippage_pct" validate:"gte=0"`
	Workers     int     `yaml:"workers" validate:"gte=1"`
	Adjust      types.AdjustMode
	Commission  commission.Model
}

// DefaultBatchConfig returns the standard configuration: 100k cash,
// A-share commission, four workers, forward-adjusted prices.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		InitialCash: 100000,
		SlippagePct: 0.0001,
		Workers:     4,
		Adjust:      types.AdjustForward,
		Commission:  commission.NewAStock(),
	}
}

// BatchEvaluator runs one strategy over many instruments. The data
// manager is shared across tasks (it is concurrency-safe); the simulation
// engine is never shared: every task builds a fresh instance.
type BatchEvaluator struct {
	config  BatchConfig
	manager *data.Manager
	factory engine.Factory
	log     *logger.Logger
}

// NewBatchEvaluator validates the config and creates an evaluator.
func NewBatchEvaluator(config BatchConfig, manager *data.Manager, factory engine.Factory, log *logger.Logger) (*BatchEvaluator, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid batch config: %w", err)
	}

	if config.Commission == nil {
		config.Commission = commission.NewAStock()
	}

	return &BatchEvaluator{
		config:  config,
		manager: manager,
		factory: factory,
		log:     log,
	}, nil
}

type taskResult struct {
	symbol string
	record *types.PerformanceRecord
	err    error
}

// RunBatch evaluates the strategy over every symbol. In parallel mode a
// bounded pool of workers processes the symbols; in serial mode they are
// processed in input order. Either way a per-task failure is logged,
// counted and never aborts the batch. When every task fails the run is
// surfaced as an error.
func (b *BatchEvaluator) RunBatch(ctx context.Context, strategyConfig StrategyConfig, symbols []string, start time.Time, end time.Time, parallel bool) (*BatchResult, error) {
	if err := validator.New().Struct(strategyConfig); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to evaluate")
	}

	runID := uuid.New().String()
	result := newBatchResult(runID, strategyConfig.Name, start, end, len(symbols))

	b.log.Info("Batch evaluation started",
		zap.String("run_id", runID),
		zap.String("strategy", strategyConfig.Name),
		zap.Int("symbols", len(symbols)),
		zap.Bool("parallel", parallel),
	)

	if parallel && len(symbols) > 1 {
		b.runParallel(ctx, strategyConfig, symbols, start, end, result)
	} else {
		b.runSerial(ctx, strategyConfig, symbols, start, end, result)
	}

	b.log.Info("Batch evaluation finished",
		zap.String("run_id", runID),
		zap.Int("success", result.Success),
		zap.Int("fail", result.Fail),
	)

	if result.Success == 0 {
		return nil, fmt.Errorf("batch %s: %w", runID, ErrNoResults)
	}

	return result, nil
}

func (b *BatchEvaluator) runParallel(ctx context.Context, strategyConfig StrategyConfig, symbols []string, start, end time.Time, result *BatchResult) {
	jobs := make(chan string)
	results := make(chan taskResult)

	var wg sync.WaitGroup

	for w := 0; w < b.config.Workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for symbol := range jobs {
				results <- b.evaluateOne(ctx, strategyConfig, symbol, start, end)
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			jobs <- symbol
		}

		close(jobs)
		wg.Wait()
		close(results)
	}()

	for task := range results {
		b.collect(result, task)
	}
}

func (b *BatchEvaluator) runSerial(ctx context.Context, strategyConfig StrategyConfig, symbols []string, start, end time.Time, result *BatchResult) {
	for _, symbol := range symbols {
		b.collect(result, b.evaluateOne(ctx, strategyConfig, symbol, start, end))
	}
}

func (b *BatchEvaluator) collect(result *BatchResult, task taskResult) {
	if task.err != nil {
		b.log.Warn("Symbol evaluation failed",
			zap.String("symbol", task.symbol),
			zap.Error(task.err),
		)
		result.addFailure()

		return
	}

	result.addSuccess(task.symbol, task.record)
}

// evaluateOne is the task boundary: any error or panic inside one
// instrument's evaluation is converted into a failed taskResult.
func (b *BatchEvaluator) evaluateOne(ctx context.Context, strategyConfig StrategyConfig, symbol string, start, end time.Time) (task taskResult) {
	task.symbol = symbol

	defer func() {
		if r := recover(); r != nil {
			task.record = nil
			task.err = fmt.Errorf("panic in evaluation of %s: %v", symbol, r)
		}
	}()

	series := b.manager.GetData(ctx, symbol, start, end, b.config.Adjust, false)
	if series.IsEmpty() {
		task.err = fmt.Errorf("no data for %s", symbol)
		return task
	}

	record, err := b.runEngine(strategyConfig, series)
	if err != nil {
		task.err = err
		return task
	}

	task.record = record

	return task
}

func (b *BatchEvaluator) runEngine(strategyConfig StrategyConfig, series types.PriceSeries) (*types.PerformanceRecord, error) {
	eng := b.factory()

	if err := eng.Configure(b.config.InitialCash, b.config.Commission, b.config.SlippagePct); err != nil {
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
