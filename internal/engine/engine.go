// Package engine defines the contract of the strategy simulation engine.
// The orchestration layer only depends on this interface; enginev1 holds
// the reference implementation.
package engine

import (
	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/strategy"
	"github.com/astocklab/astock-eval/internal/types"
)

// Engine runs one strategy over one attached price series and produces a
// performance snapshot. An instance accumulates position and order state
// while running, so it must never be reused: callers create one fresh
// instance per (instrument, strategy) pair via a Factory.
type Engine interface {
	// Configure sets cash, the commission model and the slippage rate.
	Configure(initialCash float64, model commission.Model, slippagePct float64) error
	// SetSeries attaches the price series to simulate over.
	SetSeries(series types.PriceSeries) error
	// SetStrategy attaches a strategy by type name and parameters.
	SetStrategy(strategyType string, params strategy.Params) error
	// Run executes the simulation. It fails on a second call.
	Run() (*types.PerformanceRecord, error)
}

// Factory creates a fresh, isolated engine instance.
type Factory func() Engine
