package types

// PerformanceRecord is an immutable snapshot produced by one
// (instrument, strategy) evaluation. It is never mutated after creation.
type PerformanceRecord struct {
	// Initial cash of the run.
	InitialCash float64 `yaml:"initial_cash" json:"initial_cash"`
	// Account value at the end of the run, cash plus marked positions.
	FinalValue float64 `yaml:"final_value" json:"final_value"`
	// Total return in percent.
	TotalReturn float64 `yaml:"total_return_pct" json:"total_return_pct"`
	// Count of completed round-trip trades.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Percentage of round trips closed with a profit.
	WinRate float64 `yaml:"win_rate_pct" json:"win_rate_pct"`
	// Maximum peak-to-trough decline of account value in percent.
	MaxDrawdown float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	// Annualized Sharpe ratio computed from daily returns.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
}
