package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/astocklab/astock-eval/internal/evaluator"
)

var summaryHeader = []string{
	"symbol",
	"initial_cash",
	"final_value",
	"total_return_pct",
	"trade_count",
	"win_rate_pct",
	"max_drawdown_pct",
	"sharpe_ratio",
}

// ExportSummaryCSV writes the per-symbol results of a batch run to
// batch_{strategy}_summary_{timestamp}.csv under dir, best return
// first. It returns the written path.
func ExportSummaryCSV(dir string, result *evaluator.BatchResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	ranked, err := result.TopN(result.Success, evaluator.MetricTotalReturn)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, exportFileName(result.StrategyName, "summary", "csv"))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(summaryHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for _, item := range ranked {
		record := item.Record
		row := []string{
			item.Symbol,
			formatFloat(record.InitialCash),
			formatFloat(record.FinalValue),
			formatFloat(record.TotalReturn),
			strconv.Itoa(record.TotalTrades),
			formatFloat(record.WinRate),
			formatFloat(record.MaxDrawdown),
			formatFloat(record.SharpeRatio),
		}

		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row for %s: %w", item.Symbol, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return path, nil
}

// ExportStats writes the aggregate statistics text dump to
// batch_{strategy}_stats_{timestamp}.txt under dir.
func ExportStats(dir string, result *evaluator.BatchResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, exportFileName(result.StrategyName, "stats", "txt"))

	if err := os.WriteFile(path, []byte(result.Summary()), 0644); err != nil {
		return "", fmt.Errorf("failed to write stats file: %w", err)
	}

	return path, nil
}

func exportFileName(strategy, kind, ext string) string {
	timestamp := time.Now().Format("20060102_150405")

	return fmt.Sprintf("batch_%s_%s_%s.%s", strategy, kind, timestamp, ext)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
