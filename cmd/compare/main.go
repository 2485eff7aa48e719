package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/config"
	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/engine/enginev1"
	"github.com/astocklab/astock-eval/internal/evaluator"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/market"
)

func compareAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	manager, err := data.NewManager(source, cfg.Data.CacheDir, log)
	if err != nil {
		return err
	}

	strategies, err := loadStrategies(cmd.String("strategies"))
	if err != nil {
		return err
	}

	batchConfig := evaluator.BatchConfig{
		InitialCash: cfg.Engine.InitialCash,
		SlippagePct: cfg.Engine.SlippagePct,
		Workers:     cfg.Batch.Workers,
		Adjust:      cfg.Market.Adjust,
		Commission:  commission.GetModel(commission.Broker(cfg.Engine.Broker)),
	}

	comparator, err := evaluator.NewComparator(batchConfig, manager, enginev1.Factory(), log)
	if err != nil {
		return err
	}

	symbol := cmd.String("symbol")
	result, err := comparator.Compare(ctx, symbol, strategies, cmd.Timestamp("start"), cmd.Timestamp("end"))
	if err != nil {
		return err
	}

	fmt.Printf("Comparison for %s (%s ~ %s)\n\n",
		symbol,
		result.Start.Format("2006-01-02"),
		result.End.Format("2006-01-02"),
	)
	fmt.Printf("%-20s %12s %8s %10s %12s %8s\n",
		"strategy", "return%", "trades", "win%", "drawdown%", "sharpe")

	for _, name := range result.Names() {
		record, _ := result.Record(name)
		fmt.Printf("%-20s %12.2f %8d %10.2f %12.2f %8.2f\n",
			name,
			record.TotalReturn,
			record.TotalTrades,
			record.WinRate,
			record.MaxDrawdown,
			record.SharpeRatio,
		)
	}

	metric := evaluator.Metric(cmd.String("metric"))

	bestName, bestRecord, err := result.Best(metric)
	if err != nil {
		return err
	}

	if bestName != "" {
		fmt.Printf("\nBest by %s: %s (return %.2f%%)\n", metric, bestName, bestRecord.TotalReturn)
	}

	return nil
}

// loadStrategies reads the strategy list file: a YAML sequence of
// {name, type, params} entries.
func loadStrategies(path string) ([]evaluator.StrategyConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategies %s: %w", path, err)
	}

	var strategies []evaluator.StrategyConfig
	if err := yaml.Unmarshal(content, &strategies); err != nil {
		return nil, fmt.Errorf("failed to parse strategies %s: %w", path, err)
	}

	if len(strategies) == 0 {
		return nil, fmt.Errorf("strategies file %s is empty", path)
	}

	return strategies, nil
}

func newSource(cfg config.Config) (market.Source, error) {
	switch cfg.Market.Provider {
	case "polygon":
		return market.NewPolygonSource(os.Getenv("POLYGON_API_KEY"))
	default:
		return market.NewEastMoneySource(), nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "compare",
		Usage: "Run several strategies against one instrument",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:     "symbol",
				Usage:    "Instrument code",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategies",
				Usage:    "Path to the YAML strategy list",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "metric",
				Usage: "Ranking metric for the winner",
				Value: string(evaluator.MetricTotalReturn),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format, defaults to today",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
		},
		Action: compareAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
