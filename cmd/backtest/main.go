package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/commission"
	"github.com/astocklab/astock-eval/internal/config"
	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/engine/enginev1"
	"github.com/astocklab/astock-eval/internal/evaluator"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/market"
	"github.com/astocklab/astock-eval/internal/report"
	"github.com/astocklab/astock-eval/internal/strategy"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
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

	batchConfig := evaluator.BatchConfig{
		InitialCash: cfg.Engine.InitialCash,
		SlippagePct: cfg.Engine.SlippagePct,
		Workers:     cfg.Batch.Workers,
		Adjust:      cfg.Market.Adjust,
		Commission:  commission.GetModel(commission.Broker(cfg.Engine.Broker)),
	}

	batch, err := evaluator.NewBatchEvaluator(batchConfig, manager, enginev1.Factory(), log)
	if err != nil {
		return err
	}

	strategyConfig, err := loadStrategyConfig(cmd)
	if err != nil {
		return err
	}

	symbols := splitSymbols(cmd.String("symbols"))
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	parallel := cfg.Batch.Parallel && !cmd.Bool("serial")

	result, err := batch.RunBatch(ctx, strategyConfig, symbols, start, end, parallel)
	if err != nil {
		return err
	}

	fmt.Print(result.Summary())

	summaryPath, err := report.ExportSummaryCSV(cfg.Report.OutputDir, result)
	if err != nil {
		return err
	}

	statsPath, err := report.ExportStats(cfg.Report.OutputDir, result)
	if err != nil {
		return err
	}

	log.Info("Reports written",
		zap.String("summary", summaryPath),
		zap.String("stats", statsPath),
	)

	if cfg.Report.StorePath != "" {
		store, err := report.NewStore(cfg.Report.StorePath, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveBatch(result); err != nil {
			return err
		}

		log.Info("Run persisted", zap.String("run_id", result.RunID))
	}

	return nil
}

func loadStrategyConfig(cmd *cli.Command) (evaluator.StrategyConfig, error) {
	strategyType := cmd.String("strategy")
	name := cmd.String("name")

	if name == "" {
		name = strategyType
	}

	params := strategy.Params{}

	for _, pair := range cmd.StringSlice("param") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return evaluator.StrategyConfig{}, fmt.Errorf("invalid param %q, expected key=value", pair)
		}

		params[key] = parseParamValue(value)
	}

	return evaluator.StrategyConfig{
		Name:   name,
		Type:   strategyType,
		Params: params,
	}, nil
}

func parseParamValue(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}

	return symbols
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
		Name:  "backtest",
		Usage: "Evaluate one strategy over a list of instruments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:     "symbols",
				Usage:    "Comma-separated instrument codes",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: fmt.Sprintf("Strategy type (%s, %s)", strategy.TypeDualMA, strategy.TypeMACD),
				Value: strategy.TypeDualMA,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name for the run, defaults to the strategy type",
			},
			&cli.StringSliceFlag{
				Name:  "param",
				Usage: "Strategy parameter as key=value, repeatable",
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
			&cli.BoolFlag{
				Name:  "serial",
				Usage: "Force serial evaluation regardless of the config",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
