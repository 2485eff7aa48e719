package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/astocklab/astock-eval/internal/config"
	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/logger"
	"github.com/astocklab/astock-eval/internal/market"
	"github.com/astocklab/astock-eval/internal/screener"
)

func screenAction(ctx context.Context, cmd *cli.Command) error {
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

	registry := screener.NewRegistry(manager, log)

	if cmd.Bool("list") {
		for _, name := range registry.List() {
			fmt.Println(name)
		}

		return nil
	}

	pipeline, err := screener.LoadPipeline(cmd.String("pipeline"))
	if err != nil {
		return err
	}

	symbols := splitSymbols(cmd.String("symbols"))

	if pipeline.Mode == "" {
		return runIndependent(ctx, registry, pipeline, symbols)
	}

	composite, err := pipeline.Composite(registry)
	if err != nil {
		return err
	}

	result, err := composite.Screen(ctx, symbols, nil)
	if err != nil {
		return err
	}

	printResult(result)

	return nil
}

func runIndependent(ctx context.Context, registry *screener.Registry, pipeline *screener.Pipeline, symbols []string) error {
	results := registry.BatchScreen(ctx, pipeline.Screeners, symbols)
	if len(results) == 0 {
		return fmt.Errorf("pipeline %s produced no results", pipeline.Name)
	}

	for _, result := range results {
		printResult(result)
	}

	return nil
}

func printResult(result *screener.Result) {
	fmt.Printf("%s: %d of %d selected\n", result.ScreenerName, result.SelectedCount(), result.Total)

	for _, symbol := range result.Selected {
		fmt.Printf("  %s", symbol)

		if metrics, ok := result.Metrics[symbol]; ok {
			parts := make([]string, 0, len(metrics))
			for key, value := range metrics {
				parts = append(parts, fmt.Sprintf("%s=%.2f", key, value))
			}

			fmt.Printf("  (%s)", strings.Join(parts, ", "))
		}

		fmt.Println()
	}
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
		Name:  "screen",
		Usage: "Filter a candidate list through a screener pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "pipeline",
				Aliases: []string{"p"},
				Usage:   "Path to the YAML pipeline file",
			},
			&cli.StringFlag{
				Name:  "symbols",
				Usage: "Comma-separated candidate instrument codes",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List registered screeners and exit",
			},
		},
		Action: screenAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
