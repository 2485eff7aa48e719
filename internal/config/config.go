package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/astocklab/astock-eval/internal/types"
)

// Config is the application configuration shared by the command line
// binaries.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Market MarketConfig `yaml:"market"`
	Engine EngineConfig `yaml:"engine"`
	Batch  BatchConfig  `yaml:"batch"`
	Report ReportConfig `yaml:"report"`
}

type DataConfig struct {
	CacheDir string `yaml:"cache_dir" validate:"required"`
}

type MarketConfig struct {
	// Provider selects the market data source: eastmoney or polygon.
	Provider string           `yaml:"provider" validate:"oneof=eastmoney polygon"`
	Adjust   types.AdjustMode `yaml:"adjust"`
}

type EngineConfig struct {
	InitialCash float64 `yaml:"initial_cash" validate:"gt=0"`
	SlippagePct float64 `yaml:"slippage_pct" validate:"gte=0"`
	Broker      string  `yaml:"broker"`
}

type BatchConfig struct {
	Workers  int  `yaml:"workers" validate:"gte=1"`
	Parallel bool `yaml:"parallel"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir" validate:"required"`
	// StorePath is the DuckDB file for persisted runs; empty disables
	// persistence.
	StorePath string `yaml:"store_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Data: DataConfig{
			CacheDir: "data/cache",
		},
		Market: MarketConfig{
			Provider: "eastmoney",
			Adjust:   types.AdjustForward,
		},
		Engine: EngineConfig{
			InitialCash: 100000,
			SlippagePct: 0.0001,
			Broker:      "astock",
		},
		Batch: BatchConfig{
			Workers:  4,
			Parallel: true,
		},
		Report: ReportConfig{
			OutputDir: "data/reports",
		},
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
