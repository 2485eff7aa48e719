package screener

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Pipeline is a screening run described in a YAML file: a candidate
// filter chain plus an optional composite combination.
type Pipeline struct {
	Name      string   `yaml:"name" validate:"required"`
	Mode      Mode     `yaml:"mode"`
	Screeners []Config `yaml:"screeners" validate:"min=1,dive"`
}

// LoadPipeline reads and validates a pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline %s: %w", path, err)
	}

	var pipeline Pipeline
	if err := yaml.Unmarshal(content, &pipeline); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline %s: %w", path, err)
	}

	if err := validator.New().Struct(&pipeline); err != nil {
		return nil, fmt.Errorf("invalid pipeline %s: %w", path, err)
	}

	return &pipeline, nil
}

// Composite builds the composite screener the pipeline describes. A
// pipeline without a mode runs its screeners independently instead.
func (p *Pipeline) Composite(registry *Registry) (*Composite, error) {
	if p.Mode == "" {
		return nil, fmt.Errorf("pipeline %s has no combination mode: %w", p.Name, ErrInvalidCombination)
	}

	enabled := make([]Config, 0, len(p.Screeners))

	for _, config := range p.Screeners {
		if config.Enabled {
			enabled = append(enabled, config)
		}
	}

	if len(enabled) == 0 {
		return nil, fmt.Errorf("pipeline %s has no enabled screeners: %w", p.Name, ErrInvalidCombination)
	}

	return registry.CreateComposite(p.Name, p.Mode, enabled)
}
