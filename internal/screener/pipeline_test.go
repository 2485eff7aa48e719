package screener

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/logger"
)

type PipelineSuite struct {
	suite.Suite
	registry *Registry
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	log := logger.NewNopLogger()
	manager, err := data.NewManager(&patternSource{}, s.T().TempDir(), log)
	s.Require().NoError(err)
	s.registry = NewRegistry(manager, log)
}

func (s *PipelineSuite) writePipeline(content string) string {
	path := filepath.Join(s.T().TempDir(), "pipeline.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (s *PipelineSuite) TestLoadPipeline() {
	path := s.writePipeline(`
name: trend_hunt
mode: and
screeners:
  - name: momentum
    enabled: true
    params:
      period: 20
      threshold: 8.0
  - name: volatility
    enabled: true
    weight: 0.5
`)

	pipeline, err := LoadPipeline(path)
	s.Require().NoError(err)
	s.Equal("trend_hunt", pipeline.Name)
	s.Equal(ModeAND, pipeline.Mode)
	s.Require().Len(pipeline.Screeners, 2)
	s.Equal(20, pipeline.Screeners[0].Params.IntParam("period", 0))
	s.InDelta(0.5, pipeline.Screeners[1].Weight, 1e-9)

	composite, err := pipeline.Composite(s.registry)
	s.Require().NoError(err)
	s.Equal("trend_hunt", composite.Name())
}

func (s *PipelineSuite) TestLoadPipelineRejectsEmpty() {
	path := s.writePipeline(`
name: empty
mode: or
screeners: []
`)

	_, err := LoadPipeline(path)
	s.Error(err)
}

func (s *PipelineSuite) TestCompositeRequiresMode() {
	path := s.writePipeline(`
name: plain
screeners:
  - name: momentum
    enabled: true
`)

	pipeline, err := LoadPipeline(path)
	s.Require().NoError(err)

	_, err = pipeline.Composite(s.registry)
	s.ErrorIs(err, ErrInvalidCombination)
}

func (s *PipelineSuite) TestCompositeRequiresEnabledChild() {
	path := s.writePipeline(`
name: disabled
mode: or
screeners:
  - name: momentum
    enabled: false
`)

	pipeline, err := LoadPipeline(path)
	s.Require().NoError(err)

	_, err = pipeline.Composite(s.registry)
	s.ErrorIs(err, ErrInvalidCombination)
}
