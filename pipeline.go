package aoc

import (
	"go.uber.org/zap"

	"crosswarped.com/aoc/pkg/primitives"
)

// Pipeline pushes a set of ranges through an ordered list of stages.
type Pipeline struct {
	Stages []primitives.Stage

	// Logger receives one debug entry per stage. Nil disables logging.
	Logger *zap.Logger
}

func NewPipeline(stages []primitives.Stage, logger *zap.Logger) *Pipeline {
	return &Pipeline{Stages: stages, Logger: logger}
}

// Run applies every stage in order, feeding each stage's output to the next,
// and returns the output of the last stage. Stage order matters.
func (p *Pipeline) Run(initial primitives.RangeSet) primitives.RangeSet {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	current := initial
	for i, stage := range p.Stages {
		current = stage.Apply(current)
		logger.Debug("Stage applied",
			zap.Int("index", i),
			zap.String("stage", stage.Name),
			zap.Int("rules", len(stage.Rules)),
			zap.Int("ranges", len(current)),
			zap.Uint64("total_length", current.TotalLength()))
	}
	return current
}

// Lowest runs the pipeline and returns the smallest value in its output.
// It reports false when initial is empty.
func (p *Pipeline) Lowest(initial primitives.RangeSet) (uint64, bool) {
	return p.Run(initial).MinStart()
}
