package recommender

import (
	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/models"
)

// Cascade returns the most-ordered products of the first non-empty table,
// trying weekday, then time period, then overall. Weather only matters through
// the fallback ladder.
type Cascade struct{}

// NewCascade creates a cascade strategy
func NewCascade() *Cascade {
	return &Cascade{}
}

// Name implements Strategy
func (s *Cascade) Name() string {
	return "cascade"
}

type cascadeStep struct {
	signal     Signal
	table      history.FrequencyTable
	confidence models.Confidence
}

// Score implements Strategy
func (s *Cascade) Score(in Input) models.Recommendation {
	step, leaders, err := s.pick(in)
	if err != nil {
		return fallback(in, s.Name())
	}

	suggestions := truncate(leaders, in.limit())
	scores := make(map[string]float64, len(suggestions))
	for _, p := range suggestions {
		scores[p] = 1.0
	}

	signals := newSignalSet()
	signals.add(step.signal)
	return models.Recommendation{
		Suggestions: suggestions,
		Scores:      scores,
		Confidence:  step.confidence,
		Reasoning:   signals.render(),
		Strategy:    s.Name(),
	}
}

// pick returns the first step whose table has a positive maximum, with every
// product sharing that maximum.
func (s *Cascade) pick(in Input) (cascadeStep, []string, error) {
	steps := []cascadeStep{
		{SignalWeekday, in.Tables.Weekday, models.ConfidenceHigh},
		{SignalTimePeriod, in.Tables.TimePeriod, models.ConfidenceMedium},
		{SignalOverall, in.Tables.Overall, models.ConfidenceLow},
	}
	for _, step := range steps {
		if leaders := step.table.Leaders(); len(leaders) > 0 {
			return step, leaders, nil
		}
	}
	return cascadeStep{}, nil, models.ErrNoSignal
}
