package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Confidence is the qualitative strength of a recommendation.
type Confidence string

const (
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// Valid reports whether c is one of the known labels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceVeryLow, ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Recommendation is the ranked, confidence-annotated suggestion list for one
// request. Scores only hold entries for returned suggestions.
type Recommendation struct {
	Suggestions []string           `json:"suggestions"`
	Scores      map[string]float64 `json:"scores,omitempty"`
	Confidence  Confidence         `json:"confidence"`
	Reasoning   string             `json:"reasoning"`
	Strategy    string             `json:"strategy,omitempty"`
	Category    string             `json:"category,omitempty"`
	Condition   string             `json:"condition,omitempty"`
	Weather     WeatherObservation `json:"weather"`
	TargetTime  string             `json:"target_time,omitempty"`
	Weekday     string             `json:"weekday,omitempty"`
	TimePeriod  string             `json:"time_period,omitempty"`
}

// Validate checks that the recommendation is internally consistent
func (r *Recommendation) Validate() error {
	if !r.Confidence.Valid() {
		return fmt.Errorf("unknown confidence %q", r.Confidence)
	}
	for id, score := range r.Scores {
		if score < 0.0 || score > 1.0 {
			return fmt.Errorf("score for %s must be between 0.0 and 1.0", id)
		}
		found := false
		for _, s := range r.Suggestions {
			if s == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("score for %s has no matching suggestion", id)
		}
	}
	return nil
}

// Summary renders a one-line human description, e.g. for logs.
func (r *Recommendation) Summary() string {
	return fmt.Sprintf("%s (confidence=%s)", strings.Join(r.Suggestions, ", "), r.Confidence)
}

// MarshalJSON rounds scores to three decimals on output.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	type alias Recommendation
	out := alias(r)
	if r.Scores != nil {
		out.Scores = make(map[string]float64, len(r.Scores))
		for id, s := range r.Scores {
			out.Scores[id] = math.Round(s*1000) / 1000
		}
	}
	return json.Marshal(out)
}
