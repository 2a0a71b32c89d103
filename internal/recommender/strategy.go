// Package recommender blends order-history frequency tables with the weather
// preference into a ranked, confidence-annotated suggestion list.
//
// Two interchangeable strategies are provided:
//
//	weighted:  score = 0.4·weekdayNorm + 0.3·timeNorm + 0.2·overallNorm + 0.1·[weather candidate]
//	cascade:   the most ordered products of the first non-empty table among
//	           weekday, time period and overall
//
// Both share the same fallback ladder when history yields nothing, so callers
// always receive a Recommendation.
package recommender

import (
	"fmt"
	"strings"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/models"
)

// DefaultMaxSuggestions is used when a caller asks for zero suggestions.
const DefaultMaxSuggestions = 3

// defaultPair is returned when there is neither history nor weather.
var defaultPair = []string{"cappuccino", "latte"}

// defaultSingle is the last resort when history exists but scores nothing.
const defaultSingle = "cappuccino"

// Input is everything a strategy needs for one request
type Input struct {
	Tables            history.Tables
	WeatherCandidates []string
	MaxSuggestions    int
}

func (in Input) limit() int {
	if in.MaxSuggestions <= 0 {
		return DefaultMaxSuggestions
	}
	return in.MaxSuggestions
}

// Strategy ranks candidates. Implementations are pure: identical input yields
// an identical Recommendation.
type Strategy interface {
	Name() string
	Score(in Input) models.Recommendation
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "weighted":
		return NewWeighted(DefaultWeights()), nil
	case "cascade":
		return NewCascade(), nil
	}
	return nil, fmt.Errorf("unknown scoring strategy %q", name)
}

// ConfidenceFor maps a top score to a label: >= 0.6 high, >= 0.3 medium, else low.
func ConfidenceFor(top float64) models.Confidence {
	switch {
	case top >= 0.6:
		return models.ConfidenceHigh
	case top >= 0.3:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// fallback resolves the no-signal cases:
//  1. no history, no weather: the full default pair, very low confidence
//  2. no history, weather:    the weather candidates, low confidence
//  3. history, nothing scored: weather candidates or a single default, low confidence
func fallback(in Input, strategy string) models.Recommendation {
	limit := in.limit()

	if in.Tables.IsEmpty() {
		if len(in.WeatherCandidates) > 0 {
			return models.Recommendation{
				Suggestions: truncate(in.WeatherCandidates, limit),
				Confidence:  models.ConfidenceLow,
				Reasoning:   "Weather-based recommendation (no history available)",
				Strategy:    strategy,
			}
		}
		return models.Recommendation{
			Suggestions: truncate(defaultPair, len(defaultPair)),
			Confidence:  models.ConfidenceVeryLow,
			Reasoning:   "Default recommendations (no history or weather data)",
			Strategy:    strategy,
		}
	}

	suggestions := []string{defaultSingle}
	if len(in.WeatherCandidates) > 0 {
		suggestions = truncate(in.WeatherCandidates, limit)
	}
	return models.Recommendation{
		Suggestions: suggestions,
		Confidence:  models.ConfidenceLow,
		Reasoning:   "Fallback recommendation",
		Strategy:    strategy,
	}
}

func truncate(products []string, n int) []string {
	if n > len(products) {
		n = len(products)
	}
	out := make([]string, n)
	copy(out, products[:n])
	return out
}
