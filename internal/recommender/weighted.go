package recommender

import (
	"math"
	"sort"

	"github.com/diekoffieblik/brewcast/internal/models"
)

// Weights are the fixed blend coefficients of the weighted strategy
type Weights struct {
	Weekday    float64
	TimePeriod float64
	Overall    float64
	Weather    float64 // flat bonus for weather candidates
}

// DefaultWeights returns 0.4 weekday, 0.3 time period, 0.2 overall, 0.1 weather.
func DefaultWeights() Weights {
	return Weights{Weekday: 0.4, TimePeriod: 0.3, Overall: 0.2, Weather: 0.1}
}

// Weighted blends the three frequency tables and the weather bonus
type Weighted struct {
	weights Weights
}

// NewWeighted creates a weighted strategy
func NewWeighted(w Weights) *Weighted {
	return &Weighted{weights: w}
}

// Name implements Strategy
func (s *Weighted) Name() string {
	return "weighted"
}

type scored struct {
	product string
	score   float64
}

// candidates returns the union of overall-table products (sorted) followed by
// weather candidates not already present, in table order.
func candidates(in Input) []string {
	products := in.Tables.Overall.Products()
	seen := make(map[string]bool, len(products)+len(in.WeatherCandidates))
	for _, p := range products {
		seen[p] = true
	}
	for _, p := range in.WeatherCandidates {
		if !seen[p] {
			seen[p] = true
			products = append(products, p)
		}
	}
	return products
}

// Score implements Strategy
func (s *Weighted) Score(in Input) models.Recommendation {
	ranked, signals, err := s.rank(in)
	if err != nil {
		return fallback(in, s.Name())
	}

	limit := in.limit()
	if limit > len(ranked) {
		limit = len(ranked)
	}
	top := ranked[:limit]

	rec := models.Recommendation{
		Suggestions: make([]string, 0, len(top)),
		Scores:      make(map[string]float64, len(top)),
		Confidence:  ConfidenceFor(top[0].score),
		Reasoning:   signals.render(),
		Strategy:    s.Name(),
	}
	for _, r := range top {
		rec.Suggestions = append(rec.Suggestions, r.product)
		rec.Scores[r.product] = r.score
	}
	return rec
}

// rank scores every candidate, drops zero scores and sorts by score
// descending, then product ID ascending.
func (s *Weighted) rank(in Input) ([]scored, *signalSet, error) {
	if in.Tables.IsEmpty() {
		return nil, nil, models.ErrNoSignal
	}

	weatherSet := make(map[string]bool, len(in.WeatherCandidates))
	for _, p := range in.WeatherCandidates {
		weatherSet[p] = true
	}

	t := in.Tables
	signals := newSignalSet()
	var ranked []scored

	for _, product := range candidates(in) {
		score := 0.0

		if t.Weekday.Get(product) > 0 {
			score += s.weights.Weekday * t.Weekday.Norm(product)
			signals.add(SignalWeekday)
		}
		if t.TimePeriod.Get(product) > 0 {
			score += s.weights.TimePeriod * t.TimePeriod.Norm(product)
			signals.add(SignalTimePeriod)
		}
		score += s.weights.Overall * t.Overall.Norm(product)
		if weatherSet[product] {
			score += s.weights.Weather
			signals.add(SignalWeather)
		}

		score = math.Min(score, 1)
		if score > 0 {
			ranked = append(ranked, scored{product: product, score: score})
		}
	}

	if len(ranked) == 0 {
		return nil, nil, models.ErrNoSignal
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].product < ranked[j].product
	})

	return ranked, signals, nil
}
