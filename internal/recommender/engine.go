package recommender

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/logger"
	"github.com/diekoffieblik/brewcast/internal/models"
	"github.com/diekoffieblik/brewcast/internal/weather"
)

// WeatherSource returns current conditions, or an empty observation when
// the lookup fails. It must not block past its own deadline.
type WeatherSource interface {
	Observe(ctx context.Context, lat, lon float64) models.WeatherObservation
}

// OrderSource loads a user's flattened order history.
type OrderSource interface {
	LoadOrders(ctx context.Context, userID string) ([]models.OrderLine, error)
}

// Request describes one recommendation call. Orders, when non-nil, is used as
// is; otherwise the engine loads UserID's history from its OrderSource.
type Request struct {
	Lat            *float64
	Lon            *float64
	UserID         string
	Orders         []models.OrderLine
	Target         time.Time // zero means now
	MaxSuggestions int       // zero means the engine default
	Strategy       Strategy  // nil means the engine default
}

// EngineConfig holds the engine's static collaborators
type EngineConfig struct {
	Classifier     *weather.Classifier
	Boundaries     history.Boundaries
	Strategy       Strategy
	MaxSuggestions int
}

// Engine wires weather, history and a strategy together
type Engine struct {
	classifier     *weather.Classifier
	boundaries     history.Boundaries
	strategy       Strategy
	maxSuggestions int
	weather        WeatherSource
	orders         OrderSource
	now            func() time.Time
}

// NewEngine creates an engine. weatherSrc and orders may be nil.
func NewEngine(cfg EngineConfig, weatherSrc WeatherSource, orders OrderSource) *Engine {
	if cfg.Classifier == nil {
		cfg.Classifier = weather.NewClassifier(weather.DefaultThresholds())
	}
	if cfg.Strategy == nil {
		cfg.Strategy = NewWeighted(DefaultWeights())
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultMaxSuggestions
	}
	if cfg.Boundaries == (history.Boundaries{}) {
		cfg.Boundaries = history.DefaultBoundaries()
	}
	return &Engine{
		classifier:     cfg.Classifier,
		boundaries:     cfg.Boundaries,
		strategy:       cfg.Strategy,
		maxSuggestions: cfg.MaxSuggestions,
		weather:        weatherSrc,
		orders:         orders,
		now:            time.Now,
	}
}

// Recommend gathers weather and history concurrently, then scores. Weather
// failures degrade to no weather signal; only history loading can fail.
func (e *Engine) Recommend(ctx context.Context, req Request) (*models.Recommendation, error) {
	target := req.Target
	if target.IsZero() {
		target = e.now()
	}

	var (
		obs     models.WeatherObservation
		lines   = req.Orders
		loadErr error
		wg      conc.WaitGroup
	)

	if req.Lat != nil && req.Lon != nil && e.weather != nil {
		lat, lon := *req.Lat, *req.Lon
		wg.Go(func() {
			obs = e.weather.Observe(ctx, lat, lon)
		})
	}
	if lines == nil && req.UserID != "" && e.orders != nil {
		wg.Go(func() {
			lines, loadErr = e.orders.LoadOrders(ctx, req.UserID)
		})
	}
	wg.Wait()

	if loadErr != nil {
		return nil, fmt.Errorf("failed to load orders for %s: %w", req.UserID, loadErr)
	}

	rec := e.Score(lines, obs, target, req.MaxSuggestions, req.Strategy)
	logger.Debug("Recommendation for user=%q at %s: %s", req.UserID, rec.TargetTime, rec.Summary())
	return rec, nil
}

// Score is the synchronous core: analyze history, classify weather, rank.
// It is a pure function of its arguments.
func (e *Engine) Score(lines []models.OrderLine, obs models.WeatherObservation, target time.Time, maxSuggestions int, strategy Strategy) *models.Recommendation {
	if strategy == nil {
		strategy = e.strategy
	}
	if maxSuggestions <= 0 {
		maxSuggestions = e.maxSuggestions
	}

	tables := history.Analyze(lines, target, e.boundaries)
	category, weatherCandidates := e.classifier.Evaluate(obs)

	rec := strategy.Score(Input{
		Tables:            tables,
		WeatherCandidates: weatherCandidates,
		MaxSuggestions:    maxSuggestions,
	})

	rec.Weather = obs
	rec.Category = string(category)
	if obs.ConditionCode != nil {
		rec.Condition = weather.CodeName(*obs.ConditionCode)
	}
	rec.TargetTime = target.Format("2006-01-02 15:04")
	rec.Weekday = target.Weekday().String()
	rec.TimePeriod = string(e.boundaries.Bucket(target.Hour()))
	return &rec
}
