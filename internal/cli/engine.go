package cli

import (
	"fmt"

	"github.com/diekoffieblik/brewcast/internal/config"
	"github.com/diekoffieblik/brewcast/internal/recommender"
	"github.com/diekoffieblik/brewcast/internal/storage"
	"github.com/diekoffieblik/brewcast/internal/telegram"
	"github.com/diekoffieblik/brewcast/internal/weather"
)

// buildEngine wires the engine from configuration. store may be nil.
func buildEngine(cfg *config.Config, store *storage.Storage) (*recommender.Engine, error) {
	strategy, err := recommender.NewStrategy(cfg.Scoring.Strategy)
	if err != nil {
		return nil, err
	}

	classifier := weather.NewClassifier(weather.Thresholds{
		Hot:          cfg.Weather.HotThreshold,
		Cold:         cfg.Weather.ColdThreshold,
		Cool:         cfg.Weather.CoolThreshold,
		ClearSkyWarm: cfg.Weather.ClearSkyWarm,
	})

	weatherClient := weather.NewClient(
		cfg.Weather.APIBaseURL,
		cfg.Weather.Timeout,
		weather.ClientConfig{
			MaxRetries:     cfg.Weather.MaxRetries,
			RetryDelayBase: cfg.Weather.RetryDelayBase,
		},
	)

	var orders recommender.OrderSource
	if store != nil {
		orders = store
	}

	return recommender.NewEngine(recommender.EngineConfig{
		Classifier:     classifier,
		Boundaries:     cfg.History.Boundaries(),
		Strategy:       strategy,
		MaxSuggestions: cfg.Scoring.MaxSuggestions,
	}, weatherClient, orders), nil
}

// openStore opens the configured database, or returns nil when none is set
func openStore(cfg *config.Config) (*storage.Storage, error) {
	if cfg.Storage.DBPath == "" {
		return nil, nil
	}
	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}

func newNotifier(cfg *config.Config) (*telegram.Client, error) {
	if !cfg.Telegram.Enabled {
		return nil, fmt.Errorf("telegram notifications are disabled (set telegram.enabled)")
	}
	return telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
}
