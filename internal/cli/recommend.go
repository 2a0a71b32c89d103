package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/logger"
	"github.com/diekoffieblik/brewcast/internal/models"
	"github.com/diekoffieblik/brewcast/internal/recommender"
)

type recommendOptions struct {
	useJSON  bool
	at       string
	strategy string
	max      int
	notify   bool
}

func newRecommendCmd(a *app) *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend <user_id> <lat> <lon>",
		Short: "Recommend drinks for a user at a location",
		Long: "Recommend drinks for a user at a location. With --json the order history is read " +
			"from stdin; otherwise it is loaded from the configured database, if any.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRecommend(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.useJSON, "json", false, "Read the order-history payload from stdin")
	cmd.Flags().StringVar(&opts.at, "at", "", "Target time (RFC3339 or 2006-01-02T15:04:05), default now")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Scoring strategy: weighted or cascade (default from config)")
	cmd.Flags().IntVarP(&opts.max, "max", "n", 0, "Maximum number of suggestions (default from config)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Also push the result to Telegram")

	return cmd
}

func (a *app) runRecommend(cmd *cobra.Command, args []string, opts *recommendOptions) error {
	userID := args[0]
	lat, err := parseCoordinate("latitude", args[1], 90)
	if err != nil {
		return err
	}
	lon, err := parseCoordinate("longitude", args[2], 180)
	if err != nil {
		return err
	}

	req := recommender.Request{
		Lat:    &lat,
		Lon:    &lon,
		UserID: userID,
	}

	if opts.at != "" {
		at, err := models.ParseTimestamp(opts.at)
		if err != nil {
			return fmt.Errorf("%w: --at: %v", models.ErrMalformedInput, err)
		}
		req.Target = at
	}
	if opts.max < 0 {
		return fmt.Errorf("%w: --max must not be negative", models.ErrMalformedInput)
	}
	req.MaxSuggestions = opts.max
	if opts.strategy != "" {
		strategy, err := recommender.NewStrategy(opts.strategy)
		if err != nil {
			return err
		}
		req.Strategy = strategy
	}

	if opts.useJSON {
		lines, err := history.ParseHistory(cmd.InOrStdin())
		if err != nil {
			return err
		}
		req.Orders = lines
	}

	store, err := openStore(a.cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	engine, err := buildEngine(a.cfg, store)
	if err != nil {
		return err
	}

	rec, err := engine.Recommend(cmd.Context(), req)
	if err != nil {
		return err
	}
	writeJSON(cmd.OutOrStdout(), rec)

	if opts.notify {
		notifier, err := newNotifier(a.cfg)
		if err != nil {
			logger.Warn("Skipping notification: %v", err)
			return nil
		}
		if err := notifier.Send(userID, rec); err != nil {
			logger.Error("Failed to send notification: %v", err)
		} else {
			logger.Info("Notification sent for user=%q", userID)
		}
	}
	return nil
}

func parseCoordinate(name, s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%w: invalid %s %q", models.ErrMalformedInput, name, s)
	}
	return v, nil
}
