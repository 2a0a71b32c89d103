// Package cli implements the brewcast CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/diekoffieblik/brewcast/internal/config"
	"github.com/diekoffieblik/brewcast/internal/logger"
)

// app carries state shared by every command of one invocation
type app struct {
	configPath string
	dbPath     string
	cfg        *config.Config
}

// NewRootCmd builds the top-level command
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "brewcast",
		Short:         "Weather-aware drink recommendations",
		Long:          "Recommends drinks from a customer's order history and the current weather. JSON in, JSON out.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to configuration file (default: defaults + BREWCAST_* env)")
	root.PersistentFlags().StringVarP(&a.dbPath, "db", "d", "", "Order-history database path (overrides storage.db_path)")

	root.AddCommand(
		newRecommendCmd(a),
		newServeCmd(a),
		newImportCmd(a),
	)
	return root
}

// load reads .env, then configuration, then sets up logging
func (a *app) load() error {
	envErr := godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Storage.DBPath = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("Error loading .env file: %v", envErr)
	}
	if a.configPath != "" {
		logger.Debug("Configuration loaded from %s", a.configPath)
	}

	a.cfg = cfg
	return nil
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	return execute(NewRootCmd(), os.Args[1:], os.Stdin, os.Stdout)
}

func execute(root *cobra.Command, args []string, stdin io.Reader, stdout io.Writer) int {
	root.SetArgs(keepNegativeNumbers(root, args))
	root.SetIn(stdin)
	root.SetOut(stdout)

	if err := root.Execute(); err != nil {
		writeJSON(stdout, map[string]string{"error": err.Error()})
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write output: %v", err)
	}
}
