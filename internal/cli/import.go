package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/diekoffieblik/brewcast/internal/history"
	"github.com/diekoffieblik/brewcast/internal/logger"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import an order-history payload from stdin",
		Long:  "Import an order-history payload from stdin. Every user in the payload has their stored orders replaced.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd)
		},
	}
}

func (a *app) runImport(cmd *cobra.Command) error {
	payload, err := history.DecodeHistory(cmd.InOrStdin())
	if err != nil {
		return err
	}

	store, err := openStore(a.cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no database configured: set storage.db_path or --db")
	}
	defer store.Close()

	imported, err := store.Import(cmd.Context(), payload)
	if err != nil {
		return err
	}
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("Imported %d order lines into %s", imported, a.cfg.Storage.DBPath)

	writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"ok":       true,
		"imported": imported,
		"stats":    stats,
	})
	return nil
}
