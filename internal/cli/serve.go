package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/diekoffieblik/brewcast/internal/api"
	"github.com/diekoffieblik/brewcast/internal/logger"
)

func newServeCmd(a *app) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listenAddr != "" {
				a.cfg.Server.ListenAddr = listenAddr
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (overrides server.listen_addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	store, err := openStore(a.cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close storage: %v", err)
			}
		}()
	} else {
		logger.Warn("No storage configured; GET /api/recommendations/:userId will have no history")
	}

	engine, err := buildEngine(a.cfg, store)
	if err != nil {
		return err
	}

	if logger.ParseLevel(a.cfg.Logging.Level) != logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(engine))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(a.cfg.Server.ListenAddr, router, a.cfg.Server.ShutdownTimeout).Run(ctx)
}
