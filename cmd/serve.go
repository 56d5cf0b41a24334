package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"solace/internal/bootstrap"
	"solace/internal/bootstrap/logging"
	"solace/internal/errs"
	"solace/internal/transport/httpapi"
	"solace/internal/usecase/pipeline"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journal HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := httpapi.NewServer(app.Config.HTTP.Addr, svc)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()
		logging.Info(ctx, "http server started", slog.String("addr", app.Config.HTTP.Addr))

		select {
		case err := <-errCh:
			if err != nil {
				return errs.Wrap(err, "serve http")
			}
			return nil
		case <-signalCtx.Done():
		}

		logging.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
