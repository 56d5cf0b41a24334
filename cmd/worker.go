package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"solace/internal/bootstrap"
	"solace/internal/bootstrap/logging"
	"solace/internal/errs"
	"solace/internal/usecase/pipeline"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline event worker",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := svc.StartWorker(app.Config.Events.Queue); err != nil {
			logging.Error(ctx, "start worker failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start worker")
		}
		logging.Info(ctx, "worker started", slog.String("queue", app.Config.Events.Queue))

		<-signalCtx.Done()
		logging.Info(ctx, "shutdown signal received")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
