package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusworks/seatwise/pkg/api"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := api.NewServer(&api.Options{
				Address:  app.Cfg.ListenAddr,
				Database: app.Database,
				Logger:   app.Logger,
			})

			// Shut down cleanly on SIGINT/SIGTERM
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("API server listening", zap.String("address", app.Cfg.ListenAddr))
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				app.Logger.Info("Shutting down", zap.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(app.Ctx, 10*time.Second)
				defer cancel()
				return srv.Stop(ctx)
			}
		},
	}
}
