// cmd/trip-planner/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trip-planner/internal/server"
)

func newServeCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve invocations over HTTP",
		Example: `  trip-planner serve
  trip-planner serve --address :9090
  curl -s localhost:8080/invocations -d '{"prompt":"Mumbai to Pune for 3 nights"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, "trip-planner")
			if err != nil {
				return err
			}
			defer a.close()

			if address == "" {
				address = a.cfg.Server.Address
			}
			srv := server.New(&server.Config{
				Address:        address,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
			}, a.planner, nil, a.log)

			return runServer(ctx, srv, a.log)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (default from config)")
	return cmd
}

type shutdownLogger interface {
	Info(msg string, fields map[string]interface{})
}

// runServer serves until ctx is done, then drains in-flight requests.
func runServer(ctx context.Context, srv *server.Server, log shutdownLogger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, stopping server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
