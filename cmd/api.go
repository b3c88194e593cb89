package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipefeeder/internal/adapter/inbound/api"
	"recipefeeder/internal/adapter/outbound/recipestore"
	"recipefeeder/internal/application/common/slogger"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const shutdownTimeout = 10 * time.Second

// newAPICmd creates the api command: the HTTP shell exposing the manual
// feed trigger, health, and status endpoints.
func newAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Start the feeder HTTP API",
		Long: `Start the HTTP shell over the feeder.

Endpoints:
- POST /api/v1/feed  trigger a feeding run (body: {"cursor": "..."} plus
  optional feeder option overrides such as max_cycles, target_queue_count)
- GET  /health       database and queue health
- GET  /status       queue connection state, publish metrics, embedding count

The API owns no state; the next cursor comes back in the feed response
and the caller keeps it.`,
		Run: func(_ *cobra.Command, _ []string) {
			runAPIServer()
		},
	}
}

func runAPIServer() {
	cfg := GetConfig()
	ctx := context.Background()

	meterProvider := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(meterProvider)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
	}()

	deps, err := buildFeederDependencies(ctx, cfg, cfg.Feeder)
	if err != nil {
		slogger.ErrorNoCtx("Failed to build feeder dependencies", slogger.Fields{"error": err.Error()})
		return
	}
	defer deps.close()

	server := api.NewServer(
		cfg.API,
		cfg.Feeder,
		deps.newFeeder,
		recipestore.NewDatabaseHealthChecker(deps.pool),
		deps.publisher,
		deps.index,
	)

	serverErr := make(chan error, 1)
	go func() {
		slogger.InfoNoCtx("Starting feeder API server", slogger.Fields{
			"host": cfg.API.Host,
			"port": cfg.API.Port,
		})
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slogger.ErrorNoCtx("API server stopped", slogger.Fields{"error": err.Error()})
	case sig := <-quit:
		slogger.InfoNoCtx("Shutting down API server", slogger.Fields{"signal": sig.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.ErrorNoCtx("Graceful shutdown failed", slogger.Fields{"error": err.Error()})
		}
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newAPICmd())
}
