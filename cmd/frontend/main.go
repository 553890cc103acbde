package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cancer-predictor/internal/cfg"
	"cancer-predictor/internal/client"
	"cancer-predictor/internal/frontend"
	"cancer-predictor/internal/metrics"

	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	cfg.ConfigureLogging(c)

	var (
		stats          frontend.MetricsInterface
		metricsHandler http.Handler
	)
	if c.MetricsEnabled {
		reg := metrics.NewRegistry()
		stats = reg.Metrics
		metricsHandler = reg.Handler()
	}

	api := client.New(c.APIURL, c.APITimeout)
	server := frontend.NewServer(api, stats, c.FrontendAddr, metricsHandler)

	log.Info().
		Str("api_url", api.BaseURL()).
		Dur("api_timeout", c.APITimeout).
		Msg("front-end configured")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	waitForShutdown(serverErr, server.Shutdown, c.ShutdownTimeout)
}

// waitForShutdown blocks until a signal or a server error, then shuts down
// within timeout.
func waitForShutdown(serverErr <-chan error, shutdown func(context.Context) error, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("front-end server failed")
	}

	log.Info().Msg("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
