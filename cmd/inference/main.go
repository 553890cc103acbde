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
	"cancer-predictor/internal/metrics"
	"cancer-predictor/internal/ml"

	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	cfg.ConfigureLogging(c)

	network, scaler, err := ml.LoadArtifacts(c.ModelPath, c.ScalerPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load model artifacts")
	}

	var (
		reg            *metrics.Registry
		predictorStats ml.MetricsInterface
		metricsHandler http.Handler
	)
	if c.MetricsEnabled {
		reg = metrics.NewRegistry()
		predictorStats = reg.Metrics
		metricsHandler = reg.Handler()
	}

	predictor, err := ml.NewPredictor(scaler, network, predictorStats)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create predictor")
	}

	server := ml.NewModelServer(predictor, c.ListenAddr, metricsHandler)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	waitForShutdown(serverErr, server.Shutdown, c.ShutdownTimeout)

	if reg != nil {
		log.Info().Float64("failure_rate", reg.FailureRate()).Msg("inference service stopped")
	}
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
		log.Fatal().Err(err).Msg("model server failed")
	}

	log.Info().Msg("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
