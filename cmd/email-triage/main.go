package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/metrics"
)

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	smtpFilter *filter.SMTPFilter,
	m *metrics.Metrics,
	fallbackFactory *factory.FallbackFactory,
	cacheRepo core.CacheRepository,
	sink core.AnalyticsSink,
) error {
	defer logger.Sync()

	var metricsServer *http.Server
	if metricsCfg := cfg.GetMetrics(); metricsCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:              metricsCfg.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Metrics endpoint starting", zap.String("address", metricsCfg.ListenAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	if err := smtpFilter.Start(); err != nil {
		logger.Error("Failed to start SMTP intake", zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := smtpFilter.Stop(); err != nil {
		logger.Error("Failed to stop SMTP intake", zap.Error(err))
	}

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to stop metrics server", zap.Error(err))
		}
		cancel()
	}

	if err := fallbackFactory.Close(); err != nil {
		logger.Error("Failed to close AI fallback clients", zap.Error(err))
	}

	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close analytics sink", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
