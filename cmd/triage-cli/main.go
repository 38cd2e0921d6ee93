package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/batch"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/summarizer"
)

func main() {
	_ = godotenv.Load()

	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.TriageService,
	processor *batch.Processor,
	summ *summarizer.Summarizer,
	fallbackFactory *factory.FallbackFactory,
	cacheRepo core.CacheRepository,
	sink core.AnalyticsSink,
) error {
	defer logger.Sync()
	defer func() {
		if err := fallbackFactory.Close(); err != nil {
			logger.Warn("Failed to close AI fallback clients", zap.Error(err))
		}
		if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		if closer, ok := sink.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close analytics sink", zap.Error(err))
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		flags:      flags,
		logger:     logger,
		service:    service,
		processor:  processor,
		summarizer: summ,
		in:         os.Stdin,
		out:        os.Stdout,
		progress:   os.Stderr,
	}
	return a.run(ctx)
}
