package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/batch"
	"github.com/mikey/email-triage/internal/catalog"
	"github.com/mikey/email-triage/internal/classifier"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/nlp"
	"github.com/mikey/email-triage/internal/response"
	"github.com/mikey/email-triage/internal/summarizer"
	"github.com/mikey/email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the SMTP daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := provideAll(container,
		config.New,
		logging.InitLogger,
	); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	if err := provideAll(container,
		factory.NewFilterFactory,
		func(f *factory.FilterFactory) (*filter.SMTPFilter, error) {
			return f.CreateSMTPFilter()
		},
	); err != nil {
		return nil, err
	}

	return container, nil
}

// provideTriage registers everything from the metrics registry up to the
// triage service and batch processor. It expects *config.Config and
// *zap.Logger to be provided already.
func provideTriage(container *dig.Container) error {
	return provideAll(container,
		metrics.New,
		func(m *metrics.Metrics) core.MetricsRecorder { return m },

		// Factories
		factory.NewFallbackFactory,
		factory.NewCacheFactory,
		factory.NewAnalyticsFactory,
		factory.NewTriageFactory,

		func(logger *zap.Logger) *utils.TextProcessor {
			return utils.NewTextProcessor(logger.Named("text"))
		},
		func(f *factory.FallbackFactory) (core.FallbackClassifier, error) {
			return f.CreateFallback(context.Background())
		},
		func(f *factory.CacheFactory) (core.CacheRepository, error) {
			return f.CreateCacheRepository()
		},
		func(f *factory.AnalyticsFactory) (core.AnalyticsSink, error) {
			return f.CreateSink()
		},

		// Analysis components
		func(f *factory.TriageFactory) (*catalog.Catalog, error) {
			return f.CreateCatalog()
		},
		nlp.NewNormalizer,
		func(f *factory.TriageFactory, cat *catalog.Catalog, n *nlp.Normalizer, fb core.FallbackClassifier) *classifier.Classifier {
			return f.CreateClassifier(cat, n, fb)
		},
		func(c *classifier.Classifier) core.Classifier { return c },
		func(f *factory.TriageFactory) (core.AttachmentAnalyzer, error) {
			return f.CreateAttachmentAnalyzer()
		},
		func() core.ResponseGenerator { return response.NewGenerator() },
		summarizer.New,

		// Service
		func(f *factory.TriageFactory) (core.ServiceOptions, error) {
			return f.ServiceOptions()
		},
		core.NewTriageService,
		func(svc *core.TriageService, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *batch.Processor {
			batchCfg := cfg.GetBatch()
			return batch.NewProcessor(svc, batch.Options{
				ChunkSize:      batchCfg.ChunkSize,
				CollectGarbage: batchCfg.CollectGarbage,
			}, logger.Named("batch"), m)
		},
	)
}

func provideAll(container *dig.Container, constructors ...any) error {
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}
