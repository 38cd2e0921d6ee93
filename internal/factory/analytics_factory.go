package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/analytics"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
)

// AnalyticsFactory creates analytics sinks based on configuration
type AnalyticsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAnalyticsFactory creates a new analytics factory
func NewAnalyticsFactory(cfg *config.Config, logger *zap.Logger) *AnalyticsFactory {
	return &AnalyticsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSink creates the configured analytics sink
func (f *AnalyticsFactory) CreateSink() (core.AnalyticsSink, error) {
	analyticsCfg, err := f.cfg.GetAnalytics()
	if err != nil {
		return nil, err
	}

	switch analyticsCfg.Type {
	case "log":
		return analytics.NewLogSink(f.logger), nil
	case "none", "":
		return analytics.NopSink{}, nil
	case "sqlite":
		if err := ensureDir(analyticsCfg.SQLitePath); err != nil {
			return nil, err
		}
		return analytics.NewSQLiteSink(analyticsCfg.SQLitePath, f.logger)
	case "mysql":
		return analytics.NewMySQLSink(analyticsCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported analytics type: %s", analyticsCfg.Type)
	}
}
