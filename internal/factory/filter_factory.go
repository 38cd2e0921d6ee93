package factory

import (
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// FilterFactory creates the SMTP intake filter
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.TriageService
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.TriageService, textProcessor *utils.TextProcessor) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateSMTPFilter creates the SMTP intake from the server configuration
func (f *FilterFactory) CreateSMTPFilter() (*filter.SMTPFilter, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	return filter.NewSMTPFilter(f.service, f.textProcessor, f.logger, filter.Options{
		ListenAddress: serverCfg.ListenAddress,
		Domain:        serverCfg.Domain,
		RejectSpam:    serverCfg.RejectSpam,
		RelayEnabled:  serverCfg.RelayEnabled,
		RelayAddress:  net.JoinHostPort(serverCfg.RelayAddress, strconv.Itoa(serverCfg.RelayPort)),
		Timeout:       serverCfg.Timeout,
		Headers:       serverCfg.Headers,
	}), nil
}
