package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

// LogSink writes every analytics record as a structured log line
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging through logger
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs the record at info level
func (s *LogSink) Record(ctx context.Context, r *core.AnalyticsRecord) error {
	s.logger.Info("Email analytics",
		zap.String("sender_domain", r.SenderDomain),
		zap.String("category", string(r.Category)),
		zap.String("subcategory", r.Subcategory),
		zap.String("tone", string(r.Tone)),
		zap.String("urgency", string(r.Urgency)),
		zap.Float64("confidence", r.Confidence),
		zap.Int("word_count", r.WordCount),
		zap.Int("char_count", r.CharCount),
		zap.Bool("has_attachments", r.HasAttachments),
		zap.Int("attachment_score", r.AttachmentScore),
		zap.Strings("keywords", r.Keywords),
		zap.Int64("processing_time_ms", r.ProcessingTimeMs),
		zap.String("source", r.Source),
		zap.Any("technical_data", r.TechnicalData))
	return nil
}

// NopSink discards records
type NopSink struct{}

// Record does nothing
func (NopSink) Record(context.Context, *core.AnalyticsRecord) error { return nil }
