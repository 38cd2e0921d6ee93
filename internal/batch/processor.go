package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/utils"
)

// Batch limits
const (
	DefaultChunkSize = 10
	MaxEmails        = 50
	PreviewLength    = 100
	SourceBatch      = "batch"
)

// EventType identifies a streamed batch event
type EventType string

const (
	EventProgress      EventType = "progress"
	EventChunkComplete EventType = "chunk_complete"
	EventComplete      EventType = "complete"
)

// Item statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Analyzer runs the full triage of one email
type Analyzer interface {
	Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.EmailAnalysis, error)
}

// ItemResult is the outcome of one email in a batch
type ItemResult struct {
	EmailID  int                 `json:"email_id"`
	Preview  string              `json:"email_preview"`
	Status   string              `json:"status"`
	Analysis *core.EmailAnalysis `json:"analysis,omitempty"`
	Error    string              `json:"error,omitempty"`
	Err      error               `json:"-"`
}

// Event is one element of the batch stream
type Event struct {
	Type       EventType    `json:"type"`
	BatchID    string       `json:"batch_id"`
	Processed  int          `json:"processed"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage,omitempty"`
	ChunkIndex int          `json:"chunk_index,omitempty"`
	Results    []ItemResult `json:"results,omitempty"`
	Successful int          `json:"successful,omitempty"`
	Failed     int          `json:"failed,omitempty"`
}

// Summary aggregates a finished batch
type Summary struct {
	BatchID           string       `json:"batch_id"`
	Total             int          `json:"total"`
	Successful        int          `json:"successful"`
	Failed            int          `json:"failed"`
	TotalTimeMs       int64        `json:"total_time_ms"`
	AvgTimePerEmailMs float64      `json:"avg_time_per_email_ms"`
	Results           []ItemResult `json:"results"`
}

// Options tunes a Processor
type Options struct {
	ChunkSize int
	// CollectGarbage forces a collection at every chunk boundary
	CollectGarbage bool
}

// Processor streams a list of emails through an Analyzer in bounded chunks
type Processor struct {
	analyzer Analyzer
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewProcessor creates a batch processor
func NewProcessor(analyzer Analyzer, opts Options, logger *zap.Logger, m *metrics.Metrics) *Processor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		analyzer: analyzer,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// Validate checks the batch-level limits
func Validate(emails []string) error {
	switch {
	case len(emails) == 0:
		return fmt.Errorf("%w: no emails in batch", core.ErrInvalidInput)
	case len(emails) > MaxEmails:
		return fmt.Errorf("%w: too many emails: %d, maximum is %d", core.ErrInvalidInput, len(emails), MaxEmails)
	}
	return nil
}

// Process returns a lazy stream over the batch. Emails are handled one at a
// time on the consumer's goroutine; a progress event follows every email, a
// chunk_complete event every chunk and a single complete event ends the
// stream. Breaking out of the loop stops processing. Batch limits are not
// checked here, see Validate.
func (p *Processor) Process(ctx context.Context, emails []string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		batchID := uuid.NewString()
		total := len(emails)
		processed, successful, failed := 0, 0, 0

		p.logger.Info("Starting batch",
			zap.String("batch_id", batchID),
			zap.Int("total", total),
			zap.Int("chunk_size", p.opts.ChunkSize))

		for start, chunkIndex := 0, 0; start < total; start, chunkIndex = start+p.opts.ChunkSize, chunkIndex+1 {
			end := min(start+p.opts.ChunkSize, total)
			results := make([]ItemResult, 0, end-start)

			for i := start; i < end; i++ {
				result := p.processItem(ctx, batchID, i+1, emails[i])
				results = append(results, result)
				processed++
				if result.Status == StatusSuccess {
					successful++
				} else {
					failed++
				}
				p.metrics.BatchItem(result.Status == StatusSuccess)

				if !yield(Event{
					Type:       EventProgress,
					BatchID:    batchID,
					Processed:  processed,
					Total:      total,
					Percentage: math.Round(float64(processed)/float64(total)*1000) / 10,
				}) {
					return
				}
			}

			if !yield(Event{
				Type:       EventChunkComplete,
				BatchID:    batchID,
				Processed:  processed,
				Total:      total,
				ChunkIndex: chunkIndex,
				Results:    results,
			}) {
				return
			}

			if p.opts.CollectGarbage {
				runtime.GC()
			}
		}

		p.logger.Info("Batch complete",
			zap.String("batch_id", batchID),
			zap.Int("successful", successful),
			zap.Int("failed", failed))

		yield(Event{
			Type:       EventComplete,
			BatchID:    batchID,
			Processed:  processed,
			Total:      total,
			Successful: successful,
			Failed:     failed,
		})
	}
}

// Run validates the batch, drains the stream and aggregates the results
func (p *Processor) Run(ctx context.Context, emails []string) (*Summary, error) {
	if err := Validate(emails); err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &Summary{
		Total:   len(emails),
		Results: make([]ItemResult, 0, len(emails)),
	}
	for event := range p.Process(ctx, emails) {
		summary.BatchID = event.BatchID
		switch event.Type {
		case EventChunkComplete:
			summary.Results = append(summary.Results, event.Results...)
		case EventComplete:
			summary.Successful = event.Successful
			summary.Failed = event.Failed
		}
	}

	summary.TotalTimeMs = time.Since(start).Milliseconds()
	summary.AvgTimePerEmailMs = float64(summary.TotalTimeMs) / float64(summary.Total)
	return summary, nil
}

func (p *Processor) processItem(ctx context.Context, batchID string, emailID int, text string) ItemResult {
	result := ItemResult{
		EmailID: emailID,
		Preview: utils.Preview(text, PreviewLength),
	}

	analysis, err := p.analyzeItem(ctx, batchID, emailID, text)
	if err != nil {
		itemErr := &core.ItemError{EmailID: emailID, Err: err}
		result.Status = StatusError
		result.Err = itemErr
		result.Error = itemErr.Error()

		level := p.logger.Warn
		if errors.Is(err, core.ErrInvalidInput) {
			level = p.logger.Debug
		}
		level("Batch item failed",
			zap.String("batch_id", batchID),
			zap.Int("email_id", emailID),
			zap.Error(err))
		return result
	}

	result.Status = StatusSuccess
	result.Analysis = analysis
	return result
}

func (p *Processor) analyzeItem(ctx context.Context, batchID string, emailID int, text string) (analysis *core.EmailAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = nil
			err = fmt.Errorf("panic while processing email: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < core.MinTextLength {
		return nil, fmt.Errorf("%w: email below minimum length of %d characters", core.ErrInvalidInput, core.MinTextLength)
	}

	return p.analyzer.Analyze(ctx, &core.AnalysisRequest{
		Text:   text,
		Source: SourceBatch,
		Metadata: map[string]any{
			"batch_id": batchID,
			"email_id": emailID,
			"method":   "batch_processing",
		},
	})
}
