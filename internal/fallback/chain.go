package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/utils"
)

// Call outcomes reported to metrics
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeOpen        = "circuit_open"
	OutcomeInvalid     = "invalid_response"
	OutcomeError       = "error"
)

// Options tunes the candidate chain
type Options struct {
	// Timeout bounds each candidate call
	Timeout time.Duration
	// BreakerFailures is the number of consecutive failures that opens a candidate's breaker
	BreakerFailures uint32
	// BreakerCooldown is how long an open breaker waits before probing again
	BreakerCooldown time.Duration
}

// DefaultOptions returns the production chain settings
func DefaultOptions() Options {
	return Options{
		Timeout:         15 * time.Second,
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
	}
}

type candidate struct {
	model   Model
	breaker *gobreaker.CircuitBreaker
}

// Chain tries a prioritized list of models until one produces a valid result
type Chain struct {
	candidates    []candidate
	textProcessor *utils.TextProcessor
	opts          Options
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewChain creates a chain over models in priority order. A nil or empty
// list yields a chain that always reports ErrFallbackUnavailable.
func NewChain(models []Model, textProcessor *utils.TextProcessor, opts Options, logger *zap.Logger, m *metrics.Metrics) *Chain {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = defaults.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = defaults.BreakerCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}

	c := &Chain{
		textProcessor: textProcessor,
		opts:          opts,
		logger:        logger,
		metrics:       m,
	}
	for _, model := range models {
		if model == nil {
			continue
		}
		c.candidates = append(c.candidates, candidate{
			model:   model,
			breaker: c.newBreaker(model.Name()),
		})
	}
	return c
}

func (c *Chain) newBreaker(name string) *gobreaker.CircuitBreaker {
	failures := c.opts.BreakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     c.opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("Fallback circuit breaker state changed",
				zap.String("model", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Models returns the candidate names in priority order
func (c *Chain) Models() []string {
	names := make([]string, 0, len(c.candidates))
	for _, cand := range c.candidates {
		names = append(names, cand.model.Name())
	}
	return names
}

// ClassifyFallback asks each candidate in turn. A 404, 503, timeout, network
// failure, open breaker or unparseable reply moves on to the next one; any
// other error ends the attempt.
func (c *Chain) ClassifyFallback(ctx context.Context, text string, stats core.TextStats) (*core.ClassificationResult, error) {
	if len(c.candidates) == 0 {
		return nil, fmt.Errorf("%w: no models configured", core.ErrFallbackUnavailable)
	}

	prompt := BuildPrompt(c.textProcessor, text, stats)

	var lastErr error
	for _, cand := range c.candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrFallbackUnavailable, err)
		}

		name := cand.model.Name()
		raw, err := c.call(ctx, cand, prompt)
		if err != nil {
			lastErr = err
			switch {
			case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
				c.metrics.FallbackCall(name, OutcomeOpen)
				c.logger.Debug("Skipping fallback model with open circuit", zap.String("model", name))
				continue
			case Retryable(err):
				c.metrics.FallbackCall(name, OutcomeUnavailable)
				c.logger.Warn("Fallback model unavailable, trying next",
					zap.String("model", name),
					zap.Error(err))
				continue
			default:
				c.metrics.FallbackCall(name, OutcomeError)
				c.logger.Warn("Fallback model failed",
					zap.String("model", name),
					zap.Error(err))
				return nil, fmt.Errorf("%w: %v", core.ErrFallbackUnavailable, err)
			}
		}

		result, err := ParseResponse(raw, name)
		if err != nil {
			lastErr = err
			c.metrics.FallbackCall(name, OutcomeInvalid)
			c.logger.Warn("Discarding invalid fallback response",
				zap.String("model", name),
				zap.Error(err))
			continue
		}

		c.metrics.FallbackCall(name, OutcomeSuccess)
		c.logger.Debug("Fallback model answered",
			zap.String("model", name),
			zap.String("subcategory", result.Subcategory),
			zap.Float64("confidence", result.Confidence))
		return result, nil
	}

	return nil, fmt.Errorf("%w: all models failed: %v", core.ErrFallbackUnavailable, lastErr)
}

func (c *Chain) call(ctx context.Context, cand candidate, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	out, err := cand.breaker.Execute(func() (interface{}, error) {
		return cand.model.Complete(callCtx, SystemInstruction, prompt)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
