package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/utils"
)

const validReply = `{"category": "Productive", "subcategory": "Request", "tone": "Neutral", "urgency": "Medium", "confidence": 0.88, "reasoning": "pedido de relatório"}`

type fakeModel struct {
	name  string
	calls int
	fn    func(ctx context.Context) (string, error)
}

func (f *fakeModel) Name() string { return f.name }

func (f *fakeModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	return f.fn(ctx)
}

func replying(name, reply string) *fakeModel {
	return &fakeModel{name: name, fn: func(context.Context) (string, error) { return reply, nil }}
}

func failing(name string, err error) *fakeModel {
	return &fakeModel{name: name, fn: func(context.Context) (string, error) { return "", err }}
}

func newChain(t *testing.T, opts Options, models ...Model) *Chain {
	t.Helper()
	return NewChain(models, nil, opts, zaptest.NewLogger(t), metrics.New())
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *core.ClassificationResult
		wantErr bool
	}{
		{
			name: "fenced english",
			raw:  "```json\n" + validReply + "\n```",
			want: &core.ClassificationResult{
				Category: core.CategoryProductive, Subcategory: core.SubRequest,
				Tone: core.ToneNeutral, Urgency: core.UrgencyMedium,
				Confidence: 0.88, Reasoning: "pedido de relatório", ModelUsed: "m",
			},
		},
		{
			name: "portuguese labels inside prose",
			raw:  `Claro! Segue: {"categoria": "Produtivo", "subcategoria": "Suporte Técnico", "tom": "Negativo", "urgencia": "Alta", "confianca": "0.9"} Espero ter ajudado.`,
			want: &core.ClassificationResult{
				Category: core.CategoryProductive, Subcategory: core.SubTechnicalSupport,
				Tone: core.ToneNegative, Urgency: core.UrgencyHigh,
				Confidence: 0.9, Reasoning: defaultReasoning, ModelUsed: "m",
			},
		},
		{
			name: "missing category and confidence",
			raw:  `{"subcategory": "Agradecimento"}`,
			want: &core.ClassificationResult{
				Category: core.CategoryUnproductive, Subcategory: core.SubThanks,
				Tone: core.ToneNeutral, Urgency: core.UrgencyMedium,
				Confidence: DefaultConfidence, Reasoning: defaultReasoning, ModelUsed: "m",
			},
		},
		{
			name: "confidence is clamped",
			raw:  `{"category": "Unproductive", "subcategory": "spam", "confidence": 1.7}`,
			want: &core.ClassificationResult{
				Category: core.CategoryUnproductive, Subcategory: core.SubSpam,
				Tone: core.ToneNeutral, Urgency: core.UrgencyMedium,
				Confidence: 1, Reasoning: defaultReasoning, ModelUsed: "m",
			},
		},
		{name: "unknown subcategory", raw: `{"category": "Productive", "subcategory": "Geral"}`, wantErr: true},
		{name: "subcategory outside category", raw: `{"category": "Productive", "subcategory": "Spam"}`, wantErr: true},
		{name: "no object", raw: "não sei classificar", wantErr: true},
		{name: "broken json", raw: `{"category": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.raw, "m")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", &StatusError{Model: "m", Code: 404, Err: errors.New("no model")}, true},
		{"unavailable", fmt.Errorf("wrapped: %w", &StatusError{Code: 503}), true},
		{"unauthorized", &StatusError{Code: 401}, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"network", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestChainNoModels(t *testing.T) {
	_, err := newChain(t, Options{}).ClassifyFallback(context.Background(), "texto qualquer", core.TextStats{})
	assert.ErrorIs(t, err, core.ErrFallbackUnavailable)
}

func TestChainFallsThrough(t *testing.T) {
	t.Run("unavailable then success", func(t *testing.T) {
		first := failing("primary", &StatusError{Model: "primary", Code: 503})
		second := replying("secondary", validReply)

		result, err := newChain(t, Options{}, first, second).ClassifyFallback(context.Background(), "texto", core.TextStats{})
		require.NoError(t, err)
		assert.Equal(t, "secondary", result.ModelUsed)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})

	t.Run("invalid reply then success", func(t *testing.T) {
		first := replying("primary", "sem json")
		second := replying("secondary", validReply)

		result, err := newChain(t, Options{}, first, second).ClassifyFallback(context.Background(), "texto", core.TextStats{})
		require.NoError(t, err)
		assert.Equal(t, core.SubRequest, result.Subcategory)
	})

	t.Run("timeout then success", func(t *testing.T) {
		slow := &fakeModel{name: "slow", fn: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		fast := replying("fast", validReply)

		chain := newChain(t, Options{Timeout: 10 * time.Millisecond}, slow, fast)
		result, err := chain.ClassifyFallback(context.Background(), "texto", core.TextStats{})
		require.NoError(t, err)
		assert.Equal(t, "fast", result.ModelUsed)
	})

	t.Run("non retryable error stops", func(t *testing.T) {
		first := failing("primary", &StatusError{Model: "primary", Code: 401})
		second := replying("secondary", validReply)

		_, err := newChain(t, Options{}, first, second).ClassifyFallback(context.Background(), "texto", core.TextStats{})
		assert.ErrorIs(t, err, core.ErrFallbackUnavailable)
		assert.Zero(t, second.calls)
	})

	t.Run("all exhausted", func(t *testing.T) {
		first := failing("primary", &StatusError{Code: 404})
		second := failing("secondary", &StatusError{Code: 503})

		_, err := newChain(t, Options{}, first, second).ClassifyFallback(context.Background(), "texto", core.TextStats{})
		assert.ErrorIs(t, err, core.ErrFallbackUnavailable)
	})
}

func TestChainBreakerSkipsFailingModel(t *testing.T) {
	model := failing("flaky", &StatusError{Code: 503})
	chain := newChain(t, Options{BreakerFailures: 1, BreakerCooldown: time.Hour}, model)

	for i := 0; i < 3; i++ {
		_, err := chain.ClassifyFallback(context.Background(), "texto", core.TextStats{})
		assert.ErrorIs(t, err, core.ErrFallbackUnavailable)
	}
	assert.Equal(t, 1, model.calls)
}

func TestChainCancelledContext(t *testing.T) {
	model := replying("m", validReply)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newChain(t, Options{}, model).ClassifyFallback(ctx, "texto", core.TextStats{})
	assert.ErrorIs(t, err, core.ErrFallbackUnavailable)
	assert.Zero(t, model.calls)
}

func TestBuildPrompt(t *testing.T) {
	tp := utils.NewTextProcessor(nil)
	long := strings.Repeat("a", MaxPromptTextBytes+50)

	prompt := BuildPrompt(tp, long, core.TextStats{Words: 42, Sentences: 3, LexicalDiversity: 0.5})

	assert.Contains(t, prompt, strings.Repeat("a", MaxPromptTextBytes)+utils.TruncationMarker)
	assert.NotContains(t, prompt, strings.Repeat("a", MaxPromptTextBytes+1))
	assert.Contains(t, prompt, "- Palavras: 42")
	assert.Contains(t, prompt, "- Diversidade lexical: 0.50")
	assert.Contains(t, prompt, core.SubWorkCommunication)
}

func TestChainModels(t *testing.T) {
	chain := newChain(t, Options{}, replying("a", ""), nil, replying("b", ""))
	assert.Equal(t, []string{"a", "b"}, chain.Models())
}
