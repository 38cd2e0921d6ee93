package di

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-triage/internal/batch"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/summarizer"
	"github.com/mikey/email-triage/internal/utils"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mode    string
		wantErr bool
	}{
		{"default mode", nil, ModeClassify, false},
		{"batch", []string{"-file", "emails.json", "batch"}, ModeBatch, false},
		{"summary with sentences", []string{"-sentences", "2", "summary"}, ModeSummary, false},
		{"unknown mode", []string{"translate"}, "", true},
		{"unknown flag", []string{"-bogus"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := ParseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, flags.Mode)
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	applyFlags(cfg, &CLIFlags{NoAI: true, NoCache: true, Analytics: "none"})

	assert.False(t, cfg.GetBool("fallback.enabled"))
	assert.False(t, cfg.GetBool("cache.enabled"))
	assert.Equal(t, "none", cfg.GetString("analytics.type"))
}

func TestBuildCLIContainer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	container, err := BuildCLIContainer(&CLIFlags{Mode: ModeClassify, NoAI: true, Analytics: "none"})
	require.NoError(t, err)

	err = container.Invoke(func(svc *core.TriageService, p *batch.Processor, s *summarizer.Summarizer, fb core.FallbackClassifier) {
		assert.NotNil(t, svc)
		assert.NotNil(t, p)
		assert.NotNil(t, s)
		assert.Nil(t, fb)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainerProvidesTextProcessor(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	container, err := BuildCLIContainer(&CLIFlags{Mode: ModeClassify, NoAI: true, NoCache: true, Analytics: "none"})
	require.NoError(t, err)

	err = container.Invoke(func(tp *utils.TextProcessor) {
		require.NotNil(t, tp)
		assert.Equal(t, "abc"+utils.TruncationMarker, tp.TruncateText("abcdef", 3))
	})
	require.NoError(t, err)
}
