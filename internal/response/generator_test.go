package response

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/email-triage/internal/core"
)

func result(cat core.Category, sub string, tone core.Tone, urgency core.Urgency) *core.ClassificationResult {
	return &core.ClassificationResult{Category: cat, Subcategory: sub, Tone: tone, Urgency: urgency}
}

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	tests := []struct {
		name   string
		result *core.ClassificationResult
		want   string
	}{
		{
			name:   "spam never gets a reply",
			result: result(core.CategoryUnproductive, core.SubSpam, core.TonePositive, core.UrgencyHigh),
			want:   spamResponse,
		},
		{
			name:   "urgent high variant",
			result: result(core.CategoryProductive, core.SubUrgent, core.ToneNeutral, core.UrgencyHigh),
			want:   tieredTemplates[core.SubUrgent][core.UrgencyHigh],
		},
		{
			name:   "unknown urgency falls back to low",
			result: result(core.CategoryProductive, core.SubTechnicalSupport, core.ToneNeutral, core.Urgency("")),
			want:   tieredTemplates[core.SubTechnicalSupport][core.UrgencyLow],
		},
		{
			name:   "negative productive gets an apology",
			result: result(core.CategoryProductive, core.SubRequest, core.ToneNegative, core.UrgencyLow),
			want:   "Lamentamos qualquer inconveniente. " + templates[core.SubRequest],
		},
		{
			name:   "complaint templates already apologize",
			result: result(core.CategoryProductive, core.SubComplaint, core.ToneNegative, core.UrgencyMedium),
			want:   tieredTemplates[core.SubComplaint][core.UrgencyMedium],
		},
		{
			name:   "positive unproductive thanks warmly",
			result: result(core.CategoryUnproductive, core.SubMarketing, core.TonePositive, core.UrgencyLow),
			want:   "Muito obrigado pelo interesse demonstrado. Nossa equipe comercial poderá entrar em contato para mais detalhes.",
		},
		{
			name:   "high urgency question is prioritized",
			result: result(core.CategoryProductive, core.SubQuestion, core.ToneNeutral, core.UrgencyHigh),
			want:   "Obrigado pela sua pergunta. Nossa equipe analisará sua dúvida e retornará com esclarecimentos detalhados com prioridade.",
		},
		{
			name:   "work communication uses the productive default",
			result: result(core.CategoryProductive, core.SubWorkCommunication, core.ToneNeutral, core.UrgencyLow),
			want:   defaultTemplates[core.CategoryProductive],
		},
		{
			name:   "entertainment uses the unproductive default",
			result: result(core.CategoryUnproductive, core.SubEntertainment, core.ToneNeutral, core.UrgencyLow),
			want:   defaultTemplates[core.CategoryUnproductive],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Generate(tt.result))
		})
	}
}

func TestResponseType(t *testing.T) {
	g := NewGenerator()

	tests := map[string]string{
		core.SubSpam:             TypeNoResponse,
		core.SubUrgent:           TypeEscalated,
		core.SubComplaint:        TypeEscalated,
		core.SubTechnicalSupport: TypeAutomated,
		core.SubThanks:           TypeAutomated,
		"":                       TypeAutomated,
	}
	for sub, want := range tests {
		assert.Equal(t, want, g.ResponseType(sub), "subcategory %q", sub)
	}
}
