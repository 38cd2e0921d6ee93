package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/nlp"
)

// DefaultConfidence is assumed when the model omits or garbles its confidence
const DefaultConfidence = 0.75

const defaultReasoning = "Classificação via IA"

// ErrInvalidResponse is returned when a model reply cannot be turned into a valid result
var ErrInvalidResponse = errors.New("invalid model response")

var (
	categoryKeys    = []string{"category", "categoria"}
	subcategoryKeys = []string{"subcategory", "subcategoria"}
	toneKeys        = []string{"tone", "tom"}
	urgencyKeys     = []string{"urgency", "urgencia", "urgência"}
	confidenceKeys  = []string{"confidence", "confianca", "confiança"}
	reasoningKeys   = []string{"reasoning", "justificativa", "explicacao", "explicação"}
)

// label aliases keyed by their lowercase accent-free form
var (
	categoryAliases = map[string]core.Category{
		"productive":   core.CategoryProductive,
		"produtivo":    core.CategoryProductive,
		"unproductive": core.CategoryUnproductive,
		"improdutivo":  core.CategoryUnproductive,
	}
	subcategoryAliases = map[string]string{
		"urgente":                 core.SubUrgent,
		"suporte tecnico":         core.SubTechnicalSupport,
		"solicitacao":             core.SubRequest,
		"reclamacao":              core.SubComplaint,
		"duvida":                  core.SubQuestion,
		"pergunta":                core.SubQuestion,
		"felicitacoes":            core.SubCongratulations,
		"parabens":                core.SubCongratulations,
		"comunicacao de trabalho": core.SubWorkCommunication,
		"entretenimento":          core.SubEntertainment,
		"agradecimento":           core.SubThanks,
		"informativo":             core.SubInformational,
	}
	toneAliases = map[string]core.Tone{
		"positive": core.TonePositive,
		"positivo": core.TonePositive,
		"negative": core.ToneNegative,
		"negativo": core.ToneNegative,
		"neutral":  core.ToneNeutral,
		"neutro":   core.ToneNeutral,
	}
	urgencyAliases = map[string]core.Urgency{
		"high":   core.UrgencyHigh,
		"alta":   core.UrgencyHigh,
		"medium": core.UrgencyMedium,
		"media":  core.UrgencyMedium,
		"low":    core.UrgencyLow,
		"baixa":  core.UrgencyLow,
	}
)

func init() {
	for _, c := range []core.Category{core.CategoryProductive, core.CategoryUnproductive} {
		for _, sub := range core.Subcategories(c) {
			subcategoryAliases[fold(sub)] = sub
		}
	}
}

// ParseResponse turns a raw model reply into a classification result.
// Code fences and surrounding prose are ignored, labels are accepted in
// English or Portuguese and confidence is clamped into [0,1].
func ParseResponse(raw, model string) (*core.ClassificationResult, error) {
	object, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON: %v", ErrInvalidResponse, err)
	}
	lowered := make(map[string]any, len(fields))
	for k, v := range fields {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}

	sub, ok := subcategoryAliases[fold(lookupString(lowered, subcategoryKeys))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown subcategory %q", ErrInvalidResponse, lookupString(lowered, subcategoryKeys))
	}

	category, ok := categoryAliases[fold(lookupString(lowered, categoryKeys))]
	if !ok {
		category = categoryOf(sub)
	}
	if !core.ValidSubcategory(category, sub) {
		return nil, fmt.Errorf("%w: subcategory %q does not belong to %s", ErrInvalidResponse, sub, category)
	}

	tone, ok := toneAliases[fold(lookupString(lowered, toneKeys))]
	if !ok {
		tone = core.ToneNeutral
	}
	urgency, ok := urgencyAliases[fold(lookupString(lowered, urgencyKeys))]
	if !ok {
		urgency = core.UrgencyMedium
	}

	reasoning := lookupString(lowered, reasoningKeys)
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	return &core.ClassificationResult{
		Category:    category,
		Subcategory: sub,
		Tone:        tone,
		Urgency:     urgency,
		Confidence:  lookupConfidence(lowered),
		Reasoning:   reasoning,
		ModelUsed:   model,
	}, nil
}

func extractObject(raw string) (string, error) {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}
	return text[start : end+1], nil
}

func lookupString(fields map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func lookupConfidence(fields map[string]any) float64 {
	for _, k := range confidenceKeys {
		switch v := fields[k].(type) {
		case float64:
			return clamp(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return clamp(f)
			}
		}
	}
	return DefaultConfidence
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}

func categoryOf(sub string) core.Category {
	if core.ValidSubcategory(core.CategoryUnproductive, sub) {
		return core.CategoryUnproductive
	}
	return core.CategoryProductive
}

func fold(s string) string {
	return strings.ToLower(nlp.StripAccents(strings.TrimSpace(s)))
}
