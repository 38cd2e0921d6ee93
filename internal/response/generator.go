package response

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

// Response handling types reported to analytics
const (
	TypeAutomated  = "automated"
	TypeNoResponse = "no_response"
	TypeEscalated  = "escalated"
)

const spamResponse = "Email identificado como spam - nenhuma resposta será enviada."

// urgency variants, Low is the fallback
var tieredTemplates = map[string]map[core.Urgency]string{
	core.SubUrgent: {
		core.UrgencyHigh:   "Recebemos sua mensagem urgente e nossa equipe foi imediatamente notificada. Entraremos em contato o mais rápido possível.",
		core.UrgencyMedium: "Sua mensagem foi registrada com prioridade. Nossa equipe entrará em contato em breve.",
		core.UrgencyLow:    "Mensagem recebida e registrada. Retornaremos assim que possível.",
	},
	core.SubTechnicalSupport: {
		core.UrgencyHigh:   "Recebemos sua solicitação de suporte técnico urgente. Nossa equipe técnica foi notificada e entrará em contato imediatamente.",
		core.UrgencyMedium: "Obrigado pelo contato. Nossa equipe de suporte técnico analisará sua questão e retornará em breve.",
		core.UrgencyLow:    "Sua solicitação de suporte foi recebida. Retornaremos com uma solução assim que possível.",
	},
	core.SubComplaint: {
		core.UrgencyHigh:   "Lamentamos profundamente o inconveniente causado. Sua questão foi marcada como prioridade máxima e nossa equipe especializada entrará em contato imediatamente.",
		core.UrgencyMedium: "Lamentamos o inconveniente. Sua reclamação foi registrada e nossa equipe entrará em contato em breve para resolver a questão.",
		core.UrgencyLow:    "Obrigado pelo seu feedback. Registramos sua observação e trabalharemos para melhorar.",
	},
}

var templates = map[string]string{
	core.SubQuestion:        "Obrigado pela sua pergunta. Nossa equipe analisará sua dúvida e retornará com esclarecimentos detalhados em breve.",
	core.SubRequest:         "Recebemos sua solicitação e estamos analisando. Retornaremos com uma resposta assim que possível.",
	core.SubCongratulations: "Muito obrigado pelas felicitações! Ficamos honrados com o reconhecimento e satisfeitos em saber que nosso trabalho foi bem-sucedido.",
	core.SubThanks:          "Ficamos muito felizes com seu agradecimento! É uma grande satisfação saber que pudemos ajudá-lo.",
	core.SubMarketing:       "Obrigado pelo interesse demonstrado. Nossa equipe comercial poderá entrar em contato para mais detalhes.",
	core.SubInformational:   "Obrigado pela informação. Registramos seu comunicado e tomaremos as medidas apropriadas se necessário.",
}

var defaultTemplates = map[core.Category]string{
	core.CategoryProductive:   "Obrigado pelo seu contato. Recebemos sua mensagem e nossa equipe está analisando. Retornaremos com uma resposta apropriada em breve.",
	core.CategoryUnproductive: "Obrigado pela sua mensagem. Ficamos felizes com seu contato e continuamos à disposição para qualquer necessidade futura.",
}

// Generator picks and personalizes reply templates
type Generator struct{}

// NewGenerator creates a response generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns the suggested reply for a classification
func (g *Generator) Generate(result *core.ClassificationResult) string {
	if result == nil {
		return defaultTemplates[core.CategoryProductive]
	}
	if result.Subcategory == core.SubSpam {
		return spamResponse
	}
	return personalize(baseTemplate(result), result)
}

// ResponseType reports whether the reply is automated, escalated or suppressed
func (g *Generator) ResponseType(subcategory string) string {
	switch subcategory {
	case core.SubSpam:
		return TypeNoResponse
	case core.SubUrgent, core.SubComplaint:
		return TypeEscalated
	}
	return TypeAutomated
}

func baseTemplate(result *core.ClassificationResult) string {
	if tiers, ok := tieredTemplates[result.Subcategory]; ok {
		if t, ok := tiers[result.Urgency]; ok {
			return t
		}
		return tiers[core.UrgencyLow]
	}
	if t, ok := templates[result.Subcategory]; ok {
		return t
	}
	if t, ok := defaultTemplates[result.Category]; ok {
		return t
	}
	return defaultTemplates[core.CategoryUnproductive]
}

func personalize(text string, result *core.ClassificationResult) string {
	switch {
	case result.Tone == core.ToneNegative && result.Category == core.CategoryProductive && result.Subcategory != core.SubComplaint:
		if !strings.Contains(text, "Lamentamos") {
			text = "Lamentamos qualquer inconveniente. " + text
		}
	case result.Tone == core.TonePositive && result.Category == core.CategoryUnproductive:
		text = strings.ReplaceAll(text, "Obrigado", "Muito obrigado")
	}

	if result.Urgency == core.UrgencyHigh && !keepsUrgentWording(result.Subcategory) {
		text = strings.ReplaceAll(text, "em breve", "com prioridade")
	}
	return text
}

// subcategories whose templates already carry their own urgency wording
func keepsUrgentWording(sub string) bool {
	switch sub {
	case core.SubUrgent, core.SubTechnicalSupport, core.SubComplaint, core.SubCongratulations:
		return true
	}
	return false
}
