package fallback

import (
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// MaxPromptTextBytes bounds the email text embedded in a prompt
const MaxPromptTextBytes = 1000

// SystemInstruction is sent to every model ahead of the prompt
const SystemInstruction = "Você é um especialista em classificação de emails corporativos. Responda apenas com um objeto JSON."

// BuildPrompt renders the classification prompt for text and its statistics
func BuildPrompt(tp *utils.TextProcessor, text string, stats core.TextStats) string {
	var b strings.Builder

	b.WriteString("Analise o email abaixo e classifique conforme as regras.\n\n")
	b.WriteString("CATEGORIAS:\n")
	b.WriteString("1. Productive: emails que requerem ação, solicitações, suporte técnico, dúvidas, reclamações, comunicação de trabalho\n")
	b.WriteString("2. Unproductive: spam, marketing, entretenimento, agradecimentos simples, informativos sem ação necessária\n\n")

	fmt.Fprintf(&b, "SUBCATEGORIAS Productive: %s\n", strings.Join(core.Subcategories(core.CategoryProductive), ", "))
	fmt.Fprintf(&b, "SUBCATEGORIAS Unproductive: %s\n\n", strings.Join(core.Subcategories(core.CategoryUnproductive), ", "))

	b.WriteString("TOM: Positive, Negative ou Neutral\n")
	b.WriteString("URGÊNCIA: High (emergências, prazos críticos), Medium (requer atenção em breve) ou Low (pode esperar)\n\n")

	b.WriteString("Estatísticas do email:\n")
	fmt.Fprintf(&b, "- Palavras: %d\n", stats.Words)
	fmt.Fprintf(&b, "- Sentenças: %d\n", stats.Sentences)
	fmt.Fprintf(&b, "- Diversidade lexical: %.2f\n\n", stats.LexicalDiversity)

	b.WriteString("EMAIL:\n")
	b.WriteString(tp.TruncateText(text, MaxPromptTextBytes))
	b.WriteString("\n\n")

	b.WriteString(`RESPONDA APENAS NO FORMATO JSON:
{
  "category": "Productive ou Unproductive",
  "subcategory": "uma das subcategorias válidas",
  "tone": "Positive, Negative ou Neutral",
  "urgency": "High, Medium ou Low",
  "confidence": 0.XX,
  "reasoning": "breve explicação da classificação"
}`)

	return b.String()
}
