package summarizer

type weightedKeywords struct {
	weight   int
	keywords []string
}

// importance keyword categories with their per-match weight
var importanceKeywords = []weightedKeywords{
	{12, []string{ // high urgency
		"urgente", "imediato", "crítico", "emergência", "agora", "hoje", "asap",
		"prioridade máxima", "extremamente importante", "não pode esperar",
	}},
	{6, []string{ // medium importance
		"importante", "necessário", "preciso", "solicitação", "pedido",
		"fundamental", "essencial", "significativo", "relevante",
	}},
	{10, []string{ // action
		"solicito", "precisa", "favor", "poderia", "gostaria", "requero",
		"ação necessária", "providenciar", "resolver", "atender", "executar",
	}},
	{6, []string{ // time
		"prazo", "deadline", "até", "antes", "depois", "quando", "data",
		"cronograma", "agenda", "programação", "vencimento", "limite",
	}},
	{6, []string{ // people
		"reunião", "encontro", "conversar", "falar", "contato",
		"coordenação", "alinhamento", "discussão", "apresentação",
	}},
	{6, []string{ // document
		"relatório", "documento", "arquivo", "planilha", "apresentação",
		"anexo", "material", "dados", "informação", "detalhes",
	}},
	{6, []string{ // problem
		"erro", "problema", "falha", "bug", "defeito", "inconsistência",
		"não funciona", "travou", "parou", "dificuldade",
	}},
	{6, []string{ // project
		"projeto", "desenvolvimento", "implementação", "execução",
		"progresso", "andamento", "status", "situação", "evolução",
	}},
}

var noiseWords = []string{
	"o", "a", "os", "as", "um", "uma", "uns", "umas",
	"de", "da", "do", "das", "dos", "em", "na", "no", "para", "por",
	"e", "ou", "mas", "porque", "pois", "então", "assim",
	"eu", "tu", "ele", "ela", "nós", "vós", "eles", "elas", "me", "te", "se",
}

var actionStarts = []string{"solicito", "preciso", "gostaria", "peço", "requero"}

// word classes use \p{L} so accented letters stay inside a match
var keyPointFamilies = [][]string{
	{ // deadline
		`prazo\s+até\s+[\p{L}\p{N}_/\s]+`,
		`deadline\s+[\p{L}\p{N}_/\s]+`,
		`vence\s+em\s+[\p{L}\p{N}_/\s]+`,
		`data\s+limite\s+[\p{L}\p{N}_/\s]+`,
	},
	{ // requested action
		`(?:preciso|necessito|solicito|requeiro)\s+que\s+[\p{L}\p{N}_\s]+`,
		`(?:favor|por favor)\s+[\p{L}\p{N}_\s]+`,
		`(?:poderia|você poderia)\s+[\p{L}\p{N}_\s]+`,
		`ação\s+necessária\s*:?\s*[\p{L}\p{N}_\s]+`,
	},
	{ // problem
		`(?:erro|problema|falha)\s+[\p{L}\p{N}_\s]+`,
		`não\s+(?:funciona|está funcionando)\s+[\p{L}\p{N}_\s]+`,
		`(?:bug|defeito)\s+[\p{L}\p{N}_\s]+`,
	},
	{ // attachment
		`(?:relatório|documento|planilha|arquivo)\s+[\p{L}\p{N}_\s]+`,
		`(?:anexo|anexado|em anexo)\s+[\p{L}\p{N}_\s]+`,
		`(?:segue|vai)\s+anexo\s+[\p{L}\p{N}_\s]+`,
	},
	{ // project status
		`projeto\s+[\p{L}\p{N}_\s]+`,
		`status\s+do\s+[\p{L}\p{N}_\s]+`,
		`progresso\s+[\p{L}\p{N}_\s]+`,
		`andamento\s+[\p{L}\p{N}_\s]+`,
	},
	{ // meeting or contact
		`reunião\s+[\p{L}\p{N}_\s]+`,
		`(?:falar|conversar)\s+com\s+[\p{L}\p{N}_\s]+`,
		`contato\s+[\p{L}\p{N}_\s]+`,
		`(?:agendar|marcar)\s+[\p{L}\p{N}_\s]+`,
	},
}

var communicationTypes = []struct {
	name     string
	keywords []string
}{
	{"request", []string{"solicito", "preciso", "gostaria", "poderia", "favor"}},
	{"informational", []string{"informo", "comunico", "aviso", "notificação"}},
	{"urgent", []string{"urgente", "imediato", "emergência", "crítico"}},
	{"feedback", []string{"opinião", "parecer", "avaliação", "feedback"}},
	{"coordination", []string{"coordenação", "alinhamento", "próximos passos"}},
}

// checked in order, the first sentiment with a hit wins
var sentimentIndicators = []struct {
	name     string
	keywords []string
}{
	{"positive", []string{"obrigado", "agradeço", "excelente", "ótimo", "parabéns"}},
	{"negative", []string{"problema", "erro", "falha", "insatisfeito", "reclamação"}},
	{"neutral", []string{"informação", "dados", "relatório", "status"}},
}

var (
	actionIndicators     = []string{"ação necessária", "preciso", "solicito", "favor", "poderia"}
	deadlineIndicators   = []string{"prazo", "deadline", "até", "vence", "limite"}
	attachmentIndicators = []string{"anexo", "arquivo", "documento", "planilha"}
)
