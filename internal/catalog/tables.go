package catalog

import "github.com/mikey/email-triage/internal/core"

// Set names a keyword or phrase list
type Set string

// Keyword and phrase sets
const (
	SetSpam                    Set = "spam"
	SetEasyMoney               Set = "easy_money"
	SetOffer                   Set = "offer"
	SetSuspiciousSpam          Set = "suspicious_spam"
	SetMarketing               Set = "marketing"
	SetMarketingIndicators     Set = "marketing_indicators"
	SetMarketingBigrams        Set = "marketing_bigrams"
	SetEntertainment           Set = "entertainment"
	SetEntertainmentBigrams    Set = "entertainment_bigrams"
	SetEntertainmentIndicators Set = "entertainment_indicators"
	SetGratitude               Set = "gratitude"
	SetGratitudePhrases        Set = "gratitude_phrases"
	SetTonePositive            Set = "tone_positive"
	SetToneNegative            Set = "tone_negative"
	SetUrgencyHigh             Set = "urgency_high"
	SetUrgencyMedium           Set = "urgency_medium"
	SetDeadline                Set = "deadline"
	SetGenuineCongratulation   Set = "genuine_congratulation"
	SetProfessionalContext     Set = "professional_context"
	SetStrongComplaint         Set = "strong_complaint"
	SetWorkBigrams             Set = "work_bigrams"
	SetTechnicalTerms          Set = "technical_terms"
	SetQuestionWords           Set = "question_words"

	SetUrgent            Set = "urgent"
	SetTechnicalSupport  Set = "technical_support"
	SetRequest           Set = "request"
	SetComplaint         Set = "complaint"
	SetQuestion          Set = "question"
	SetCongratulations   Set = "congratulations"
	SetWorkCommunication Set = "work_communication"
)

// Group names a regular expression group
type Group string

// Regex groups
const (
	GroupSpamStrong          Group = "spam_strong"
	GroupMarketingStrong     Group = "marketing_strong"
	GroupMarketingNegative   Group = "marketing_negative"
	GroupWorkContext         Group = "work_context"
	GroupEntertainmentStrong Group = "entertainment_strong"
)

var builtinKeywords = map[Set][]string{
	SetSpam: {
		"ganhe dinheiro", "dinheiro grátis", "renda extra", "milhões de reais",
		"prêmio em dinheiro", "sortudo", "vencedor", "contemplado", "grande prêmio",
		"clique aqui", "clique agora", "confirme agora", "prazo limitado",
		"oportunidade única", "não perca", "últimas horas", "resgatar prêmio",
		"r$", "reais", "$$", "taxa de liberação", "pequena taxa",
		"transferência", "reembolsado", "iphone", "celular grátis",
		"você foi sorteado", "endereço sorteado", "lista privilegiada",
		"promoção anual", "fidelidade", "campanha recente", "fantástica",
		"incrível", "mudou de vida", "garantido", "suporte 24h",
		"https://", "www.", ".com/", "sitefake", "claim", "prize",
	},
	SetEasyMoney: {
		"dinheiro fácil", "ganhe dinheiro", "renda extra", "fique rico",
		"trabalhe em casa", "ganhar dinheiro",
	},
	SetOffer: {
		"oferta", "promoção", "desconto", "grátis", "brinde", "prêmio",
	},
	SetSuspiciousSpam: {
		"ganhe dinheiro", "dinheiro grátis", "clique aqui", "você foi sorteado",
		"resgatar prêmio", "taxa de liberação", "prêmio em dinheiro",
		"milhões de reais", "oferta limitada", "renda extra", "ganhe milhões",
		"dinheiro fácil",
	},
	SetMarketing: {
		"oferta", "promoção", "desconto", "venda", "produto", "comprar",
		"newsletter", "campanha", "lançamento", "catálogo", "assinatura",
		"frete grátis", "cupom", "liquidação", "black friday", "investimento",
	},
	SetMarketingIndicators: {
		"% de desconto", "% off", "acesse agora", "compre agora", "aproveite agora",
		"frete grátis", "por tempo limitado", "cadastre-se", "inscreva-se",
		"descadastrar", "cancelar inscrição", "http://", "https://", "www.",
	},
	SetMarketingBigrams: {
		"black friday", "frete gratis", "compre agora", "aproveite desconto",
		"nova colecao", "oferta especial", "ultimas unidades", "cupom desconto",
	},
	SetEntertainment: {
		"filme", "série", "novela", "show", "festival", "jogo", "futebol",
		"música", "piada", "meme", "netflix", "cinema", "balada", "churrasco",
		"fofoca", "horóscopo", "videogame", "campeonato",
	},
	SetEntertainmentBigrams: {
		"novo filme", "nova serie", "novo episodio", "jogo hoje",
		"assistir filme", "happy hour",
	},
	SetEntertainmentIndicators: {
		"happy hour", "fim de semana animado", "você viu o jogo",
		"assistiu o filme", "bolão da copa",
	},
	SetGratitude: {
		"obrigado", "obrigada", "agradeço", "agradecemos", "gratidão",
		"grato", "grata", "valeu", "agradecimento",
	},
	SetGratitudePhrases: {
		"muito obrigado pela ajuda", "obrigado pelo suporte", "agradeço",
		"gratidão", "grato pela atenção", "obrigada pelo atendimento",
	},
	SetTonePositive: {
		"ótimo", "excelente", "obrigado", "obrigada", "parabéns", "satisfeito",
		"feliz", "bom", "maravilhoso", "fantástico", "perfeito", "orgulho",
		"sucesso", "resolvido",
	},
	SetToneNegative: {
		"ruim", "péssimo", "problema", "erro", "insatisfeito",
		"horrível", "terrível", "inaceitável", "frustrante",
	},
	SetUrgencyHigh: {
		"urgente", "emergência", "crítico", "imediato", "agora",
		"hoje", "asap", "rapidamente", "sem demora",
	},
	SetUrgencyMedium: {
		"importante", "necessário", "breve", "logo", "em breve", "prazo",
		"assim que possível",
	},
	SetDeadline: {
		"até amanhã", "até sexta", "até segunda", "prazo", "deadline",
		"o quanto antes", "ainda hoje", "data limite",
	},
	SetGenuineCongratulation: {
		"parabéns pelo", "parabéns à equipe", "parabéns a equipe",
		"felicitações pelo", "felicitações pela", "parabenizo", "meus parabéns",
		"sucesso merecido", "excelente resultado", "ótimo desempenho",
	},
	SetProfessionalContext: {
		"projeto", "equipe", "trabalho", "resultado", "entrega", "cliente",
		"reunião", "apresentação", "desempenho", "meta", "conquista",
		"empresa", "time",
	},
	SetStrongComplaint: {
		"péssimo atendimento", "inaceitável", "absurdo",
		"quero meu dinheiro de volta", "vou processar", "procon",
		"reclame aqui", "nunca mais",
	},
	SetWorkBigrams: {
		"sistema fora", "fora do", "suporte tecnico", "nao funciona",
		"suporte imediato", "acesso negado", "servidor caiu", "prazo final",
	},
	SetTechnicalTerms: {
		"sistema", "erro", "bug", "falha", "login", "servidor",
	},
	SetQuestionWords: {
		"como", "quando", "onde", "por que", "qual",
	},

	SetUrgent: {
		"urgente", "emergência", "crítico", "imediato", "agora", "hoje",
		"asap", "prioridade máxima", "sem demora", "rapidamente",
	},
	SetTechnicalSupport: {
		"problema", "erro", "bug", "falha", "não funciona", "quebrou", "travou",
		"suporte", "assistência técnica", "sistema fora", "fora do ar", "login",
		"senha", "acesso negado", "conexão", "servidor", "instalação", "sistema",
	},
	SetRequest: {
		"solicito", "preciso", "gostaria", "poderia", "favor", "pedido",
		"requisição", "demanda", "necessito", "requerer", "pedir",
	},
	SetComplaint: {
		"reclamação", "insatisfeito", "descontente", "irritado", "chateado",
		"decepcionado", "inaceitável", "absurdo", "revoltante", "péssimo",
	},
	SetQuestion: {
		"dúvida", "pergunta", "questão", "como", "quando", "onde", "por que",
		"qual", "não entendo", "não sei", "explicar", "esclarecer", "orientação",
	},
	SetCongratulations: {
		"parabéns", "felicitações", "parabenizo", "sucesso merecido",
		"excelente resultado", "ótimo desempenho", "orgulhosos", "orgulho",
	},
	SetWorkCommunication: {
		"reunião", "projeto", "prazo", "relatório", "cronograma", "entrega",
		"apresentação", "atualização", "status", "alinhamento",
	},
}

// Patterns run against lower-cased text. \b is ASCII only in RE2, so it
// is never placed next to an accented letter.
var builtinPatterns = map[Group][]string{
	GroupSpamStrong: {
		`ganhe\s+(milh[õo]es|dinheiro|r\$)`,
		`clique\s+aqui`,
		`oferta\s+(limitada|imperd[ií]vel|exclusiva)`,
		`\${2,}`,
		`dinheiro\s+(f[áa]cil|gr[áa]tis)`,
		`voc[êe]\s+(foi\s+)?(sorteado|ganhou|contemplado)`,
		`resgat(e|ar)\s+(seu\s+)?pr[êe]mio`,
		`taxa\s+de\s+libera[çc][ãa]o`,
		`(100|cem)\s*%\s*gr[áa]tis`,
		`renda\s+extra`,
	},
	GroupMarketingStrong: {
		`\d+\s*%\s*(de\s+)?(desconto|off)`,
		`(compre|aproveite|garanta)\s+(j[áa]|agora)`,
		`frete\s+gr[áa]tis`,
		`cancelar\s+(a\s+)?inscri[çc][ãa]o|descadastr`,
		`\bcupom\b`,
		`black\s+friday|cyber\s+monday`,
		`newsletter\s+(semanal|mensal)`,
	},
	GroupMarketingNegative: {
		`\b(problema|erro|falha)\b`,
		`obrigad[oa]\s+pel`,
		`\bd[úu]vida\b`,
		`\bpreciso\s+de\b`,
	},
	GroupWorkContext: {
		`\breuni[ãa]o\b`,
		`\bprojetos?\b`,
		`\bprazos?\b`,
		`\brelat[óo]rios?\b`,
		`\bclientes?\b`,
		`\bequipe\b`,
		`\bentregas?\b`,
		`\bcontratos?\b`,
		`\bsistemas?\b`,
		`\bsuporte\b`,
		`\btrabalho\b`,
	},
	GroupEntertainmentStrong: {
		`assistir\s+(o\s+|a\s+)?(filme|s[ée]rie|jogo|show)`,
		`novo\s+epis[óo]dio|nova\s+temporada`,
		`\b(netflix|spotify|youtube|tiktok)\b`,
		`ingressos?\s+(para\s+)?(o\s+|a\s+)?(show|festival|jogo)`,
		`(partida|cl[áa]ssico)\s+de\s+futebol`,
		`\bmemes?\b`,
	},
}

// productiveOrder is the declaration order used to break score ties
var productiveOrder = []Intent{
	{Set: SetUrgent, Subcategory: core.SubUrgent},
	{Set: SetTechnicalSupport, Subcategory: core.SubTechnicalSupport},
	{Set: SetRequest, Subcategory: core.SubRequest},
	{Set: SetComplaint, Subcategory: core.SubComplaint},
	{Set: SetQuestion, Subcategory: core.SubQuestion},
	{Set: SetCongratulations, Subcategory: core.SubCongratulations},
	{Set: SetWorkCommunication, Subcategory: core.SubWorkCommunication},
}
