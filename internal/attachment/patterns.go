package attachment

type phrasePattern struct {
	phrase string
	expr   string
}

type keywordGroup struct {
	name     string
	keywords []string
}

var mentionExprs = []string{
	`anexos?\b`,
	`anexados?\b`,
	`anexando\b`,
	`anexei\b`,
	`arquivos?\s+anexos?\b`,
	`documentos?\s+em\s+anexo\b`,
	`relatório\s+anexos?\b`,
	`planilha\s+anexas?\b`,
	`segue\s+anexos?\b`,
	`em\s+anexo\b`,
	`está\s+anexos?\b`,
	`estão\s+anexos?\b`,
	`encontra-se\s+anexos?\b`,
	`vai\s+anexos?\b`,
	`follows?\s+attached\b`,
	`attached\s+files?\b`,
	`attachments?\b`,
	`\w*erro\w*\s+.*\s+anexo`,
	`detalhado\s+.*\s+anexo`,
	`relatório\s+.*\s+anexo`,
}

var suspiciousPatterns = []phrasePattern{
	{"clique no anexo", `clique\s+no\s+anexo`},
	{"abra o anexo", `abra\s+o\s+anexo`},
	{"execute o arquivo", `execute\s+o\s+arquivo`},
	{"instale o programa", `instale\s+o\s+programa`},
	{"baixe e execute", `baixe\s+e\s+execute`},
	{"arquivo importante", `arquivo\s+importante`},
	{"documento urgente anexo", `documento\s+urgente\s+anexo`},
}

var executableExtensions = []string{".exe", ".msi", ".bat", ".cmd", ".scr"}

// executableFlag is appended to the risk flags when an extension is named
const executableFlag = "executable_file_mentioned"

var professionalKeywords = []string{
	"relatório", "documento", "arquivo", "log", "dados",
	"planilha", "análise", "resultado", "evidência",
}

var professionalContexts = []string{
	"projeto", "erro", "problema", "status", "progresso",
	"reunião", "apresentação", "resultado", "análise",
}

var contextGroups = []keywordGroup{
	{"document_request", []string{
		"preciso do documento", "envie o arquivo", "poderia anexar",
		"você poderia enviar", "me mande o arquivo", "solicito o documento",
	}},
	{"sharing", []string{
		"segue anexo", "anexo solicitado", "documento anexado",
		"está anexo", "vai anexo", "encontra-se anexo", "conforme solicitado",
	}},
	{"professional_work", []string{
		"relatório", "planilha", "apresentação", "projeto", "análise",
		"dados", "resultado", "estatística", "levantamento", "pesquisa",
	}},
	{"technical_support", []string{
		"erro", "bug", "falha", "problema", "log", "debug",
		"screenshot", "print", "evidência", "captura",
	}},
	{"administrative", []string{
		"contrato", "proposta", "orçamento", "fatura", "recibo",
		"documento fiscal", "comprovante", "certificado",
	}},
	{"internal_communication", []string{
		"ata de reunião", "memorando", "circular", "comunicado",
		"política", "procedimento", "manual", "diretriz",
	}},
}

// checked in order, the first level with a hit wins
var urgencyGroups = []keywordGroup{
	{"high", []string{"urgente", "imediato", "emergência", "crítico", "hoje", "agora"}},
	{"medium", []string{"importante", "necessário", "prazo", "breve", "logo"}},
	{"low", []string{"quando possível", "sem pressa", "conveniência"}},
}

var purposeGroups = []keywordGroup{
	{"evidence", []string{"prova", "evidência", "comprovação", "demonstração"}},
	{"reference", []string{"consulta", "referência", "base", "modelo"}},
	{"action_required", []string{"revisar", "analisar", "verificar", "validar", "aprovar"}},
	{"information", []string{"informação", "dados", "detalhes", "especificação"}},
}
