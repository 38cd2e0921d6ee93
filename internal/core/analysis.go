package core

import "time"

// RiskLevel is the security risk attached to attachment mentions
type RiskLevel string

const (
	RiskSafe   RiskLevel = "safe"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AttachmentAnalysis describes attachment mentions found in an email
type AttachmentAnalysis struct {
	HasMentions bool              `json:"has_mentions"`
	Mentions    []string          `json:"mentions"`
	RiskLevel   RiskLevel         `json:"risk_level"`
	RiskScore   int               `json:"risk_score"`
	RiskFlags   []string          `json:"risk_flags"`
	Score       int               `json:"score"`
	Context     AttachmentContext `json:"context"`
}

// AttachmentContext is the surrounding-text view of the attachment mentions
type AttachmentContext struct {
	Contexts       []string `json:"contexts"`
	HasUrgency     bool     `json:"has_urgency"`
	UrgencyLevel   string   `json:"urgency_level"`
	Purposes       []string `json:"purposes"`
	EmailLength    int      `json:"email_length"`
	MentionDensity float64  `json:"mention_density"`
	ContextScore   int      `json:"context_score"`
}

// Thread parsing methods
const (
	MethodHeader      = "header"
	MethodSeparator   = "separator"
	MethodBlankLine   = "blank-line"
	MethodSingleBlock = "single-block"
)

// ThreadSegment is one logical email extracted from a thread
type ThreadSegment struct {
	Index        int    `json:"index"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Date         string `json:"date,omitempty"`
	Body         string `json:"body"`
	HeadersFound bool   `json:"headers_found"`
	Method       string `json:"method"`
}

// ThreadSummary aggregates a parsed thread
type ThreadSummary struct {
	TotalEmails  int      `json:"total_emails"`
	HasHeaders   bool     `json:"has_headers"`
	Methods      []string `json:"methods"`
	Subjects     []string `json:"subjects"`
	Senders      []string `json:"senders"`
	FirstPreview string   `json:"first_preview,omitempty"`
}

// SummaryResult is an executive summary of one email
type SummaryResult struct {
	Sentences            []string       `json:"sentences"`
	KeyPoints            []string       `json:"key_points"`
	RelevanceScore       float64        `json:"relevance_score"`
	WordReductionPercent float64        `json:"word_reduction_percent"`
	OriginalWordCount    int            `json:"original_word_count"`
	SummaryWordCount     int            `json:"summary_word_count"`
	Context              SummaryContext `json:"context"`
}

// SummaryContext is the overall communication profile of a summarized email
type SummaryContext struct {
	CommunicationTypes []string `json:"communication_types"`
	PrimarySentiment   string   `json:"primary_sentiment"`
	Complexity         string   `json:"complexity"`
	WordCount          int      `json:"word_count"`
	SentenceCount      int      `json:"sentence_count"`
	ActionRequired     bool     `json:"action_required"`
	HasDeadline        bool     `json:"has_deadline"`
	MentionsAttachment bool     `json:"mentions_attachment"`
}

// EmailAnalysis is the full triage output for one email
type EmailAnalysis struct {
	Classification    *ClassificationResult `json:"classification"`
	Attachments       AttachmentAnalysis    `json:"attachment_analysis"`
	SuggestedResponse string                `json:"suggested_response"`
	ResponseType      string                `json:"response_type"`
	WordCount         int                   `json:"word_count"`
	CharCount         int                   `json:"char_count"`
	ProcessingTimeMs  int64                 `json:"processing_time_ms"`
	FromCache         bool                  `json:"from_cache"`
}

// AnalyticsRecord is the flat record handed to the analytics collaborator
type AnalyticsRecord struct {
	SenderEmail      string
	SenderName       string
	SenderDomain     string
	Category         Category
	Subcategory      string
	Tone             Tone
	Urgency          Urgency
	Confidence       float64
	WordCount        int
	CharCount        int
	HasAttachments   bool
	AttachmentScore  int
	Keywords         []string
	ProcessingTimeMs int64
	Source           string
	TechnicalData    map[string]any
	CreatedAt        time.Time
}

// AnalysisRequest is one email handed to the triage service
type AnalysisRequest struct {
	Text        string
	SenderEmail string
	SenderName  string
	// Source names the intake path: cli, batch, smtp
	Source string
	// Metadata is copied into the analytics technical data
	Metadata map[string]any
}
