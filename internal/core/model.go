package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Email represents an email message handed to the triage service
type Email struct {
	From        string
	FromName    string
	To          []string
	Subject     string
	Body        string
	Headers     map[string][]string
	Attachments []string
}

// Category is the top-level business classification
type Category string

const (
	CategoryProductive   Category = "Productive"
	CategoryUnproductive Category = "Unproductive"
)

// Tone of the email
type Tone string

const (
	TonePositive Tone = "Positive"
	ToneNegative Tone = "Negative"
	ToneNeutral  Tone = "Neutral"
)

// Urgency level of the email
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Subcategory labels. Each belongs to exactly one Category.
const (
	SubUrgent            = "Urgent"
	SubTechnicalSupport  = "Technical Support"
	SubRequest           = "Request"
	SubComplaint         = "Complaint"
	SubQuestion          = "Question"
	SubCongratulations   = "Congratulations"
	SubWorkCommunication = "Work Communication"

	SubSpam          = "Spam"
	SubMarketing     = "Marketing"
	SubEntertainment = "Entertainment"
	SubThanks        = "Thanks"
	SubInformational = "Informational"
)

var vocabulary = map[Category][]string{
	CategoryProductive: {
		SubUrgent, SubTechnicalSupport, SubRequest, SubComplaint,
		SubQuestion, SubCongratulations, SubWorkCommunication,
	},
	CategoryUnproductive: {
		SubSpam, SubMarketing, SubEntertainment, SubThanks, SubInformational,
	},
}

// Subcategories returns the subcategory vocabulary of a category
func Subcategories(c Category) []string {
	return append([]string(nil), vocabulary[c]...)
}

// ValidSubcategory reports whether sub belongs to the vocabulary of c
func ValidSubcategory(c Category, sub string) bool {
	for _, s := range vocabulary[c] {
		if s == sub {
			return true
		}
	}
	return false
}

// ClassificationResult is the outcome of classifying one email
type ClassificationResult struct {
	Category       Category     `json:"category"`
	Subcategory    string       `json:"subcategory"`
	Tone           Tone         `json:"tone"`
	Urgency        Urgency      `json:"urgency"`
	Confidence     float64      `json:"confidence"`
	Reasoning      string       `json:"reasoning"`
	AIFallbackUsed bool         `json:"ai_fallback_used"`
	ModelUsed      string       `json:"model_used,omitempty"`
	Features       *NlpFeatures `json:"nlp_features,omitempty"`
}

// NlpFeatures holds everything derived from one pass of text preprocessing
type NlpFeatures struct {
	NormalizedText   string   `json:"normalized_text"`
	Tokens           []string `json:"tokens"`
	FilteredTokens   []string `json:"filtered_tokens"`
	Stems            []string `json:"stems"`
	Bigrams          []string `json:"bigrams"`
	Trigrams         []string `json:"trigrams"`
	BigramText       string   `json:"bigram_text"`
	TrigramText      string   `json:"trigram_text"`
	WordCount        int      `json:"word_count"`
	SentenceCount    int      `json:"sentence_count"`
	UniqueWordCount  int      `json:"unique_word_count"`
	LexicalDiversity float64  `json:"lexical_diversity"`
	AvgWordLength    float64  `json:"avg_word_length"`
	MostCommonWords  []string `json:"most_common_words"`
}

// HasBigram reports whether the bigram occurs in the unfiltered token stream
func (f *NlpFeatures) HasBigram(bigram string) bool {
	if f == nil {
		return false
	}
	for _, b := range f.Bigrams {
		if b == bigram {
			return true
		}
	}
	return false
}

// TextStats is the statistics view of a text, also sent to the AI fallback
type TextStats struct {
	Characters         int     `json:"characters"`
	Words              int     `json:"words"`
	UniqueWords        int     `json:"unique_words"`
	Sentences          int     `json:"sentences"`
	LexicalDiversity   float64 `json:"lexical_diversity"`
	AvgWordLength      float64 `json:"avg_word_length"`
	InformationDensity float64 `json:"information_density"`
}

// CacheEntry is a cached classification keyed by content hash
type CacheEntry struct {
	Key       string
	Result    *ClassificationResult
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CacheKey returns the content hash a classification is cached under
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}
