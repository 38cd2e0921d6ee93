package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mikey/email-triage/internal/core"
)

var (
	urlPattern        = regexp.MustCompile(`https?\S+|www\S+`)
	emailPattern      = regexp.MustCompile(`\S+@\S+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s.!?]`)
	spacePattern      = regexp.MustCompile(`\s+`)
	tokenPattern      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentenceSeparator = regexp.MustCompile(`[.!?]+`)
)

// mostCommonLimit bounds NlpFeatures.MostCommonWords
const mostCommonLimit = 10

// Normalizer turns raw email text into NlpFeatures. It holds only
// read-only state and is safe for concurrent use.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer creates a Normalizer with the Portuguese stopword list
func NewNormalizer() *Normalizer {
	stop := make(map[string]struct{}, len(portugueseStopwords))
	for _, w := range portugueseStopwords {
		stop[StripAccents(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stop}
}

// StripAccents removes combining marks after NFD decomposition
func StripAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// Normalize strips accents, lower-cases, drops URLs and email addresses and
// keeps only word characters and sentence punctuation
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(StripAccents(text))
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Preprocess derives every NLP feature of text in one pass
func (n *Normalizer) Preprocess(text string) *core.NlpFeatures {
	normalized := n.Normalize(text)
	tokens := tokenPattern.FindAllString(normalized, -1)

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := n.stopwords[tok]; stop || utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		filtered = append(filtered, tok)
	}

	stems := make([]string, len(filtered))
	for i, tok := range filtered {
		stems[i] = Stem(tok)
	}

	bigrams := ngrams(tokens, 2)
	trigrams := ngrams(tokens, 3)

	features := &core.NlpFeatures{
		NormalizedText:  normalized,
		Tokens:          tokens,
		FilteredTokens:  filtered,
		Stems:           stems,
		Bigrams:         bigrams,
		Trigrams:        trigrams,
		BigramText:      strings.Join(bigrams, " "),
		TrigramText:     strings.Join(trigrams, " "),
		WordCount:       len(tokens),
		SentenceCount:   CountSentences(text),
		MostCommonWords: mostCommon(filtered, mostCommonLimit),
	}

	if len(tokens) > 0 {
		unique := make(map[string]struct{}, len(tokens))
		chars := 0
		for _, tok := range tokens {
			unique[tok] = struct{}{}
			chars += utf8.RuneCountInString(tok)
		}
		features.UniqueWordCount = len(unique)
		features.LexicalDiversity = float64(len(unique)) / float64(len(tokens))
		features.AvgWordLength = float64(chars) / float64(len(tokens))
	}

	return features
}

// TextStats returns the statistics view of text
func (n *Normalizer) TextStats(text string) core.TextStats {
	f := n.Preprocess(text)
	stats := core.TextStats{
		Characters:       utf8.RuneCountInString(text),
		Words:            f.WordCount,
		UniqueWords:      f.UniqueWordCount,
		Sentences:        f.SentenceCount,
		LexicalDiversity: round2(f.LexicalDiversity),
		AvgWordLength:    round2(f.AvgWordLength),
	}
	if f.WordCount > 0 {
		stats.InformationDensity = float64(len(f.FilteredTokens)) / float64(f.WordCount)
	}
	return stats
}

// ExtractKeywords returns the topN most frequent stems of text
func (n *Normalizer) ExtractKeywords(text string, topN int) []string {
	return mostCommon(n.Preprocess(text).Stems, topN)
}

// CountSentences splits text on terminators and counts non-blank pieces
func CountSentences(text string) int {
	count := 0
	for _, s := range sentenceSeparator.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

func ngrams(tokens []string, size int) []string {
	if len(tokens) < size {
		return nil
	}
	out := make([]string, 0, len(tokens)-size+1)
	for i := 0; i+size <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+size], " "))
	}
	return out
}

// mostCommon orders words by frequency, ties by first occurrence
func mostCommon(words []string, topN int) []string {
	if topN <= 0 || len(words) == 0 {
		return nil
	}

	counts := make(map[string]int, len(words))
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
