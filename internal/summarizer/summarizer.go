package summarizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/core"
)

// Sentence limits
const (
	DefaultMaxSentences = 3
	MaxSentencesLimit   = 10

	minTextLength      = 50
	minSentenceWords   = 10
	maxSentenceWords   = 50
	maxKeyPoints       = 6
	keyPointsPerFamily = 2
	asIsRelevance      = 0.8
)

var (
	spacePattern        = regexp.MustCompile(`\s+`)
	abbreviationPattern = regexp.MustCompile(`\b[A-Z]\.$`)
	numberPattern       = regexp.MustCompile(`\d+`)
	datePattern         = regexp.MustCompile(`\d{1,2}/\d{1,2}(/\d{2,4})?`)
	moneyPattern        = regexp.MustCompile(`r\$|reais|valor|preço`)
)

// Summarizer builds extractive executive summaries
type Summarizer struct {
	families [][]*regexp.Regexp
}

// New compiles the key point patterns
func New() (*Summarizer, error) {
	s := &Summarizer{}
	for _, family := range keyPointFamilies {
		compiled := make([]*regexp.Regexp, 0, len(family))
		for _, expr := range family {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: key point pattern %q: %v", core.ErrPatternConfig, expr, err)
			}
			compiled = append(compiled, re)
		}
		s.families = append(s.families, compiled)
	}
	return s, nil
}

// ClampMaxSentences maps a requested size into 1..10, defaulting to 3
func ClampMaxSentences(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxSentences
	case n > MaxSentencesLimit:
		return MaxSentencesLimit
	}
	return n
}

type scoredSentence struct {
	index int
	text  string
	score float64
}

// Summarize selects up to maxSentences of text, kept in source order
func (s *Summarizer) Summarize(text string, maxSentences int) core.SummaryResult {
	maxSentences = ClampMaxSentences(maxSentences)
	text = strings.TrimSpace(text)

	result := core.SummaryResult{
		Sentences: []string{},
		KeyPoints: []string{},
	}
	if text == "" {
		return result
	}

	originalWords := len(strings.Fields(text))
	result.OriginalWordCount = originalWords

	if utf8.RuneCountInString(text) < minTextLength {
		result.Sentences = []string{text}
		result.SummaryWordCount = originalWords
		return result
	}

	result.KeyPoints = s.extractKeyPoints(text)
	result.Context = analyzeContext(text)

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		result.Sentences = []string{text}
		result.SummaryWordCount = originalWords
		result.RelevanceScore = asIsRelevance
		return result
	}

	if len(sentences) <= maxSentences {
		result.Sentences = sentences
		result.RelevanceScore = asIsRelevance
	} else {
		scored := scoreSentences(sentences)
		selected := selectTop(scored, maxSentences)
		for _, ss := range selected {
			result.Sentences = append(result.Sentences, ss.text)
		}
		result.RelevanceScore = relevance(scored, selected)
	}

	for _, sentence := range result.Sentences {
		result.SummaryWordCount += len(strings.Fields(sentence))
	}
	if originalWords > 0 {
		reduction := float64(originalWords-result.SummaryWordCount) / float64(originalWords) * 100
		result.WordReductionPercent = float64(int(reduction*10+0.5)) / 10
	}

	return result
}

// splitSentences accumulates characters up to a terminator, skipping
// terminators that close a single capital letter abbreviation
func splitSentences(text string) []string {
	text = spacePattern.ReplaceAllString(text, " ")

	var (
		sentences []string
		current   strings.Builder
	)
	for _, r := range text {
		current.WriteRune(r)
		if !strings.ContainsRune(".!?;", r) {
			continue
		}
		stripped := strings.TrimSpace(current.String())
		if utf8.RuneCountInString(stripped) <= 10 || abbreviationPattern.MatchString(stripped) {
			continue
		}
		sentences = append(sentences, stripped)
		current.Reset()
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}

	eligible := sentences[:0]
	for _, sentence := range sentences {
		if n := len(strings.Fields(sentence)); n >= minSentenceWords && n <= maxSentenceWords {
			eligible = append(eligible, sentence)
		}
	}
	return eligible
}

func scoreSentences(sentences []string) []scoredSentence {
	total := len(sentences)
	firstPortion := int(float64(total) * 0.3)

	scored := make([]scoredSentence, len(sentences))
	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		words := len(strings.Fields(sentence))

		var score float64
		switch {
		case i == 0:
			score = 15
		case i == total-1:
			score = 10
		case i < firstPortion:
			score = 8
		}

		important := 0
		for _, category := range importanceKeywords {
			matches := countContained(lower, category.keywords)
			important += matches
			score += float64(matches * category.weight)
		}

		if numberPattern.MatchString(sentence) {
			score += 8
		}
		if datePattern.MatchString(sentence) {
			score += 10
		}
		if moneyPattern.MatchString(lower) {
			score += 8
		}
		if strings.Contains(sentence, "?") {
			score += 7
		}
		for _, verb := range actionStarts {
			if strings.HasPrefix(lower, verb) {
				score += 12
				break
			}
		}

		switch {
		case words >= 8 && words <= 25:
			score += 5
		case words > 30:
			score -= 3
		}

		if words > 0 {
			score += float64(important-countNoise(lower)) / float64(words) * 10
		}

		scored[i] = scoredSentence{index: i, text: sentence, score: max(0, score)}
	}
	return scored
}

// selectTop keeps the n best sentences and restores their source order
func selectTop(scored []scoredSentence, n int) []scoredSentence {
	ranked := append([]scoredSentence(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].index < ranked[j].index
	})
	return ranked
}

func relevance(all, selected []scoredSentence) float64 {
	if len(all) == 0 || len(selected) == 0 {
		return 0
	}
	best := 0.0
	for _, ss := range all {
		best = max(best, ss.score)
	}
	if best == 0 {
		return 0
	}
	sum := 0.0
	for _, ss := range selected {
		sum += ss.score
	}
	return min(1.0, sum/float64(len(selected))/best)
}

func (s *Summarizer) extractKeyPoints(text string) []string {
	lower := strings.ToLower(spacePattern.ReplaceAllString(text, " "))

	var points []string
	for _, family := range s.families {
		var familyPoints []string
		for _, re := range family {
			for _, match := range re.FindAllString(lower, keyPointsPerFamily) {
				match = strings.TrimSpace(match)
				if utf8.RuneCountInString(match) > 8 && !contains(familyPoints, match) {
					familyPoints = append(familyPoints, match)
				}
			}
		}
		if len(familyPoints) > keyPointsPerFamily {
			familyPoints = familyPoints[:keyPointsPerFamily]
		}
		points = append(points, familyPoints...)
	}

	seen := make(map[string]bool, len(points))
	var unique []string
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, capitalize(p))
		if len(unique) == maxKeyPoints {
			break
		}
	}
	if unique == nil {
		unique = []string{}
	}
	return unique
}

func analyzeContext(text string) core.SummaryContext {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	ctx := core.SummaryContext{
		CommunicationTypes: []string{},
		PrimarySentiment:   "neutral",
		WordCount:          words,
		SentenceCount:      strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"),
		ActionRequired:     countContained(lower, actionIndicators) > 0,
		HasDeadline:        countContained(lower, deadlineIndicators) > 0,
		MentionsAttachment: countContained(lower, attachmentIndicators) > 0,
	}

	for _, ct := range communicationTypes {
		if countContained(lower, ct.keywords) > 0 {
			ctx.CommunicationTypes = append(ctx.CommunicationTypes, ct.name)
		}
	}
	for _, si := range sentimentIndicators {
		if countContained(lower, si.keywords) > 0 {
			ctx.PrimarySentiment = si.name
			break
		}
	}

	switch {
	case words < 50:
		ctx.Complexity = "low"
	case words < 150:
		ctx.Complexity = "medium"
	default:
		ctx.Complexity = "high"
	}

	return ctx
}

func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// countNoise counts distinct noise words present in the sentence
func countNoise(lower string) int {
	present := make(map[string]bool)
	for _, w := range strings.Fields(lower) {
		present[w] = true
	}
	n := 0
	for _, w := range noiseWords {
		if present[w] {
			n++
		}
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
