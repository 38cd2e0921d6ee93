package classifier

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/catalog"
	"github.com/mikey/email-triage/internal/core"
)

// input is everything a rule may look at, computed once per text
type input struct {
	text     string
	lower    string
	words    int
	features *core.NlpFeatures
}

// rule returns a final result or nil to defer to the next rule
type rule struct {
	name  string
	apply func(in *input) *core.ClassificationResult
}

func (c *Classifier) cascade() []rule {
	return []rule{
		{"strong_spam", c.strongSpam},
		{"keyword_spam", c.keywordSpam},
		{"entertainment", c.entertainment},
		{"marketing", c.marketing},
		{"thanks", c.thanks},
		{"productive", c.productive},
	}
}

func unproductive(sub string, tone core.Tone, confidence float64, reasoning string) *core.ClassificationResult {
	return &core.ClassificationResult{
		Category:    core.CategoryUnproductive,
		Subcategory: sub,
		Tone:        tone,
		Urgency:     core.UrgencyLow,
		Confidence:  confidence,
		Reasoning:   reasoning,
	}
}

func (c *Classifier) strongSpam(in *input) *core.ClassificationResult {
	if c.catalog.IsGenuineCongratulation(in.lower) {
		return nil
	}

	count, _ := c.catalog.CheckRegexPatterns(in.lower, catalog.GroupSpamStrong)
	if count >= c.thresholds.StrongSpamMatches {
		return unproductive(core.SubSpam, core.ToneNeutral, confidenceStrongSpam,
			fmt.Sprintf("strong spam patterns matched (%d)", count))
	}

	if c.catalog.HasSuspiciousSpamPatterns(in.lower) {
		return unproductive(core.SubSpam, core.ToneNeutral, confidenceStrongSpam,
			"multiple suspicious spam phrases")
	}

	return nil
}

func (c *Classifier) keywordSpam(in *input) *core.ClassificationResult {
	score := 3 * c.catalog.Count(in.lower, catalog.SetSpam)

	if strings.Contains(in.lower, "parabéns") || strings.Contains(in.lower, "felicitações") {
		score += 2
	}
	if c.catalog.ContainsAny(in.lower, catalog.SetEasyMoney) {
		score += 8
	}
	if c.catalog.ContainsAny(in.lower, catalog.SetUrgencyHigh) && c.catalog.ContainsAny(in.lower, catalog.SetOffer) {
		score += 5
	}
	if utf8.RuneCountInString(in.text) > c.thresholds.UppercaseMinLength && uppercaseRatio(in.text) > c.thresholds.UppercaseRatio {
		score += 4
	}

	if score >= c.thresholds.SpamScore {
		return unproductive(core.SubSpam, core.ToneNeutral, confidenceKeywordSpam,
			fmt.Sprintf("spam keyword score %d", score))
	}
	return nil
}

func (c *Classifier) entertainment(in *input) *core.ClassificationResult {
	if count, _ := c.catalog.CheckRegexPatterns(in.lower, catalog.GroupEntertainmentStrong); count > 0 {
		return unproductive(core.SubEntertainment, c.detectTone(in.lower), confidenceEntertainmentRegex,
			fmt.Sprintf("entertainment patterns matched (%d)", count))
	}

	score := 3*c.catalog.Count(in.lower, catalog.SetEntertainment) +
		4*c.countBigrams(in.features, catalog.SetEntertainmentBigrams)

	if score >= c.thresholds.EntertainmentScore || c.catalog.ContainsAny(in.lower, catalog.SetEntertainmentIndicators) {
		return unproductive(core.SubEntertainment, c.detectTone(in.lower), confidenceEntertainmentScore,
			fmt.Sprintf("entertainment score %d", score))
	}
	return nil
}

func (c *Classifier) marketing(in *input) *core.ClassificationResult {
	if work, _ := c.catalog.CheckRegexPatterns(in.lower, catalog.GroupWorkContext); work >= c.thresholds.WorkContextMatches {
		return nil
	}
	if negative, _ := c.catalog.CheckRegexPatterns(in.lower, catalog.GroupMarketingNegative); negative > 0 {
		return nil
	}

	strong, _ := c.catalog.CheckRegexPatterns(in.lower, catalog.GroupMarketingStrong)
	if strong >= c.thresholds.MarketingStrongMatches {
		return unproductive(core.SubMarketing, c.detectTone(in.lower), confidenceMarketingRegex,
			fmt.Sprintf("marketing patterns matched (%d)", strong))
	}

	score := 2*c.catalog.Count(in.lower, catalog.SetMarketing) +
		3*c.countBigrams(in.features, catalog.SetMarketingBigrams)
	indicators := c.catalog.Count(in.lower, catalog.SetMarketingIndicators)

	if indicators >= c.thresholds.MarketingIndicators ||
		score >= c.thresholds.MarketingScore ||
		(strong > 0 && score >= c.thresholds.MarketingRegexScore) {
		return unproductive(core.SubMarketing, c.detectTone(in.lower), confidenceMarketingScore,
			fmt.Sprintf("marketing score %d, indicators %d", score, indicators))
	}
	return nil
}

func (c *Classifier) thanks(in *input) *core.ClassificationResult {
	if c.catalog.ContainsAny(in.lower, catalog.SetTonePositive) &&
		c.catalog.ContainsAny(in.lower, catalog.SetGratitude) &&
		in.words < c.thresholds.ThanksMaxWords {
		return unproductive(core.SubThanks, core.TonePositive, confidenceThanks, "positive gratitude message")
	}

	score := 2 * c.catalog.Count(in.lower, catalog.SetGratitudePhrases)
	if score >= c.thresholds.GratitudeScore && !c.hasProductiveKeyword(in.lower) && in.words < c.thresholds.GratitudeMaxWords {
		return unproductive(core.SubThanks, core.TonePositive, confidenceGratitude, "simple thanks without requests")
	}
	return nil
}

type structure struct {
	hasQuestion  bool
	hasUrgency   bool
	hasTechnical bool
	hasComplaint bool
}

func (s structure) any() bool {
	return s.hasQuestion || s.hasUrgency || s.hasTechnical || s.hasComplaint
}

func (s structure) subcategory() string {
	switch {
	case s.hasQuestion:
		return core.SubQuestion
	case s.hasTechnical:
		return core.SubTechnicalSupport
	case s.hasComplaint:
		return core.SubComplaint
	case s.hasUrgency:
		return core.SubUrgent
	}
	return core.SubInformational
}

func (c *Classifier) analyzeStructure(in *input) structure {
	return structure{
		hasQuestion:  strings.Contains(in.lower, "?") || c.catalog.ContainsAny(in.lower, catalog.SetQuestionWords),
		hasUrgency:   strings.Count(in.lower, "!") >= c.thresholds.UrgencyExclamations,
		hasTechnical: c.catalog.ContainsAny(in.lower, catalog.SetTechnicalTerms),
		hasComplaint: c.catalog.ContainsAny(in.lower, catalog.SetComplaint),
	}
}

func (c *Classifier) productive(in *input) *core.ClassificationResult {
	intents := c.catalog.ProductiveIntents()
	scores := make(map[catalog.Set]int, len(intents))
	for _, intent := range intents {
		if s := 2 * c.catalog.Count(in.lower, intent.Set); s > 0 {
			scores[intent.Set] = s
		}
	}

	if c.countBigrams(in.features, catalog.SetWorkBigrams) > 0 {
		for _, set := range []catalog.Set{catalog.SetUrgent, catalog.SetTechnicalSupport} {
			if scores[set] > 0 {
				scores[set] += 3
			}
		}
	}

	if scores[catalog.SetCongratulations] > 0 {
		if c.catalog.IsGenuineCongratulation(in.lower) {
			return &core.ClassificationResult{
				Category:    core.CategoryProductive,
				Subcategory: core.SubCongratulations,
				Tone:        c.detectTone(in.lower),
				Urgency:     c.detectUrgency(in.lower),
				Confidence:  confidenceGenuineCongratulate,
				Reasoning:   "genuine professional congratulation",
			}
		}
		delete(scores, catalog.SetCongratulations)
	}

	if scores[catalog.SetComplaint] > 0 && c.catalog.ContainsAny(in.lower, catalog.SetStrongComplaint) {
		delete(scores, catalog.SetRequest)
	}

	var top *catalog.Intent
	best := 0
	for i := range intents {
		if s := scores[intents[i].Set]; s > best {
			best = s
			top = &intents[i]
		}
	}

	st := c.analyzeStructure(in)
	result := &core.ClassificationResult{
		Category:   core.CategoryUnproductive,
		Tone:       c.detectTone(in.lower),
		Urgency:    c.detectUrgency(in.lower),
		Confidence: c.thresholds.DefaultConfidence,
	}

	switch {
	case top != nil:
		result.Category = core.CategoryProductive
		result.Subcategory = top.Subcategory
		result.Confidence = math.Min(c.thresholds.MaxConfidence,
			c.thresholds.BaseConfidence+c.catalog.ContextScore(in.lower, top.Set)/100)
		result.Reasoning = fmt.Sprintf("productive keywords: %s", scoreSummary(intents, scores))
	case st.any():
		result.Category = core.CategoryProductive
		result.Subcategory = st.subcategory()
		result.Reasoning = "structural signals"
	default:
		result.Subcategory = core.SubInformational
		result.Reasoning = "no actionable signals"
	}

	return result
}

func (c *Classifier) hasProductiveKeyword(lower string) bool {
	for _, intent := range c.catalog.ProductiveIntents() {
		if c.catalog.ContainsAny(lower, intent.Set) {
			return true
		}
	}
	return false
}

func (c *Classifier) countBigrams(f *core.NlpFeatures, set catalog.Set) int {
	n := 0
	for _, b := range c.catalog.Keywords(set) {
		if f.HasBigram(b) {
			n++
		}
	}
	return n
}

func (c *Classifier) detectTone(lower string) core.Tone {
	pos := c.catalog.Count(lower, catalog.SetTonePositive)
	neg := c.catalog.Count(lower, catalog.SetToneNegative)
	switch {
	case pos > neg:
		return core.TonePositive
	case neg > pos:
		return core.ToneNegative
	}
	return core.ToneNeutral
}

func (c *Classifier) detectUrgency(lower string) core.Urgency {
	if c.catalog.ContainsAny(lower, catalog.SetUrgencyHigh) {
		return core.UrgencyHigh
	}
	if c.catalog.ContainsAny(lower, catalog.SetUrgencyMedium) ||
		strings.Count(lower, "!") >= c.thresholds.UrgencyExclamations ||
		c.catalog.ContainsAny(lower, catalog.SetDeadline) {
		return core.UrgencyMedium
	}
	return core.UrgencyLow
}

// uppercaseRatio is upper-case letters over all letters
func uppercaseRatio(text string) float64 {
	letters, upper := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

func scoreSummary(intents []catalog.Intent, scores map[catalog.Set]int) string {
	parts := make([]string, 0, len(scores))
	for _, intent := range intents {
		if s, ok := scores[intent.Set]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", intent.Set, s))
		}
	}
	return strings.Join(parts, ", ")
}
