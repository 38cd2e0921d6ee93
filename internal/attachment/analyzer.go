package attachment

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/core"
)

const (
	maxMentions       = 3
	minSentenceLength = 15
	overlapWindow     = 20
)

var (
	spacePattern    = regexp.MustCompile(`\s+`)
	sentencePattern = regexp.MustCompile(`[^.!?]+`)
)

type suspiciousPattern struct {
	phrase string
	re     *regexp.Regexp
}

// Analyzer detects attachment mentions and scores their security risk
type Analyzer struct {
	mentions   []*regexp.Regexp
	suspicious []suspiciousPattern
}

// New compiles the attachment patterns
func New() (*Analyzer, error) {
	a := &Analyzer{}
	for _, expr := range mentionExprs {
		re, err := regexp.Compile(`(?i)` + expr)
		if err != nil {
			return nil, fmt.Errorf("%w: mention pattern %q: %v", core.ErrPatternConfig, expr, err)
		}
		a.mentions = append(a.mentions, re)
	}
	for _, p := range suspiciousPatterns {
		re, err := regexp.Compile(`(?i)` + p.expr)
		if err != nil {
			return nil, fmt.Errorf("%w: suspicious pattern %q: %v", core.ErrPatternConfig, p.expr, err)
		}
		a.suspicious = append(a.suspicious, suspiciousPattern{phrase: p.phrase, re: re})
	}
	return a, nil
}

// Analyze returns the attachment analysis of text
func (a *Analyzer) Analyze(text string) core.AttachmentAnalysis {
	cleaned := spacePattern.ReplaceAllString(strings.TrimSpace(text), " ")
	lower := strings.ToLower(cleaned)

	mentions := a.detectMentions(cleaned)
	riskScore, flags := a.analyzeSecurity(cleaned, lower)
	level := riskLevel(riskScore)

	return core.AttachmentAnalysis{
		HasMentions: len(mentions) > 0,
		Mentions:    mentions,
		RiskLevel:   level,
		RiskScore:   riskScore,
		RiskFlags:   flags,
		Score:       score(mentions, level),
		Context:     a.analyzeContext(cleaned, lower),
	}
}

func (a *Analyzer) detectMentions(cleaned string) []string {
	spans := sentencePattern.FindAllStringIndex(cleaned, -1)

	var (
		candidates []string
		seen       = make(map[string]struct{})
		processed  []int
	)

	for _, re := range a.mentions {
		for _, loc := range re.FindAllStringIndex(cleaned, -1) {
			start := loc[0]
			if nearAny(processed, start) {
				continue
			}

			sentence := containingSentence(cleaned, spans, start)
			if utf8.RuneCountInString(sentence) < minSentenceLength {
				continue
			}

			processed = append(processed, start)
			if _, dup := seen[sentence]; !dup {
				seen[sentence] = struct{}{}
				candidates = append(candidates, sentence)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})

	var mentions []string
	for _, m := range candidates {
		lm := strings.ToLower(m)
		contained := false
		for _, kept := range mentions {
			if strings.Contains(strings.ToLower(kept), lm) {
				contained = true
				break
			}
		}
		if !contained {
			mentions = append(mentions, m)
		}
	}

	if len(mentions) > maxMentions {
		mentions = mentions[:maxMentions]
	}
	return mentions
}

func nearAny(positions []int, pos int) bool {
	for _, p := range positions {
		if d := p - pos; d < overlapWindow && d > -overlapWindow {
			return true
		}
	}
	return false
}

func containingSentence(text string, spans [][]int, pos int) string {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return strings.TrimSpace(text[s[0]:s[1]])
		}
	}
	return ""
}

func (a *Analyzer) analyzeSecurity(cleaned, lower string) (int, []string) {
	var flags []string
	for _, p := range a.suspicious {
		if p.re.MatchString(cleaned) {
			flags = append(flags, p.phrase)
		}
	}
	risk := 15 * len(flags)

	for _, ext := range executableExtensions {
		if strings.Contains(lower, ext) {
			risk += 25
			flags = append(flags, executableFlag)
			break
		}
	}

	return risk, flags
}

func riskLevel(score int) core.RiskLevel {
	switch {
	case score >= 40:
		return core.RiskHigh
	case score >= 25:
		return core.RiskMedium
	case score >= 10:
		return core.RiskLow
	}
	return core.RiskSafe
}

var riskPenalty = map[core.RiskLevel]int{
	core.RiskHigh:   -20,
	core.RiskMedium: -10,
	core.RiskLow:    -5,
}

func score(mentions []string, level core.RiskLevel) int {
	if len(mentions) == 0 {
		return 0
	}

	total := 20 * len(mentions)
	for _, m := range mentions {
		switch words := len(strings.Fields(m)); {
		case words > 8:
			total += 15
		case words > 5:
			total += 10
		}
		if containsAny(strings.ToLower(m), professionalKeywords) {
			total += 12
		}
	}

	if containsAny(strings.ToLower(strings.Join(mentions, " ")), professionalContexts) {
		total += 18
	}
	total += riskPenalty[level]

	return min(100, max(15, total))
}

func (a *Analyzer) analyzeContext(cleaned, lower string) core.AttachmentContext {
	ctx := core.AttachmentContext{
		Contexts:     matchingGroups(lower, contextGroups),
		UrgencyLevel: "none",
		Purposes:     matchingGroups(lower, purposeGroups),
		EmailLength:  len(strings.Fields(cleaned)),
	}

	for _, g := range urgencyGroups {
		if containsAny(lower, g.keywords) {
			ctx.UrgencyLevel = g.name
			ctx.HasUrgency = true
			break
		}
	}

	if ctx.EmailLength > 0 {
		hits := 0
		for _, re := range a.mentions {
			if re.MatchString(cleaned) {
				hits++
			}
		}
		ctx.MentionDensity = float64(hits) / float64(ctx.EmailLength) * 100
	}

	ctx.ContextScore = len(ctx.Contexts) + len(ctx.Purposes)
	return ctx
}

func matchingGroups(lower string, groups []keywordGroup) []string {
	var names []string
	for _, g := range groups {
		if containsAny(lower, g.keywords) {
			names = append(names, g.name)
		}
	}
	return names
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
