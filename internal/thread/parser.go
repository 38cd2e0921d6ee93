package thread

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/core"
)

const (
	minSeparatorBlock = 10
	minBlankLineBlock = 50
	previewLength     = 100
)

var (
	fromHeader    = regexp.MustCompile(`(?i)^(?:from|de|remetente|sender):\s*(.+)$`)
	toHeader      = regexp.MustCompile(`(?i)^(?:to|para|destinatário|recipient):\s*(.+)$`)
	subjectHeader = regexp.MustCompile(`(?i)^(?:subject|assunto|título):\s*(.+)$`)
	dateHeader    = regexp.MustCompile(`(?i)^(?:date|data|enviado em|sent):\s*(.+)$`)

	separatorLine  = regexp.MustCompile(`^(?:-{3,}|={3,}|\*{3,}|_{3,}|#{3,})$`)
	blankLineSplit = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Parse splits text into the emails it contains. Strategies are tried in
// order and the first producing more than one segment wins. Empty input
// yields no segments, anything else at least one.
func Parse(text string) []core.ThreadSegment {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	byHeaders := splitByHeaders(text)
	if len(byHeaders) > 1 {
		return byHeaders
	}
	if segments := splitBySeparators(text); len(segments) > 1 {
		return segments
	}
	if segments := splitByBlankLines(text); len(segments) > 1 {
		return segments
	}
	if len(byHeaders) == 1 {
		return byHeaders
	}

	return []core.ThreadSegment{{
		Index:  1,
		Body:   strings.TrimSpace(text),
		Method: core.MethodSingleBlock,
	}}
}

func headerValue(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func splitByHeaders(text string) []core.ThreadSegment {
	var (
		segments  []core.ThreadSegment
		current   *core.ThreadSegment
		body      []string
		inHeaders bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		segments = append(segments, *current)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if from, ok := headerValue(fromHeader, trimmed); ok {
			flush()
			current = &core.ThreadSegment{
				Index:        len(segments) + 1,
				From:         from,
				HeadersFound: true,
				Method:       core.MethodHeader,
			}
			body = nil
			inHeaders = true
			continue
		}

		if current == nil {
			continue
		}

		if inHeaders {
			if v, ok := headerValue(toHeader, trimmed); ok {
				current.To = v
				continue
			}
			if v, ok := headerValue(subjectHeader, trimmed); ok {
				current.Subject = v
				continue
			}
			if v, ok := headerValue(dateHeader, trimmed); ok {
				current.Date = v
				continue
			}
			inHeaders = false
			if trimmed == "" {
				continue
			}
		}

		body = append(body, line)
	}
	flush()

	return segments
}

func splitBySeparators(text string) []core.ThreadSegment {
	var (
		segments []core.ThreadSegment
		block    []string
	)

	flush := func() {
		content := strings.TrimSpace(strings.Join(block, "\n"))
		block = nil
		if utf8.RuneCountInString(content) <= minSeparatorBlock {
			return
		}
		segments = append(segments, blockSegment(len(segments)+1, content, core.MethodSeparator))
	}

	for _, line := range strings.Split(text, "\n") {
		if separatorLine.MatchString(strings.TrimSpace(line)) {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return segments
}

func splitByBlankLines(text string) []core.ThreadSegment {
	var segments []core.ThreadSegment
	for _, block := range blankLineSplit.Split(text, -1) {
		block = strings.TrimSpace(block)
		if utf8.RuneCountInString(block) <= minBlankLineBlock {
			continue
		}
		segments = append(segments, blockSegment(len(segments)+1, block, core.MethodBlankLine))
	}
	return segments
}

func blockSegment(index int, body, method string) core.ThreadSegment {
	return core.ThreadSegment{
		Index:   index,
		From:    scrapeFrom(body),
		Subject: scrapeSubject(body),
		Body:    body,
		Method:  method,
	}
}

func firstLines(body string, n int) []string {
	lines := strings.SplitN(body, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}

func scrapeFrom(body string) string {
	for _, line := range firstLines(body, 5) {
		if v, ok := headerValue(fromHeader, strings.TrimSpace(line)); ok {
			return v
		}
	}
	return ""
}

// scrapeSubject prefers a subject header, else the first plausible title line
func scrapeSubject(body string) string {
	lines := firstLines(body, 10)
	for _, line := range lines {
		if v, ok := headerValue(subjectHeader, strings.TrimSpace(line)); ok {
			return v
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n > 5 && n < 100 {
			return line
		}
	}
	return ""
}

// Summarize reports what a parse produced
func Summarize(segments []core.ThreadSegment) core.ThreadSummary {
	summary := core.ThreadSummary{
		TotalEmails: len(segments),
		Methods:     []string{},
		Subjects:    []string{},
		Senders:     []string{},
	}
	if len(segments) == 0 {
		return summary
	}

	seen := make(map[string]bool)
	for _, s := range segments {
		summary.HasHeaders = summary.HasHeaders || s.HeadersFound
		if !seen[s.Method] {
			seen[s.Method] = true
			summary.Methods = append(summary.Methods, s.Method)
		}
		if s.Subject != "" {
			summary.Subjects = append(summary.Subjects, s.Subject)
		}
		if s.From != "" {
			summary.Senders = append(summary.Senders, s.From)
		}
	}

	if body := segments[0].Body; body != "" {
		if utf8.RuneCountInString(body) > previewLength {
			body = string([]rune(body)[:previewLength])
		}
		summary.FirstPreview = body + "..."
	}

	return summary
}

// FirstEmail returns the body and sender of the first email in text
func FirstEmail(text string) (body, sender string) {
	segments := Parse(text)
	if len(segments) == 0 {
		return strings.TrimSpace(text), ""
	}
	return segments[0].Body, segments[0].From
}
