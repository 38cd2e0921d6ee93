package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/batch"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/summarizer"
	"github.com/mikey/email-triage/internal/thread"
)

// app runs one CLI mode against its injected collaborators
type app struct {
	flags      *di.CLIFlags
	logger     *zap.Logger
	service    *core.TriageService
	processor  *batch.Processor
	summarizer *summarizer.Summarizer
	in         io.Reader
	out        io.Writer
	progress   io.Writer
}

func (a *app) run(ctx context.Context) error {
	switch a.flags.Mode {
	case di.ModeBatch:
		return a.runBatch(ctx)
	case di.ModeThread:
		return a.runThread(ctx)
	case di.ModeSummary:
		return a.runSummary()
	default:
		return a.runClassify(ctx)
	}
}

func (a *app) cliFilter() *filter.CLIFilter {
	return filter.NewCLIFilter(a.service, a.logger, a.out, a.flags.JSONOutput, a.flags.Verbose)
}

func (a *app) readInput() ([]byte, error) {
	if a.flags.InputFile == "" {
		a.logger.Debug("Reading input from stdin")
		return io.ReadAll(a.in)
	}
	data, err := os.ReadFile(a.flags.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func (a *app) runClassify(ctx context.Context) error {
	data, err := a.readInput()
	if err != nil {
		return err
	}
	if a.flags.Message {
		_, err = a.cliFilter().ProcessMessage(ctx, bytes.NewReader(data))
		return err
	}
	_, err = a.cliFilter().ProcessText(ctx, string(data), a.flags.Sender)
	return err
}

type threadOutput struct {
	Summary  core.ThreadSummary   `json:"thread"`
	Segments []core.ThreadSegment `json:"segments"`
	Analysis *core.EmailAnalysis  `json:"first_email_analysis"`
}

// runThread splits a thread and triages its first email
func (a *app) runThread(ctx context.Context) error {
	data, err := a.readInput()
	if err != nil {
		return err
	}
	text := string(data)

	segments := thread.Parse(text)
	summary := thread.Summarize(segments)
	body, sender := thread.FirstEmail(text)
	if sender == "" {
		sender = a.flags.Sender
	}

	if a.flags.JSONOutput {
		analysis, err := a.service.Analyze(ctx, &core.AnalysisRequest{
			Text:        body,
			SenderEmail: sender,
			Source:      filter.SourceCLI,
			Metadata:    map[string]any{"thread_emails": summary.TotalEmails},
		})
		if err != nil {
			return err
		}
		return filter.WriteJSON(a.out, threadOutput{Summary: summary, Segments: segments, Analysis: analysis})
	}

	fmt.Fprintf(a.out, "=== Thread ===\n")
	fmt.Fprintf(a.out, "Emails: %d\n", summary.TotalEmails)
	fmt.Fprintf(a.out, "Methods: %s\n", strings.Join(summary.Methods, ", "))
	if len(summary.Senders) > 0 {
		fmt.Fprintf(a.out, "Senders: %s\n", strings.Join(summary.Senders, ", "))
	}
	if len(summary.Subjects) > 0 {
		fmt.Fprintf(a.out, "Subjects: %s\n", strings.Join(summary.Subjects, " | "))
	}
	for _, s := range segments {
		fmt.Fprintf(a.out, "[%d] %s %s\n", s.Index, s.Method, firstLine(s.Body))
	}

	_, err = a.cliFilter().ProcessText(ctx, body, sender)
	return err
}

func (a *app) runSummary() error {
	data, err := a.readInput()
	if err != nil {
		return err
	}

	result := a.summarizer.Summarize(string(data), summarizer.ClampMaxSentences(a.flags.Sentences))
	if a.flags.JSONOutput {
		return filter.WriteJSON(a.out, result)
	}

	fmt.Fprintf(a.out, "=== Summary ===\n")
	for _, s := range result.Sentences {
		fmt.Fprintf(a.out, "%s\n", s)
	}
	if len(result.KeyPoints) > 0 {
		fmt.Fprintf(a.out, "\nKey points:\n")
		for _, p := range result.KeyPoints {
			fmt.Fprintf(a.out, "- %s\n", p)
		}
	}
	fmt.Fprintf(a.out, "\nWords: %d -> %d (%.1f%% reduction)\n",
		result.OriginalWordCount, result.SummaryWordCount, result.WordReductionPercent)
	fmt.Fprintf(a.out, "Relevance: %.2f\n", result.RelevanceScore)
	fmt.Fprintf(a.out, "Sentiment: %s, complexity: %s\n", result.Context.PrimarySentiment, result.Context.Complexity)
	if result.Context.ActionRequired {
		fmt.Fprintf(a.out, "Action required\n")
	}
	if result.Context.HasDeadline {
		fmt.Fprintf(a.out, "Has deadline\n")
	}
	return nil
}

// runBatch streams a batch file through the processor. JSON output is one
// event per line.
func (a *app) runBatch(ctx context.Context) error {
	emails, err := a.readBatch()
	if err != nil {
		return err
	}
	if err := batch.Validate(emails); err != nil {
		return err
	}

	for event := range a.processor.Process(ctx, emails) {
		if a.flags.JSONOutput {
			if err := filter.WriteJSON(a.out, event); err != nil {
				return err
			}
			continue
		}
		a.printEvent(event)
	}
	return nil
}

func (a *app) readBatch() ([]string, error) {
	if a.flags.InputFile == "" {
		data, err := io.ReadAll(io.LimitReader(a.in, batch.MaxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		name := "stdin.txt"
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
			name = "stdin.json"
		}
		return batch.ReadFile(bytes.NewReader(data), int64(len(data)), name)
	}

	f, err := os.Open(a.flags.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat batch file: %w", err)
	}
	return batch.ReadFile(f, info.Size(), filepath.Base(a.flags.InputFile))
}

func (a *app) printEvent(event batch.Event) {
	switch event.Type {
	case batch.EventProgress:
		fmt.Fprintf(a.progress, "\r%d/%d (%.1f%%)", event.Processed, event.Total, event.Percentage)
	case batch.EventChunkComplete:
		fmt.Fprintf(a.progress, "\n")
		for _, r := range event.Results {
			if r.Status != batch.StatusSuccess {
				fmt.Fprintf(a.out, "#%d error: %s\n", r.EmailID, r.Error)
				continue
			}
			c := r.Analysis.Classification
			fmt.Fprintf(a.out, "#%d %s/%s %s %s %.2f  %s\n",
				r.EmailID, c.Category, c.Subcategory, c.Tone, c.Urgency, c.Confidence, r.Preview)
		}
	case batch.EventComplete:
		fmt.Fprintf(a.out, "\nBatch %s: %d processed, %d successful, %d failed\n",
			event.BatchID, event.Processed, event.Successful, event.Failed)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(line); len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return line
}
