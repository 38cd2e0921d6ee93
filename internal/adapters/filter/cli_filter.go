package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// SourceCLI tags analytics records produced by the command-line tool
const SourceCLI = "cli"

// CLIFilter triages a single email from the command line and prints the report
type CLIFilter struct {
	analyzer   Analyzer
	logger     *zap.Logger
	out        io.Writer
	jsonOutput bool
	verbose    bool
}

// NewCLIFilter creates a new CLI filter writing its report to out
func NewCLIFilter(analyzer Analyzer, logger *zap.Logger, out io.Writer, jsonOutput, verbose bool) *CLIFilter {
	return &CLIFilter{
		analyzer:   analyzer,
		logger:     logger,
		out:        out,
		jsonOutput: jsonOutput,
		verbose:    verbose,
	}
}

// ProcessMessage parses an RFC 5322 message and triages it
func (f *CLIFilter) ProcessMessage(ctx context.Context, r io.Reader) (*core.EmailAnalysis, error) {
	email, err := ParseMessage(r)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Parsed message",
		zap.String("sender", email.From),
		zap.String("subject", email.Subject),
		zap.Strings("attachments", email.Attachments))
	return f.process(ctx, AnalysisText(email), email.From, email.FromName)
}

// ProcessText triages plain email text
func (f *CLIFilter) ProcessText(ctx context.Context, text, sender string) (*core.EmailAnalysis, error) {
	return f.process(ctx, text, sender, "")
}

func (f *CLIFilter) process(ctx context.Context, text, sender, senderName string) (*core.EmailAnalysis, error) {
	analysis, err := f.analyzer.Analyze(ctx, &core.AnalysisRequest{
		Text:        text,
		SenderEmail: sender,
		SenderName:  senderName,
		Source:      SourceCLI,
	})
	if err != nil {
		f.logger.Debug("Failed to analyze email", zap.Error(err))
		return nil, err
	}

	if f.jsonOutput {
		return analysis, WriteJSON(f.out, analysis)
	}
	f.printText(text, sender, analysis)
	return analysis, nil
}

func (f *CLIFilter) printText(text, sender string, a *core.EmailAnalysis) {
	r := a.Classification

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	if sender != "" {
		fmt.Fprintf(f.out, "From: %s\n", sender)
	}
	fmt.Fprintf(f.out, "Words: %d\n", a.WordCount)
	fmt.Fprintf(f.out, "Characters: %d\n", a.CharCount)
	if f.verbose {
		fmt.Fprintf(f.out, "\nPreview:\n%s\n", utils.Preview(text, 500))
	}

	fmt.Fprintf(f.out, "\n=== Classification ===\n")
	fmt.Fprintf(f.out, "Category: %s\n", r.Category)
	fmt.Fprintf(f.out, "Subcategory: %s\n", r.Subcategory)
	fmt.Fprintf(f.out, "Tone: %s\n", r.Tone)
	fmt.Fprintf(f.out, "Urgency: %s\n", r.Urgency)
	fmt.Fprintf(f.out, "Confidence: %.2f\n", r.Confidence)
	fmt.Fprintf(f.out, "Reasoning: %s\n", r.Reasoning)
	if r.AIFallbackUsed {
		fmt.Fprintf(f.out, "AI model: %s\n", r.ModelUsed)
	}
	if a.FromCache {
		fmt.Fprintf(f.out, "Served from cache\n")
	}

	if a.Attachments.HasMentions {
		fmt.Fprintf(f.out, "\n=== Attachments ===\n")
		fmt.Fprintf(f.out, "Risk: %s (%d)\n", a.Attachments.RiskLevel, a.Attachments.RiskScore)
		fmt.Fprintf(f.out, "Score: %d\n", a.Attachments.Score)
		for _, m := range a.Attachments.Mentions {
			fmt.Fprintf(f.out, "- %s\n", m)
		}
	}

	fmt.Fprintf(f.out, "\n=== Suggested Response (%s) ===\n", a.ResponseType)
	fmt.Fprintf(f.out, "%s\n", a.SuggestedResponse)
	fmt.Fprintf(f.out, "\nProcessing time: %dms\n", a.ProcessingTimeMs)
}

// WriteJSON writes v as indented JSON followed by a newline
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
