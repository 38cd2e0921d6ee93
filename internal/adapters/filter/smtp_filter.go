package filter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// SourceSMTP tags analytics records produced by the SMTP intake
const SourceSMTP = "smtp"

// Analyzer runs the full triage of one email
type Analyzer interface {
	Analyze(ctx context.Context, req *core.AnalysisRequest) (*core.EmailAnalysis, error)
}

// Options configures the SMTP intake
type Options struct {
	ListenAddress string
	Domain        string
	RejectSpam    bool
	RelayEnabled  bool
	// RelayAddress is the host:port of the next hop
	RelayAddress string
	Timeout      time.Duration
	Headers      config.HeaderNames
}

// SMTPFilter receives mail over SMTP, stamps the triage headers and relays
// the message to the next hop
type SMTPFilter struct {
	analyzer      Analyzer
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          Options
	server        *smtp.Server
	listener      net.Listener
}

// NewSMTPFilter creates a new SMTP intake filter
func NewSMTPFilter(analyzer Analyzer, textProcessor *utils.TextProcessor, logger *zap.Logger, opts Options) *SMTPFilter {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Domain == "" {
		opts.Domain = "localhost"
	}
	return &SMTPFilter{
		analyzer:      analyzer,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
	}
}

// Start binds the listen address and serves in the background
func (f *SMTPFilter) Start() error {
	l, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.opts.ListenAddress, err)
	}
	f.listener = l

	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Domain = f.opts.Domain
	f.server.ReadTimeout = f.opts.Timeout
	f.server.WriteTimeout = f.opts.Timeout
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("SMTP intake starting", zap.String("address", l.Addr().String()))

	go func() {
		if err := f.server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start
func (f *SMTPFilter) Addr() net.Addr {
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Stop stops the SMTP intake
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Process triages one raw message and returns it with the triage headers
// stamped. A spam message is refused with a 550 when rejection is enabled.
// Analysis failures pass the message through with an error header.
func (f *SMTPFilter) Process(ctx context.Context, sender string, recipients []string, raw []byte) ([]byte, error) {
	email, err := ParseMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}
	if email.From == "" {
		email.From = sender
	}

	text := f.textProcessor.SanitizeUTF8(AnalysisText(email))
	analysis, analysisErr := f.analyzer.Analyze(ctx, &core.AnalysisRequest{
		Text:        text,
		SenderEmail: email.From,
		SenderName:  email.FromName,
		Source:      SourceSMTP,
		Metadata: map[string]any{
			"envelope_sender": sender,
			"recipients":      len(recipients),
			"attachments":     email.Attachments,
		},
	})

	headers := f.opts.Headers
	stamps := map[string]string{}
	if analysisErr != nil {
		f.logger.Warn("Failed to analyze email, passing through",
			zap.String("sender", email.From),
			zap.Error(analysisErr))
		stamps["X-Email-Analysis-Error"] = analysisErr.Error()
	} else {
		result := analysis.Classification
		if result.Subcategory == core.SubSpam && f.opts.RejectSpam {
			f.logger.Info("Rejecting spam email",
				zap.String("sender", email.From),
				zap.Float64("confidence", result.Confidence),
				zap.String("reasoning", result.Reasoning))
			return nil, &smtp.SMTPError{
				Code:         550,
				EnhancedCode: smtp.EnhancedCode{5, 7, 1},
				Message:      fmt.Sprintf("Rejected as spam (confidence: %.2f)", result.Confidence),
			}
		}
		stamps[headers.Category] = string(result.Category)
		stamps[headers.Subcategory] = result.Subcategory
		stamps[headers.Tone] = string(result.Tone)
		stamps[headers.Urgency] = string(result.Urgency)
		stamps[headers.Confidence] = strconv.FormatFloat(result.Confidence, 'f', 2, 64)
	}

	return stampHeaders(raw, f.managedHeaders(), stamps)
}

// managedHeaders are removed from incoming mail so a sender cannot forge them
func (f *SMTPFilter) managedHeaders() []string {
	h := f.opts.Headers
	return []string{h.Category, h.Subcategory, h.Tone, h.Urgency, h.Confidence, "X-Email-Analysis-Error"}
}

// stampHeaders rewrites the header block of raw, leaving the body untouched
func stampHeaders(raw []byte, remove []string, stamps map[string]string) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	h, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	for _, name := range remove {
		if name != "" {
			h.Del(name)
		}
	}
	for name, value := range stamps {
		if name != "" {
			h.Add(name, value)
		}
	}

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, h); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	if _, err := io.Copy(&out, br); err != nil {
		return nil, fmt.Errorf("failed to copy message body: %w", err)
	}
	return out.Bytes(), nil
}

// relay sends the processed message to the next hop
func (f *SMTPFilter) relay(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", f.opts.RelayAddress, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(f.opts.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	filter *SMTPFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.filter.opts.Timeout)
	defer cancel()

	processed, err := s.filter.Process(ctx, s.sender, s.recipients, raw)
	if err != nil {
		return err
	}

	if !s.filter.opts.RelayEnabled {
		s.filter.logger.Warn("Relay disabled, message dropped after analysis", zap.String("sender", s.sender))
		return nil
	}
	if err := s.filter.relay(s.sender, s.recipients, processed); err != nil {
		s.filter.logger.Error("Failed to relay email", zap.String("sender", s.sender), zap.Error(err))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Relay unavailable, try again later",
		}
	}

	s.filter.logger.Info("Processed email",
		zap.String("sender", s.sender),
		zap.Int("recipients", len(s.recipients)))
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
