package filter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mikey/email-triage/internal/core"
)

var (
	htmlTagRe     = regexp.MustCompile(`(?s)<[^>]*>`)
	htmlSpaceRe   = regexp.MustCompile(`[ \t]+`)
	htmlNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// ParseMessage reads an RFC 5322 message and extracts the sender, subject,
// text body and attachment filenames. text/plain parts are preferred; a
// message with only text/html parts gets the tags stripped.
func ParseMessage(r io.Reader) (*core.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	email := &core.Email{Headers: make(map[string][]string)}

	fields := mr.Header.Fields()
	for fields.Next() {
		email.Headers[fields.Key()] = append(email.Headers[fields.Key()], fields.Value())
	}

	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	} else {
		email.Subject = mr.Header.Get("Subject")
	}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
		email.FromName = from[0].Name
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}

	var plain, html strings.Builder
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			// Keep whatever text was read before the broken part
			if plain.Len() > 0 || html.Len() > 0 {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			switch contentType {
			case "text/plain", "":
				if err := appendPart(&plain, p.Body); err != nil {
					return nil, err
				}
			case "text/html":
				if err := appendPart(&html, p.Body); err != nil {
					return nil, err
				}
			}
		case *mail.AttachmentHeader:
			if filename, err := h.Filename(); err == nil && filename != "" {
				email.Attachments = append(email.Attachments, filename)
			}
		}
	}

	switch {
	case plain.Len() > 0:
		email.Body = strings.TrimSpace(plain.String())
	case html.Len() > 0:
		email.Body = stripHTML(html.String())
	}

	return email, nil
}

func appendPart(b *strings.Builder, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read message part: %w", err)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.Write(data)
	return nil
}

func stripHTML(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n").Replace(s)
	s = htmlTagRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`).Replace(s)
	s = htmlSpaceRe.ReplaceAllString(s, " ")
	s = htmlNewlineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// AnalysisText is the text classified for a parsed message: the subject
// followed by the body
func AnalysisText(email *core.Email) string {
	subject := strings.TrimSpace(email.Subject)
	body := strings.TrimSpace(email.Body)
	if subject == "" {
		return body
	}
	if body == "" {
		return subject
	}
	return subject + "\n\n" + body
}
