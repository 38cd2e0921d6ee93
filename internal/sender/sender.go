package sender

import (
	"strings"

	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

// Sender is the parsed origin of an email
type Sender struct {
	Email  string
	Name   string
	Domain string
}

// Parse reads an RFC 5322 address such as "Ana Souza <ana@empresa.com.br>".
// Input that does not parse as an address is kept as a bare email when it
// contains an @.
func Parse(from string) Sender {
	from = strings.TrimSpace(from)
	if from == "" {
		return Sender{}
	}

	if addr, err := mail.ParseAddress(from); err == nil {
		return Sender{
			Email:  strings.ToLower(addr.Address),
			Name:   addr.Name,
			Domain: Domain(addr.Address),
		}
	}

	if strings.Count(from, "@") == 1 && !strings.ContainsAny(from, " <>") {
		return Sender{Email: strings.ToLower(from), Domain: Domain(from)}
	}
	return Sender{Name: from}
}

// Domain returns the lowercase domain of an email address, or "" when there is none
func Domain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// DomainChecker reports whether senders belong to a configured set of domains
type DomainChecker struct {
	domains map[string]bool
	logger  *zap.Logger
}

// NewDomainChecker creates a checker for domains, compared case-insensitively
func NewDomainChecker(domains []string, logger *zap.Logger) *DomainChecker {
	normalized := make(map[string]bool, len(domains))
	list := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" || normalized[domain] {
			continue
		}
		normalized[domain] = true
		list = append(list, domain)
	}

	if len(list) > 0 && logger != nil {
		logger.Info("Initialized internal domain checker", zap.Strings("domains", list))
	}

	return &DomainChecker{
		domains: normalized,
		logger:  logger,
	}
}

// Contains reports whether the sender's domain is one of the configured domains
func (c *DomainChecker) Contains(s Sender) bool {
	if c == nil || len(c.domains) == 0 || s.Domain == "" {
		return false
	}
	if !c.domains[s.Domain] {
		return false
	}
	if c.logger != nil {
		c.logger.Debug("Sender domain is internal",
			zap.String("domain", s.Domain),
			zap.String("email", s.Email))
	}
	return true
}
