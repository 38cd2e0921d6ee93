package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

// Intent maps a productive keyword set to the subcategory it votes for
type Intent struct {
	Set         Set
	Subcategory string
}

// Options customizes the catalog built by New. Extra entries are appended
// to the built-in tables, keyed by set or group name.
type Options struct {
	ExtraKeywords map[string][]string
	ExtraPatterns map[string][]string
}

// Catalog is the read-only pattern catalog shared by every analyzer.
// It is safe for concurrent use.
type Catalog struct {
	keywords map[Set][]string
	patterns map[Group][]*regexp.Regexp
}

// New builds a catalog from the built-in tables plus opts, compiling every
// regex group. A malformed pattern or an unknown set name fails with
// core.ErrPatternConfig.
func New(opts Options) (*Catalog, error) {
	c := &Catalog{
		keywords: make(map[Set][]string, len(builtinKeywords)),
		patterns: make(map[Group][]*regexp.Regexp, len(builtinPatterns)),
	}

	for set, words := range builtinKeywords {
		c.keywords[set] = append([]string(nil), words...)
	}
	for name, words := range opts.ExtraKeywords {
		set := Set(name)
		if _, ok := c.keywords[set]; !ok {
			return nil, fmt.Errorf("%w: unknown keyword set %q", core.ErrPatternConfig, name)
		}
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				c.keywords[set] = append(c.keywords[set], w)
			}
		}
	}

	sources := make(map[Group][]string, len(builtinPatterns))
	for group, exprs := range builtinPatterns {
		sources[group] = append([]string(nil), exprs...)
	}
	for name, exprs := range opts.ExtraPatterns {
		group := Group(name)
		if _, ok := sources[group]; !ok {
			return nil, fmt.Errorf("%w: unknown pattern group %q", core.ErrPatternConfig, name)
		}
		sources[group] = append(sources[group], exprs...)
	}

	for group, exprs := range sources {
		compiled := make([]*regexp.Regexp, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("%w: group %s pattern %q: %v", core.ErrPatternConfig, group, expr, err)
			}
			compiled = append(compiled, re)
		}
		c.patterns[group] = compiled
	}

	return c, nil
}

// Keywords returns a copy of the named set
func (c *Catalog) Keywords(set Set) []string {
	return append([]string(nil), c.keywords[set]...)
}

// Matches returns the keywords of set contained in text, in table order
func (c *Catalog) Matches(text string, set Set) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range c.keywords[set] {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// Count returns how many keywords of set occur in text
func (c *Catalog) Count(text string, set Set) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range c.keywords[set] {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// ContainsAny reports whether any keyword of set occurs in text
func (c *Catalog) ContainsAny(text string, set Set) bool {
	lower := strings.ToLower(text)
	for _, kw := range c.keywords[set] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CheckRegexPatterns returns the number of patterns of group matching text
// and their source expressions
func (c *Catalog) CheckRegexPatterns(text string, group Group) (int, []string) {
	lower := strings.ToLower(text)
	var matched []string
	for _, re := range c.patterns[group] {
		if re.MatchString(lower) {
			matched = append(matched, re.String())
		}
	}
	return len(matched), matched
}

// IsGenuineCongratulation is true when a congratulation phrase appears
// together with professional context and without any strong spam phrase
func (c *Catalog) IsGenuineCongratulation(text string) bool {
	return c.ContainsAny(text, SetGenuineCongratulation) &&
		c.ContainsAny(text, SetProfessionalContext) &&
		!c.ContainsAny(text, SetSuspiciousSpam)
}

// HasSuspiciousSpamPatterns is true when at least two distinct strong spam
// phrases appear
func (c *Catalog) HasSuspiciousSpamPatterns(text string) bool {
	return c.Count(text, SetSuspiciousSpam) >= 2
}

// ContextScore is the keyword density of set in text: matches per word x 100
func (c *Catalog) ContextScore(text string, set Set) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return float64(c.Count(text, set)) / float64(words) * 100
}

// ProductiveIntents returns the productive sub-intents in declaration order
func (c *Catalog) ProductiveIntents() []Intent {
	return append([]Intent(nil), productiveOrder...)
}
