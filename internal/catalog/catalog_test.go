package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-triage/internal/core"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(Options{})
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"malformed regex", Options{ExtraPatterns: map[string][]string{"spam_strong": {"(unclosed"}}}},
		{"unknown group", Options{ExtraPatterns: map[string][]string{"nope": {"a"}}}},
		{"unknown set", Options{ExtraKeywords: map[string][]string{"nope": {"a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			assert.ErrorIs(t, err, core.ErrPatternConfig)
		})
	}
}

func TestExtraKeywordsAreAppended(t *testing.T) {
	c, err := New(Options{ExtraKeywords: map[string][]string{"marketing": {"  Saldão "}}})
	require.NoError(t, err)

	assert.Contains(t, c.Keywords(SetMarketing), "saldão")
	assert.True(t, c.ContainsAny("Grande SALDÃO de inverno", SetMarketing))

	// the built-in table is untouched
	assert.NotContains(t, newCatalog(t).Keywords(SetMarketing), "saldão")
}

func TestCheckRegexPatterns(t *testing.T) {
	c := newCatalog(t)

	tests := []struct {
		name  string
		text  string
		group Group
		want  int
	}{
		{"spam strong", "GANHE MILHÕES! Clique aqui agora! Oferta limitada!!! $$$", GroupSpamStrong, 4},
		{"work context", "A reunião do projeto com o cliente foi ótima", GroupWorkContext, 3},
		{"marketing strong", "50% de desconto! Compre já com frete grátis", GroupMarketingStrong, 3},
		{"marketing negative", "Tive um problema com o pedido", GroupMarketingNegative, 1},
		{"entertainment", "Vamos assistir o filme na netflix?", GroupEntertainmentStrong, 2},
		{"no match", "Bom dia", GroupSpamStrong, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, matched := c.CheckRegexPatterns(tt.text, tt.group)
			assert.Equal(t, tt.want, count)
			assert.Len(t, matched, tt.want)
		})
	}
}

func TestIsGenuineCongratulation(t *testing.T) {
	c := newCatalog(t)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"project praise", "Parabéns pelo sucesso do projeto! Ficamos orgulhosos da equipe.", true},
		{"no professional context", "Parabéns pelo aniversário!", false},
		{"spam phrasing", "Parabéns pelo resultado! Você foi sorteado, clique aqui", false},
		{"no congratulation", "O projeto foi entregue", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsGenuineCongratulation(tt.text))
		})
	}
}

func TestHasSuspiciousSpamPatterns(t *testing.T) {
	c := newCatalog(t)

	assert.True(t, c.HasSuspiciousSpamPatterns("Você foi sorteado! Clique aqui para resgatar prêmio"))
	assert.False(t, c.HasSuspiciousSpamPatterns("Clique aqui para ver a agenda"))
}

func TestContextScore(t *testing.T) {
	c := newCatalog(t)

	assert.InDelta(t, 200.0/3, c.ContextScore("erro no login", SetTechnicalSupport), 0.01)
	assert.Zero(t, c.ContextScore("", SetTechnicalSupport))
	assert.Zero(t, c.ContextScore("bom dia", SetTechnicalSupport))
}

func TestProductiveIntentsOrder(t *testing.T) {
	intents := newCatalog(t).ProductiveIntents()
	require.Len(t, intents, 7)
	assert.Equal(t, core.SubUrgent, intents[0].Subcategory)
	assert.Equal(t, core.SubWorkCommunication, intents[6].Subcategory)

	for _, in := range intents {
		assert.True(t, core.ValidSubcategory(core.CategoryProductive, in.Subcategory))
	}
}
