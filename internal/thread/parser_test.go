package thread

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-triage/internal/core"
)

const headerThread = `From: ana@empresa.com
To: joao@empresa.com
Subject: Relatório mensal
Date: 01/03/2024

Segue o relatório.

De: joao@empresa.com
Assunto: Re: Relatório mensal

Obrigado, recebi.`

func TestParseByHeaders(t *testing.T) {
	segments := Parse(headerThread)
	require.Len(t, segments, 2)

	first := segments[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "ana@empresa.com", first.From)
	assert.Equal(t, "joao@empresa.com", first.To)
	assert.Equal(t, "Relatório mensal", first.Subject)
	assert.Equal(t, "01/03/2024", first.Date)
	assert.Equal(t, "Segue o relatório.", first.Body)
	assert.True(t, first.HeadersFound)
	assert.Equal(t, core.MethodHeader, first.Method)

	second := segments[1]
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "joao@empresa.com", second.From)
	assert.Equal(t, "Re: Relatório mensal", second.Subject)
	assert.Equal(t, "Obrigado, recebi.", second.Body)
}

func TestParseStrategies(t *testing.T) {
	blockA := "Esta é a primeira mensagem do fio, com conteúdo suficiente para contar."
	blockB := "Esta é a segunda mensagem do fio, também com conteúdo suficiente aqui."

	tests := []struct {
		name   string
		text   string
		count  int
		method string
	}{
		{"separator", "Primeira mensagem sobre o orçamento.\n---\nSegunda mensagem com a aprovação final.", 2, core.MethodSeparator},
		{"equals separator", "Primeira mensagem sobre o orçamento.\n=====\nSegunda mensagem com a aprovação final.", 2, core.MethodSeparator},
		{"blank lines", blockA + "\n\n\n" + blockB, 2, core.MethodBlankLine},
		{"single block", "  Apenas um email curto sem cabeçalhos.  ", 1, core.MethodSingleBlock},
		{"single header email", "From: a@b.com\nSubject: Oi\n\nCorpo do email aqui.", 1, core.MethodHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := Parse(tt.text)
			require.Len(t, segments, tt.count)
			for i, s := range segments {
				assert.Equal(t, i+1, s.Index)
				assert.Equal(t, tt.method, s.Method)
			}
		})
	}
}

func TestParseSingleBlockBody(t *testing.T) {
	segments := Parse("  Apenas um email curto sem cabeçalhos.  ")
	require.Len(t, segments, 1)
	assert.Equal(t, "Apenas um email curto sem cabeçalhos.", segments[0].Body)
	assert.False(t, segments[0].HeadersFound)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("  \n\t \r\n "))
}

func TestParseNonEmptyAlwaysYieldsSegment(t *testing.T) {
	for _, text := range []string{"x", "oi", "---", "From:", "\n\n\nalgo\n\n\n"} {
		assert.NotEmpty(t, Parse(text), "text %q", text)
	}
}

func TestSeparatorLinesAreNotContent(t *testing.T) {
	segments := splitBySeparators("---\nPrimeira mensagem longa\n---\nSegunda mensagem longa\n***")
	require.Len(t, segments, 2)
	for _, s := range segments {
		assert.NotContains(t, s.Body, "---")
		assert.NotContains(t, s.Body, "***")
	}
	assert.Equal(t, "Primeira mensagem longa", segments[0].Subject)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(Parse(headerThread))

	assert.Equal(t, 2, summary.TotalEmails)
	assert.True(t, summary.HasHeaders)
	assert.Equal(t, []string{core.MethodHeader}, summary.Methods)
	assert.Equal(t, []string{"Relatório mensal", "Re: Relatório mensal"}, summary.Subjects)
	assert.Equal(t, []string{"ana@empresa.com", "joao@empresa.com"}, summary.Senders)
	assert.Equal(t, "Segue o relatório....", summary.FirstPreview)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalEmails)
	assert.False(t, empty.HasHeaders)
	assert.Empty(t, empty.FirstPreview)
}

func TestSummarizeTruncatesPreview(t *testing.T) {
	summary := Summarize([]core.ThreadSegment{{Index: 1, Body: strings.Repeat("é", 150), Method: core.MethodSingleBlock}})
	assert.Equal(t, strings.Repeat("é", 100)+"...", summary.FirstPreview)
}

func TestFirstEmail(t *testing.T) {
	body, sender := FirstEmail(headerThread)
	assert.Equal(t, "Segue o relatório.", body)
	assert.Equal(t, "ana@empresa.com", sender)

	body, sender = FirstEmail("   ")
	assert.Empty(t, body)
	assert.Empty(t, sender)
}
