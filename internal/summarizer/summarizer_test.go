package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	s1 = "Bom dia equipe, escrevo para atualizar todos sobre o andamento geral do projeto."
	s2 = "Na semana passada tivemos algumas conversas informais sobre o novo layout do escritório."
	s3 = "Preciso que vocês enviem o relatório financeiro completo até 15/03 sem falta por favor."
	s4 = "O café da cozinha também foi trocado por uma marca diferente e mais barata."
	s5 = "Qualquer dúvida podem me procurar diretamente na minha sala durante a tarde de hoje."
)

func newSummarizer(t *testing.T) *Summarizer {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestSummarizeSelectsInSourceOrder(t *testing.T) {
	text := strings.Join([]string{s1, s2, s3, s4, s5}, " ")

	result := newSummarizer(t).Summarize(text, 2)

	assert.Equal(t, []string{s1, s3}, result.Sentences)
	assert.Equal(t, 68, result.OriginalWordCount)
	assert.Equal(t, 27, result.SummaryWordCount)
	assert.InDelta(t, 60.3, result.WordReductionPercent, 1e-9)
	assert.Greater(t, result.RelevanceScore, 0.5)
	assert.LessOrEqual(t, result.RelevanceScore, 1.0)

	assert.Equal(t, []string{
		"Preciso que vocês enviem o relatório financeiro completo até 15",
		"Relatório financeiro completo até 15",
		"Andamento geral do projeto",
	}, result.KeyPoints)

	assert.Equal(t, []string{"request"}, result.Context.CommunicationTypes)
	assert.Equal(t, "neutral", result.Context.PrimarySentiment)
	assert.Equal(t, "medium", result.Context.Complexity)
	assert.True(t, result.Context.ActionRequired)
	assert.True(t, result.Context.HasDeadline)
}

func TestSummarizeInvariants(t *testing.T) {
	text := strings.Join([]string{s1, s2, s3, s4, s5}, " ")
	s := newSummarizer(t)

	for max := 1; max <= 4; max++ {
		result := s.Summarize(text, max)

		require.LessOrEqual(t, len(result.Sentences), max)
		assert.GreaterOrEqual(t, result.WordReductionPercent, 0.0)
		assert.LessOrEqual(t, len(result.KeyPoints), maxKeyPoints)

		last := -1
		for _, sentence := range result.Sentences {
			pos := strings.Index(text, sentence)
			require.GreaterOrEqual(t, pos, 0)
			assert.Greater(t, pos, last, "source order for max %d", max)
			last = pos
		}
	}
}

func TestSummarizeShortInputs(t *testing.T) {
	s := newSummarizer(t)

	empty := s.Summarize("   ", 3)
	assert.Empty(t, empty.Sentences)
	assert.Empty(t, empty.KeyPoints)

	short := s.Summarize(" Reunião amanhã às 10h. ", 3)
	assert.Equal(t, []string{"Reunião amanhã às 10h."}, short.Sentences)
	assert.Zero(t, short.RelevanceScore)
}

func TestSummarizeAsIs(t *testing.T) {
	result := newSummarizer(t).Summarize(s1+" "+s3, 3)

	assert.Equal(t, []string{s1, s3}, result.Sentences)
	assert.Equal(t, asIsRelevance, result.RelevanceScore)
	assert.Zero(t, result.WordReductionPercent)
}

func TestSplitSentencesKeepsAbbreviations(t *testing.T) {
	text := "Reunião com o diretor J. Silva sobre o orçamento anual da empresa amanhã cedo."
	assert.Equal(t, []string{text}, splitSentences(text))
}

func TestSplitSentencesDropsIneligible(t *testing.T) {
	sentences := splitSentences("Curta demais aqui. " + s1)
	assert.Equal(t, []string{s1}, sentences)
}

func TestClampMaxSentences(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 3}, {-2, 3}, {1, 1}, {7, 7}, {10, 10}, {42, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampMaxSentences(tt.in), "input %d", tt.in)
	}
}
