package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{"no limit", "olá mundo", 0, "olá mundo"},
		{"within limit", "olá mundo", 100, "olá mundo"},
		{"ascii cut", "abcdefgh", 4, "abcd" + TruncationMarker},
		// "olá" is 4 bytes, cutting at 3 would split the accented rune
		{"multi-byte cut", "olá", 3, "ol" + TruncationMarker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tp.TruncateText(tt.text, tt.maxSize)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(nil)

	assert.Equal(t, "ação", tp.SanitizeUTF8("ação"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(nil)

	got := tp.ProcessText("a\xff"+strings.Repeat("b", 10), 5)
	assert.Equal(t, "abbbb"+TruncationMarker, got)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "curto", Preview("  curto  ", 10))
	assert.Equal(t, "uma linha", Preview("uma\n\nlinha", 20))
	assert.Equal(t, "ação...", Preview("ação rápida", 4))
	assert.Equal(t, "sem limite", Preview("sem limite", 0))
}
