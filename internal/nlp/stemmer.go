package nlp

import (
	"unicode/utf8"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/portuguese"
)

// Stem reduces a Portuguese token to its Snowball root. Tokens of three
// runes or fewer are returned unchanged.
func Stem(word string) string {
	if utf8.RuneCountInString(word) <= 3 {
		return word
	}
	env := snowballstem.NewEnv(word)
	portuguese.Stem(env)
	return env.Current()
}
