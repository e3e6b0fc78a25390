package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello   World ", "hello world"},
		{"Tab\tand\nnewline", "tab and newline"},
		{"ÁRBOL  Ñandú", "árbol ñandú"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestHashTestQuestion_IgnoresCaseAndWhitespace(t *testing.T) {
	a := HashTestQuestion("¿Cuál es la capital de España?", []string{"Madrid", "Sevilla", "Bilbao", "Valencia"})
	b := HashTestQuestion("  ¿cuál  es la CAPITAL de españa? ", []string{"madrid ", " SEVILLA", "Bilbao", "valencia"})

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashTestQuestion_OptionOrderMatters(t *testing.T) {
	a := HashTestQuestion("stem", []string{"a", "b", "c", "d"})
	b := HashTestQuestion("stem", []string{"b", "a", "c", "d"})

	assert.NotEqual(t, a, b)
}

func TestHash_FieldBoundaries(t *testing.T) {
	assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	assert.NotEqual(t, Hash("a"), Hash("a", ""))
}

func TestHashFlashcard(t *testing.T) {
	assert.Equal(t,
		HashFlashcard("Artículo 1", "España se constituye en un Estado social"),
		HashFlashcard("artículo  1", "españa se constituye en un estado social "),
	)
	assert.NotEqual(t, HashFlashcard("front", "back"), HashFlashcard("back", "front"))
}
