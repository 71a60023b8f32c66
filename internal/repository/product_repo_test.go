package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"cerveja": "%cerveja%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`c:\x`:    `%c:\\x%`,
	}
	for term, want := range cases {
		assert.Equal(t, want, containsPattern(term), term)
	}
}
