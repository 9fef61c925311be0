package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Heroes", "heroes"},
		{"My Deck", "my-deck"},
		{"Crème Brûlée", "creme-brulee"},
		{"Épée & Bouclier", "epee-bouclier"},
		{"  spaced   out  ", "spaced-out"},
		{"UPPER lower", "upper-lower"},
		{"100% Orcs!!!", "100-orcs"},
		{"---", ""},
		{"", ""},
		{"日本語", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateSlug(tc.input), "input %q", tc.input)
	}
}
