package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeQuotedComma(t *testing.T) {
	grid := Tokenize(`a,"b,c",d`)
	assert.Equal(t, [][]string{{"a", "b,c", "d"}}, grid)
}

func TestTokenizeRoundTrip(t *testing.T) {
	grid := [][]string{
		{"username", "name", "level"},
		{"jdoe", "John Doe", "7.4"},
		{"asmith", "Alice Smith", "12"},
	}

	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.Join(row, ",")
	}

	assert.Equal(t, grid, Tokenize(strings.Join(lines, "\n")))
}

func TestTokenizeEmptyLine(t *testing.T) {
	grid := Tokenize("")
	assert.Equal(t, [][]string{{""}}, grid)
}

func TestTokenizeTrimsCells(t *testing.T) {
	grid := Tokenize("  a , b ,c  ")
	assert.Equal(t, [][]string{{"a", "b", "c"}}, grid)
}

func TestTokenizeCRLF(t *testing.T) {
	grid := Tokenize("a,b\r\nc,d")
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, grid)
}
