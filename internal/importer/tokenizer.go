package importer

import "strings"

// Tokenize splits raw CSV text into a rectangular grid of trimmed string
// cells. Double-quote characters toggle a quoted region in which commas are
// literal; escaped quotes are not supported. This is a pure lexical pass:
// it never fails and performs no header or type validation.
func Tokenize(raw string) [][]string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")

	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		grid = append(grid, tokenizeLine(line))
	}
	return grid
}

// tokenizeLine parses one CSV line into cells. An empty line yields a single
// empty cell.
func tokenizeLine(line string) []string {
	cells := make([]string, 0, 8)
	var cell strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}
