package receipt

import "strings"

// Line is one trimmed receipt line with its position in the source text.
type Line struct {
	Index int
	Text  string
}

// SplitLines breaks raw text into trimmed lines. Empty lines are kept in the
// index space so that the matcher's next-line lookahead stays positionally
// correct; downstream consumers treat them as non-matching.
func SplitLines(text string) []Line {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	parts := strings.Split(text, "\n")
	out := make([]Line, 0, len(parts))
	for i, p := range parts {
		out = append(out, Line{Index: i, Text: strings.TrimSpace(p)})
	}
	return out
}
