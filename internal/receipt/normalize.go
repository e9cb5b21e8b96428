package receipt

import "strings"

// CleanName turns a raw receipt item name into a display name: uppercase
// whitespace tokens, minus a leading store-brand prefix, with known
// abbreviations expanded and location/tender markers dropped. Returns "" when
// nothing survives cleaning; the result filter rejects those records.
func CleanName(raw string) string {
	tokens := strings.Fields(strings.ToUpper(raw))
	if len(tokens) > 0 {
		if _, ok := brandPrefixes[tokens[0]]; ok {
			tokens = tokens[1:]
		}
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if expanded, ok := abbreviations[tok]; ok {
			tok = expanded
		}
		if _, ok := noiseTokens[tok]; ok {
			continue
		}
		out = append(out, tok)
	}

	return strings.Join(out, " ")
}
