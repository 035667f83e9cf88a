package analysis

import "strings"

// Tokenize splits already-normalized text on whitespace. No empty
// tokens are produced.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// NGrams normalizes the text and returns the set of space-joined token
// windows of size n. Duplicate windows collapse. Fewer than n tokens
// yields an empty set.
func NGrams(text string, n int) map[string]struct{} {
	tokens := Tokenize(Normalize(text))
	set := make(map[string]struct{})
	if n <= 0 || len(tokens) < n {
		return set
	}
	for i := 0; i+n <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return set
}
