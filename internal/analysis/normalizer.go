package analysis

import (
	"strings"
	"unicode"
)

// Keywords that open a reference list. Only an occurrence past
// bibliographyTailFraction of the document is trusted, so a body
// paragraph that merely mentions "references" does not truncate it.
var bibliographyMarkers = []string{
	"tài liệu tham khảo",
	"danh mục tài liệu tham khảo",
	"references",
	"bibliography",
	"works cited",
}

const bibliographyTailFraction = 0.70 // markers must sit past this offset ratio

// Normalize lowercases the text, replaces every rune that is not a
// Unicode letter or digit with a space, and collapses whitespace runs.
// Empty or all-punctuation input yields the empty string.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	prevSpace := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			sb.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			sb.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// StripBibliography truncates the text at the last bibliography marker
// found in the final 30% of the document. Reference lists repeat titles
// verbatim and inflate false-positive matches, so they are cut before
// scoring. Returns the input unchanged when no marker qualifies.
func StripBibliography(text string) string {
	if text == "" {
		return text
	}
	lower := strings.ToLower(text)
	cutoff := int(float64(len(lower)) * bibliographyTailFraction)

	best := -1
	for _, marker := range bibliographyMarkers {
		idx := strings.LastIndex(lower, marker)
		if idx >= cutoff && idx > best {
			best = idx
		}
	}
	if best < 0 {
		return text
	}
	return text[:best]
}
