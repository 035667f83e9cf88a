package analysis

import "strings"

// Segment is one sentence-like span of a document, the unit of
// similarity scoring. Raw spans keep their delimiters, so concatenating
// Text fields in order reproduces the input exactly and Start/End are
// true byte offsets into the source document. Segments are derived
// fresh on every analysis and never persisted as-is.
type Segment struct {
	Text            string
	Normalized      string
	Start           int
	End             int
	IsNoise         bool
	IsCommonPhrase  bool
	IsExcluded      bool
	ExclusionReason string

	// Filled in by the scorer.
	Score           float64
	MatchedDocID    string
	MatchedDocTitle string
}

const minSegmentTokens = 3

// Boilerplate that appears in nearly every submission and would match
// everything: institution headers and stock academic phrases.
var commonPhrases = []string{
	"trường đại học",
	"khoa công nghệ thông tin",
	"lời cảm ơn",
	"giảng viên hướng dẫn",
	"in conclusion",
	"table of contents",
}

// SplitSegments splits the text into ordered segments on sentence-ending
// punctuation or newlines, flagging noise (under 3 tokens) and common
// boilerplate phrases for exclusion. Order always equals document order.
func SplitSegments(text string) []Segment {
	var segments []Segment
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		raw := text[start:end]
		segments = append(segments, buildSegment(raw, start, end))
		start = end
	}

	for i, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			// Delimiter stays with the span it terminates.
			flush(i + len(string(r)))
		}
	}
	flush(len(text))
	return segments
}

func buildSegment(raw string, start, end int) Segment {
	seg := Segment{
		Text:       raw,
		Normalized: Normalize(raw),
		Start:      start,
		End:        end,
	}

	if len(Tokenize(seg.Normalized)) < minSegmentTokens {
		seg.IsNoise = true
		seg.IsExcluded = true
		seg.ExclusionReason = "segment too short"
		return seg
	}

	for _, phrase := range commonPhrases {
		if strings.Contains(seg.Normalized, phrase) {
			seg.IsCommonPhrase = true
			seg.IsExcluded = true
			seg.ExclusionReason = "common phrase"
			break
		}
	}
	return seg
}
