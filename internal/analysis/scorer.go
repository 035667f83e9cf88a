package analysis

import (
	"math"
	"strings"

	"plagiarism-check-platform/models"
)

const (
	// MatchThreshold is the segment score above which a match is
	// reported and the segment's words count as matched.
	MatchThreshold = 20.0

	segmentNGramSize   = 2
	documentNGramSize  = 3
	containmentMinToks = 5
)

// Result is the outcome of a detailed similarity analysis of one
// document against a corpus.
type Result struct {
	OverallScore float64
	Segments     []Segment
	MatchedWords int
	TotalWords   int
}

// Jaccard returns |A∩B| / |A∪B| as a percentage. Either set being
// empty yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for gram := range a {
		if _, ok := b[gram]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}

// Similarity scores a single text pair in [0,1] using Jaccard over
// 3-gram sets of the normalized texts.
func Similarity(a, b string) float64 {
	return Jaccard(NGrams(a, documentNGramSize), NGrams(b, documentNGramSize)) / 100
}

// AnalyzeDetailed scores every segment of text against the corpus and
// aggregates a word-weighted overall percentage.
//
// Corpus documents are normalized and 2-gram indexed once up front, so
// the per-segment loop costs set intersections rather than repeated
// tokenization. A segment wholly contained in a corpus document (at
// least 5 tokens, exact normalized substring) scores 100 immediately
// and skips the rest of the corpus; it cannot score higher. Score ties
// keep the first corpus document in the given scan order.
func AnalyzeDetailed(text string, corpus []models.Document) *Result {
	body := StripBibliography(text)
	segments := SplitSegments(body)

	type corpusEntry struct {
		id         string
		title      string
		normalized string
		grams      map[string]struct{}
	}
	entries := make([]corpusEntry, 0, len(corpus))
	for _, doc := range corpus {
		normalized := Normalize(doc.Content)
		entries = append(entries, corpusEntry{
			id:         doc.ID,
			title:      doc.Title,
			normalized: normalized,
			grams:      NGrams(normalized, segmentNGramSize),
		})
	}

	matchedWords, totalWords := 0, 0
	for i := range segments {
		seg := &segments[i]
		if seg.IsNoise || seg.IsExcluded {
			continue
		}

		tokens := Tokenize(seg.Normalized)
		totalWords += len(tokens)
		segGrams := NGrams(seg.Normalized, segmentNGramSize)

		best := 0.0
		bestID, bestTitle := "", ""
		for _, entry := range entries {
			if len(tokens) >= containmentMinToks && strings.Contains(entry.normalized, seg.Normalized) {
				best, bestID, bestTitle = 100, entry.id, entry.title
				break
			}
			if score := Jaccard(segGrams, entry.grams); score > best {
				best, bestID, bestTitle = score, entry.id, entry.title
			}
		}

		// Gate on the rounded score: it is what the segment carries and
		// what the aggregator compares, so a raw score that rounds down
		// to the threshold must not count as matched.
		seg.Score = round2(best)
		if seg.Score > MatchThreshold {
			seg.MatchedDocID = bestID
			seg.MatchedDocTitle = bestTitle
			matchedWords += len(tokens)
		}
	}

	overall := 0.0
	if totalWords > 0 {
		overall = round2(float64(matchedWords) / float64(totalWords) * 100)
	}
	return &Result{
		OverallScore: overall,
		Segments:     segments,
		MatchedWords: matchedWords,
		TotalWords:   totalWords,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
