package analysis

import (
	"testing"
	"time"

	"plagiarism-check-platform/models"
)

func TestBuildMatchesThresholdAndDistinctCount(t *testing.T) {
	now := time.Now()
	res := &Result{
		Segments: []Segment{
			{Text: "Đoạn trùng thứ nhất.", Start: 0, End: 20, Score: 85.5, MatchedDocID: "d1", MatchedDocTitle: "Doc 1"},
			{Text: "Đoạn dưới ngưỡng.", Start: 20, End: 37, Score: 20, MatchedDocID: "d2", MatchedDocTitle: "Doc 2"},
			{Text: "Đoạn trùng thứ hai.", Start: 37, End: 56, Score: 42.1, MatchedDocID: "d1", MatchedDocTitle: "Doc 1"},
			{Text: "Không trùng ai cả.", Start: 56, End: 74, Score: 3},
		},
	}

	matches, distinct := BuildMatches("check-1", res, now)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if distinct != 1 {
		t.Fatalf("expected 1 distinct document, got %d", distinct)
	}
	for _, m := range matches {
		if m.CheckID != "check-1" || m.DocumentID != "d1" {
			t.Fatalf("unexpected match row: %+v", m)
		}
		if m.EndOffset <= m.StartOffset {
			t.Fatalf("bad offsets: %+v", m)
		}
	}
	// Exactly-at-threshold does not report.
	for _, m := range matches {
		if m.Score == 20 {
			t.Fatalf("score == threshold must not produce a match")
		}
	}
}

func TestBuildMatchesEmptyResult(t *testing.T) {
	matches, distinct := BuildMatches("check-2", &Result{}, time.Now())
	if len(matches) != 0 || distinct != 0 {
		t.Fatalf("empty result produced matches: %d/%d", len(matches), distinct)
	}
}

func TestDetailFromResultMirrorsSegments(t *testing.T) {
	res := AnalyzeDetailed("Rủi ro tín dụng là yếu tố quan trọng trong ngân hàng thương mại.", []models.Document{
		{ID: "doc-a", Title: "Doc A", Content: "ngân hàng thương mại rủi ro tín dụng"},
	})
	detail := DetailFromResult(res)
	if detail.OverallScore != res.OverallScore {
		t.Fatalf("overall score not carried over")
	}
	if len(detail.Segments) != len(res.Segments) {
		t.Fatalf("segment count mismatch: %d vs %d", len(detail.Segments), len(res.Segments))
	}
	for i, seg := range res.Segments {
		d := detail.Segments[i]
		if d.Text != seg.Text || d.Score != seg.Score || d.MatchedDocID != seg.MatchedDocID {
			t.Fatalf("segment %d diverged: %+v vs %+v", i, d, seg)
		}
	}
}
