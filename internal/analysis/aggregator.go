package analysis

import (
	"time"

	"plagiarism-check-platform/models"
)

// BuildMatches converts segment scores into persisted match rows for
// the check. A row is emitted for every segment scoring above the
// reporting threshold with a resolved corpus document; resolution is
// by document id recorded at scoring time, the title rides along for
// display. Returns the rows and the count of distinct matched
// documents.
func BuildMatches(checkID string, res *Result, now time.Time) ([]models.Match, int) {
	var matches []models.Match
	distinct := make(map[string]struct{})

	for _, seg := range res.Segments {
		if seg.Score <= MatchThreshold || seg.MatchedDocID == "" {
			continue
		}
		matches = append(matches, models.Match{
			CheckID:       checkID,
			DocumentID:    seg.MatchedDocID,
			DocumentTitle: seg.MatchedDocTitle,
			MatchedText:   seg.Text,
			StartOffset:   seg.Start,
			EndOffset:     seg.End,
			Score:         seg.Score,
			CreatedAt:     now,
		})
		distinct[seg.MatchedDocID] = struct{}{}
	}
	return matches, len(distinct)
}

// DetailFromResult flattens a scoring result into the serializable
// shape stored on the check row and returned to callers.
func DetailFromResult(res *Result) models.AnalysisDetail {
	detail := models.AnalysisDetail{
		OverallScore: res.OverallScore,
		Segments:     make([]models.SegmentDetail, 0, len(res.Segments)),
	}
	for _, seg := range res.Segments {
		detail.Segments = append(detail.Segments, models.SegmentDetail{
			Text:            seg.Text,
			StartOffset:     seg.Start,
			EndOffset:       seg.End,
			Score:           seg.Score,
			Excluded:        seg.IsExcluded,
			ExclusionReason: seg.ExclusionReason,
			MatchedDocID:    seg.MatchedDocID,
			MatchedDocTitle: seg.MatchedDocTitle,
		})
	}
	return detail
}
