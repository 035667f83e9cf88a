package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Check status constants
const (
	CheckStatusProcessing = "Processing"
	CheckStatusCompleted  = "Completed"
	CheckStatusFailed     = "Failed"
)

// AI detection risk levels
const (
	AiLevelLow    = "Low"
	AiLevelMedium = "Medium"
	AiLevelHigh   = "High"
)

// Check is one similarity-check request tracked through its lifecycle.
// It is created synchronously in Processing state and mutated exactly
// once by the worker, which moves it to Completed or Failed.
type Check struct {
	ID                    string     `bson:"_id" json:"id"`
	DocumentID            string     `bson:"document_id" json:"document_id"`
	UserID                string     `bson:"user_id" json:"user_id"`
	Status                string     `bson:"status" json:"status"` // Processing, Completed, Failed
	OverallSimilarity     float64    `bson:"overall_similarity" json:"overall_similarity"`
	TotalMatchedDocuments int        `bson:"total_matched_documents" json:"total_matched_documents"`
	Notes                 string     `bson:"notes,omitempty" json:"notes,omitempty"`
	AiProbability         float64    `bson:"ai_probability" json:"ai_probability"`
	AiLevel               string     `bson:"ai_level,omitempty" json:"ai_level,omitempty"`
	AiDetail              []byte     `bson:"ai_detail,omitempty" json:"-"`       // gzip-compressed JSON blob
	AnalysisDetail        []byte     `bson:"analysis_detail,omitempty" json:"-"` // gzip-compressed JSON blob
	CreatedAt             time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt           *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// Match is a persisted cross-document match belonging to exactly one
// check. Rows are written once when the check completes and removed
// only via cascade with the parent check.
type Match struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CheckID       string             `bson:"check_id" json:"check_id"`
	DocumentID    string             `bson:"document_id" json:"document_id"`
	DocumentTitle string             `bson:"document_title" json:"document_title"`
	MatchedText   string             `bson:"matched_text" json:"matched_text"`
	StartOffset   int                `bson:"start_offset" json:"start_offset"`
	EndOffset     int                `bson:"end_offset" json:"end_offset"`
	Score         float64            `bson:"score" json:"score"` // 0-100, 2-decimal
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

type CreateCheckRequest struct {
	SourceDocumentID string `json:"source_document_id" binding:"required"`
	Notes            string `json:"notes,omitempty" binding:"omitempty,max=500"`
}

type CreateCheckResponse struct {
	CheckID              string `json:"check_id"`
	Status               string `json:"status"`
	RemainingChecksToday int    `json:"remaining_checks_today"`
	DailyCheckLimit      int    `json:"daily_check_limit"`
}

// SegmentDetail is the per-segment result shape returned to callers in
// detailed_analysis and serialized into the check's analysis blob.
type SegmentDetail struct {
	Text            string  `json:"text"`
	StartOffset     int     `json:"start_offset"`
	EndOffset       int     `json:"end_offset"`
	Score           float64 `json:"score"`
	Excluded        bool    `json:"excluded"`
	ExclusionReason string  `json:"exclusion_reason,omitempty"`
	MatchedDocID    string  `json:"matched_document_id,omitempty"`
	MatchedDocTitle string  `json:"matched_document_title,omitempty"`
}

// AnalysisDetail is the decoded form of Check.AnalysisDetail.
type AnalysisDetail struct {
	OverallScore float64         `json:"overall_score"`
	Segments     []SegmentDetail `json:"segments"`
}

// SentenceAiDetail is the decoded per-sentence form of Check.AiDetail.
type SentenceAiDetail struct {
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
}

type AiDetail struct {
	Probability float64            `json:"probability"`
	Level       string             `json:"level"`
	Sentences   []SentenceAiDetail `json:"sentences"`
}
