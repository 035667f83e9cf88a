package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plagiarism-check-platform/models"
)

type CheckStore struct {
	checks  *mongo.Collection
	matches *mongo.Collection
}

func NewCheckStore(db *mongo.Database) *CheckStore {
	return &CheckStore{
		checks:  db.Collection("checks"),
		matches: db.Collection("matches"),
	}
}

func (s *CheckStore) CreateCheck(ctx context.Context, check *models.Check) error {
	_, err := s.checks.InsertOne(ctx, check)
	return err
}

func (s *CheckStore) GetCheck(ctx context.Context, id string) (*models.Check, error) {
	var check models.Check
	err := s.checks.FindOne(ctx, bson.M{"_id": id}).Decode(&check)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *CheckStore) ListChecksByUser(ctx context.Context, userID string, page, limit int) ([]models.Check, int64, error) {
	filter := bson.M{"user_id": userID}
	skip := int64((page - 1) * limit)

	cursor, err := s.checks.Find(ctx, filter,
		options.Find().
			SetSort(bson.M{"created_at": -1}).
			SetSkip(skip).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var checks []models.Check
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, 0, err
	}

	total, err := s.checks.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return checks, total, nil
}

// CheckResult carries every field the worker writes on successful
// completion.
type CheckResult struct {
	OverallSimilarity     float64
	TotalMatchedDocuments int
	AiProbability         float64
	AiLevel               string
	AiDetail              []byte
	AnalysisDetail        []byte
}

// CompleteCheck moves a check from Processing to Completed with its
// result fields. The status filter enforces the one-way state machine:
// terminal checks are never rewritten, so re-delivered jobs no-op.
func (s *CheckStore) CompleteCheck(ctx context.Context, id string, res CheckResult, now time.Time) error {
	_, err := s.checks.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.CheckStatusProcessing},
		bson.M{"$set": bson.M{
			"status":                  models.CheckStatusCompleted,
			"overall_similarity":      res.OverallSimilarity,
			"total_matched_documents": res.TotalMatchedDocuments,
			"ai_probability":          res.AiProbability,
			"ai_level":                res.AiLevel,
			"ai_detail":               res.AiDetail,
			"analysis_detail":         res.AnalysisDetail,
			"completed_at":            now,
			"updated_at":              now,
		}},
	)
	return err
}

// FailCheck moves a check from Processing to Failed, recording the
// failure diagnostics in notes. Same status guard as CompleteCheck.
func (s *CheckStore) FailCheck(ctx context.Context, id, notes string, now time.Time) error {
	_, err := s.checks.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.CheckStatusProcessing},
		bson.M{"$set": bson.M{
			"status":       models.CheckStatusFailed,
			"notes":        notes,
			"completed_at": now,
			"updated_at":   now,
		}},
	)
	return err
}

// ReplaceMatches swaps the check's match rows in one shot. Replacement
// rather than append keeps a retried worker run from duplicating rows.
func (s *CheckStore) ReplaceMatches(ctx context.Context, checkID string, matches []models.Match) error {
	if _, err := s.matches.DeleteMany(ctx, bson.M{"check_id": checkID}); err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}
	docs := make([]interface{}, len(matches))
	for i := range matches {
		docs[i] = matches[i]
	}
	_, err := s.matches.InsertMany(ctx, docs)
	return err
}

func (s *CheckStore) ListMatches(ctx context.Context, checkID string) ([]models.Match, error) {
	cursor, err := s.matches.Find(ctx, bson.M{"check_id": checkID},
		options.Find().SetSort(bson.M{"start_offset": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var matches []models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// DeleteCheck removes a check and cascades to its match rows.
func (s *CheckStore) DeleteCheck(ctx context.Context, id string) error {
	res, err := s.checks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.matches.DeleteMany(ctx, bson.M{"check_id": id})
	return err
}

// FailStuckChecks marks every check still Processing since before the
// cutoff as Failed. Run by the watchdog so a check whose job exhausted
// its retry budget does not stay Processing forever.
func (s *CheckStore) FailStuckChecks(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res, err := s.checks.UpdateMany(ctx,
		bson.M{
			"status":     models.CheckStatusProcessing,
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":       models.CheckStatusFailed,
			"notes":        "processing deadline exceeded",
			"completed_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListCompletedChecks returns completed checks for report export,
// newest first.
func (s *CheckStore) ListCompletedChecks(ctx context.Context, limit int) ([]models.Check, error) {
	cursor, err := s.checks.Find(ctx,
		bson.M{"status": models.CheckStatusCompleted},
		options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checks []models.Check
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}
