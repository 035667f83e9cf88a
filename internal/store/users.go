package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plagiarism-check-platform/models"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) SaveUser(ctx context.Context, user *models.User) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": user},
	)
	return err
}

// ResetQuotaIfStale zeroes the daily counter when the stored reset date
// is before the given day boundary. A no-op when the counter is
// already current, so it is safe to call on every login and check
// request.
func (s *UserStore) ResetQuotaIfStale(ctx context.Context, userID string, today time.Time) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{
			"_id":             userID,
			"last_reset_date": bson.M{"$lt": today},
		},
		bson.M{"$set": bson.M{
			"checks_used_today": 0,
			"last_reset_date":   today,
			"updated_at":        time.Now(),
		}},
	)
	return err
}

// ConsumeCheck atomically increments the user's daily counter, but only
// while it is under the limit. The filter and $inc execute as one
// storage-level operation, so concurrent requests for the same user
// cannot both pass the quota comparison. Returns the counter after the
// increment, or ErrQuotaExceeded with the counter untouched.
func (s *UserStore) ConsumeCheck(ctx context.Context, userID string, limit int) (int, error) {
	var updated models.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{
			"_id":               userID,
			"checks_used_today": bson.M{"$lt": limit},
		},
		bson.M{
			"$inc": bson.M{"checks_used_today": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return 0, ErrQuotaExceeded
	}
	if err != nil {
		return 0, err
	}
	return updated.ChecksUsedToday, nil
}
