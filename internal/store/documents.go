package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plagiarism-check-platform/models"
)

// DocumentStore reads documents for the similarity pipeline. Documents
// are owned by the document-management side of the system; this service
// never mutates them.
type DocumentStore struct {
	col *mongo.Collection
}

func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{col: db.Collection("documents")}
}

func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListEligibleCorpus returns every active public document except the
// one being checked, ordered by creation time. Scan order matters: the
// scorer resolves score ties to the first document it sees, so the
// order returned here must be stable across retries of the same check.
func (s *DocumentStore) ListEligibleCorpus(ctx context.Context, excludeID string) ([]models.Document, error) {
	cursor, err := s.col.Find(ctx, bson.M{
		"_id":       bson.M{"$ne": excludeID},
		"is_public": true,
		"is_active": true,
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
