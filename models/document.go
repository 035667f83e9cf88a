package models

import "time"

// Document is a stored reference or source document. Content is the
// already-extracted text; extraction happens upstream of this service.
// Documents are consumed read-only by the similarity pipeline.
type Document struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"-"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	IsPublic  bool      `bson:"is_public" json:"is_public"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// EligibleAsReference reports whether the document may be used as a
// corpus document for other users' checks.
func (d *Document) EligibleAsReference() bool {
	return d.IsPublic && d.IsActive
}
