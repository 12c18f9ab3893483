package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection groups products, e.g. "Rings".
type Collection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Slug        string             `bson:"slug" json:"slug"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CollectionRef is the short form embedded in product responses.
type CollectionRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
	Slug string             `json:"slug"`
}

func (c Collection) Ref() CollectionRef {
	return CollectionRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
}
