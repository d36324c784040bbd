package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe is the only entity in the catalog. Field names match the documents
// written by earlier versions of the service.
type Recipe struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category,omitempty" json:"category"`
	Ingredients  []string           `bson:"ingredients" json:"ingredients"`
	Instructions string             `bson:"instructions" json:"instructions"`
	Favorite     Favorite           `bson:"favorite" json:"favorite"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize replaces nil collections with empty ones so the JSON form never
// carries null for ingredients or reviews.
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Reviews == nil {
		r.Reviews = []Review{}
	}
}

// Review is a single rating left on a recipe. Reviews are append-only.
type Review struct {
	Rating    float64   `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// UnmarshalBSON accepts reviews stored with a "date" field instead of createdAt.
func (r *Review) UnmarshalBSON(data []byte) error {
	var raw struct {
		Rating    float64   `bson:"rating"`
		Comment   string    `bson:"comment"`
		CreatedAt time.Time `bson:"createdAt"`
		Date      time.Time `bson:"date"`
	}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Rating = raw.Rating
	r.Comment = raw.Comment
	r.CreatedAt = raw.CreatedAt
	if r.CreatedAt.IsZero() {
		r.CreatedAt = raw.Date
	}
	return nil
}

// IngredientCount is one row of the ingredient popularity aggregation.
type IngredientCount struct {
	Ingredient string `bson:"_id" json:"_id"`
	Count      int64  `bson:"count" json:"count"`
}

// Timestamp truncates t to the millisecond precision every store keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
