package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pageza/recipebook/backend/internal/model"
)

var (
	// ErrUnsupportedPipeline is returned when a backend cannot run an aggregation shape.
	ErrUnsupportedPipeline = errors.New("unsupported aggregation pipeline")
	// ErrUnsupportedField is returned for sort or group keys a backend does not know.
	ErrUnsupportedField = errors.New("unsupported field")
	// ErrUnsupportedScheme is returned by Open for an unknown connection string.
	ErrUnsupportedScheme = errors.New("unsupported store scheme")
)

// Store holds recipe documents. It has no domain rules: ids arrive already
// validated and absence is reported as a nil result rather than an error.
type Store interface {
	FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]model.Recipe, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error)
	Insert(ctx context.Context, recipe model.Recipe) (*model.Recipe, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, update Update) (*model.Recipe, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
	Aggregate(ctx context.Context, pipeline Pipeline, out any) error
}

// Database is a Store bound to a live connection.
type Database interface {
	Store
	// HealthCheck checks if the backing store is reachable
	HealthCheck(ctx context.Context) error
	// Migrate creates indexes or tables; safe to run repeatedly
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

// Filter selects recipes. Zero-valued fields do not constrain the result.
type Filter struct {
	// NameContains and CategoryContains are case-insensitive literal substrings.
	NameContains     string
	CategoryContains string
	Favorite         *bool
	// IngredientsAll keeps recipes whose ingredients include every token.
	IngredientsAll []string
	CreatedSince   *time.Time
}

// Sortable field names, as they appear in stored documents.
const (
	FieldName        = "name"
	FieldCategory    = "category"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldIngredients = "ingredients"
)

type SortField struct {
	Field      string
	Descending bool
}

// FindOptions controls ordering and windowing. Results without a sort come back
// in insertion order; every backend breaks ties on the id.
type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Update replaces the non-nil fields and appends AppendReviews in a single
// atomic write. UpdatedAt is always written.
type Update struct {
	Name          *string
	Category      *string
	Ingredients   *[]string
	Instructions  *string
	Favorite      *bool
	AppendReviews []model.Review
	UpdatedAt     time.Time
}

// Stage is one step of an aggregation Pipeline.
type Stage interface {
	stage()
}

// Unwind emits one row per element of an array field.
type Unwind struct{ Field string }

// GroupCount groups rows by Field, producing {_id: value, count: n}.
type GroupCount struct{ Field string }

// SortByCount orders grouped rows by count, highest first. Equal counts come
// back in whatever order the backend yields.
type SortByCount struct{}

// Limit keeps the first N rows.
type Limit struct{ N int64 }

func (Unwind) stage()      {}
func (GroupCount) stage()  {}
func (SortByCount) stage() {}
func (Limit) stage()       {}

// Pipeline is an ordered list of aggregation stages.
type Pipeline []Stage

// PopularIngredientsPipeline counts ingredient occurrences across all recipes
// and keeps the top n.
func PopularIngredientsPipeline(n int64) Pipeline {
	return Pipeline{
		Unwind{Field: FieldIngredients},
		GroupCount{Field: FieldIngredients},
		SortByCount{},
		Limit{N: n},
	}
}
