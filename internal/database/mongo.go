package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pageza/recipebook/backend/internal/model"
)

const recipesCollection = "recipes"

var sortableFields = map[string]bool{
	FieldName:      true,
	FieldCategory:  true,
	FieldCreatedAt: true,
	FieldUpdatedAt: true,
}

// MongoStore keeps recipes in a MongoDB collection
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping
func NewMongoStore(ctx context.Context, uri, dbName string, logger *slog.Logger) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("connected to record store", "backend", "mongodb", "database", dbName)
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(recipesCollection),
		logger: logger,
	}, nil
}

func (s *MongoStore) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]model.Recipe, error) {
	findOpts, err := findOptions(opts)
	if err != nil {
		return nil, err
	}

	cur, err := s.coll.Find(ctx, filterDocument(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}
	defer cur.Close(ctx)

	recipes := []model.Recipe{}
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	for i := range recipes {
		recipes[i].Normalize()
	}
	return recipes, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	recipe.Normalize()
	return &recipe, nil
}

func (s *MongoStore) Insert(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	prepareInsert(&recipe)

	if _, err := s.coll.InsertOne(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return &recipe, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, id primitive.ObjectID, update Update) (*model.Recipe, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var recipe model.Recipe
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, updateDocument(update), opts).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	recipe.Normalize()
	return &recipe, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) Aggregate(ctx context.Context, pipeline Pipeline, out any) error {
	stages, err := pipelineDocument(pipeline)
	if err != nil {
		return err
	}

	cur, err := s.coll.Aggregate(ctx, stages)
	if err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode aggregation: %w", err)
	}
	return nil
}

// HealthCheck checks if the primary is reachable
func (s *MongoStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// prepareInsert assigns the id and timestamps a new document needs
func prepareInsert(recipe *model.Recipe) {
	if recipe.ID.IsZero() {
		recipe.ID = primitive.NewObjectID()
	}
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	if recipe.UpdatedAt.IsZero() {
		recipe.UpdatedAt = recipe.CreatedAt
	}
	recipe.CreatedAt = model.Timestamp(recipe.CreatedAt)
	recipe.UpdatedAt = model.Timestamp(recipe.UpdatedAt)
	recipe.Normalize()
}

// containsRegex matches s literally anywhere in the field, ignoring case
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func filterDocument(f Filter) bson.D {
	doc := bson.D{}

	if f.NameContains != "" {
		doc = append(doc, bson.E{Key: FieldName, Value: containsRegex(f.NameContains)})
	}
	if f.CategoryContains != "" {
		doc = append(doc, bson.E{Key: FieldCategory, Value: containsRegex(f.CategoryContains)})
	}
	if f.Favorite != nil {
		// legacy documents hold the flag as a string
		truthy := bson.A{true, "true"}
		op := "$in"
		if !*f.Favorite {
			op = "$nin"
		}
		doc = append(doc, bson.E{Key: "favorite", Value: bson.D{{Key: op, Value: truthy}}})
	}
	if len(f.IngredientsAll) > 0 {
		doc = append(doc, bson.E{Key: FieldIngredients, Value: bson.D{{Key: "$all", Value: f.IngredientsAll}}})
	}
	if f.CreatedSince != nil {
		doc = append(doc, bson.E{Key: FieldCreatedAt, Value: bson.D{{Key: "$gte", Value: *f.CreatedSince}}})
	}

	return doc
}

func findOptions(o FindOptions) (*options.FindOptions, error) {
	sort := bson.D{}
	for _, f := range o.Sort {
		if !sortableFields[f.Field] {
			return nil, fmt.Errorf("%w: sort by %q", ErrUnsupportedField, f.Field)
		}
		dir := 1
		if f.Descending {
			dir = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	opts := options.Find().SetSort(sort)
	if o.Skip > 0 {
		opts.SetSkip(o.Skip)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	return opts, nil
}

func updateDocument(u Update) bson.D {
	set := bson.D{{Key: FieldUpdatedAt, Value: model.Timestamp(u.UpdatedAt)}}

	if u.Name != nil {
		set = append(set, bson.E{Key: FieldName, Value: *u.Name})
	}
	if u.Category != nil {
		set = append(set, bson.E{Key: FieldCategory, Value: *u.Category})
	}
	if u.Ingredients != nil {
		ingredients := *u.Ingredients
		if ingredients == nil {
			ingredients = []string{}
		}
		set = append(set, bson.E{Key: FieldIngredients, Value: ingredients})
	}
	if u.Instructions != nil {
		set = append(set, bson.E{Key: "instructions", Value: *u.Instructions})
	}
	if u.Favorite != nil {
		set = append(set, bson.E{Key: "favorite", Value: *u.Favorite})
	}

	doc := bson.D{{Key: "$set", Value: set}}
	if len(u.AppendReviews) > 0 {
		doc = append(doc, bson.E{Key: "$push", Value: bson.D{
			{Key: "reviews", Value: bson.D{{Key: "$each", Value: u.AppendReviews}}},
		}})
	}
	return doc
}

func pipelineDocument(p Pipeline) (mongo.Pipeline, error) {
	stages := make(mongo.Pipeline, 0, len(p))

	for _, st := range p {
		switch st := st.(type) {
		case Unwind:
			if st.Field == "" {
				return nil, fmt.Errorf("%w: unwind without field", ErrUnsupportedPipeline)
			}
			stages = append(stages, bson.D{{Key: "$unwind", Value: "$" + st.Field}})
		case GroupCount:
			if st.Field == "" {
				return nil, fmt.Errorf("%w: group without field", ErrUnsupportedPipeline)
			}
			stages = append(stages, bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$" + st.Field},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}})
		case SortByCount:
			stages = append(stages, bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}})
		case Limit:
			if st.N <= 0 {
				return nil, fmt.Errorf("%w: limit must be positive", ErrUnsupportedPipeline)
			}
			stages = append(stages, bson.D{{Key: "$limit", Value: st.N}})
		default:
			return nil, fmt.Errorf("%w: stage %T", ErrUnsupportedPipeline, st)
		}
	}

	return stages, nil
}
