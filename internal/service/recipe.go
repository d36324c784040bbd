package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pageza/recipebook/backend/internal/database"
	"github.com/pageza/recipebook/backend/internal/model"
)

const (
	defaultPage         = 1
	defaultPageSize     = 10
	defaultPopularLimit = 10
)

// sortKeys maps the sortBy values clients may send onto store fields
var sortKeys = map[string]string{
	"name":      database.FieldName,
	"category":  database.FieldCategory,
	"createdAt": database.FieldCreatedAt,
	"updatedAt": database.FieldUpdatedAt,
}

// CreateRecipeInput holds the client-supplied fields of a new recipe
type CreateRecipeInput struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// UpdateRecipeInput replaces only the fields that are set
type UpdateRecipeInput struct {
	Name         *string   `json:"name"`
	Category     *string   `json:"category"`
	Ingredients  *[]string `json:"ingredients"`
	Instructions *string   `json:"instructions"`
	Favorite     *bool     `json:"favorite"`
}

type ReviewInput struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// PageRequest selects one page of recipes. Values below 1 fall back to the
// defaults; an unknown SortBy keeps insertion order.
type PageRequest struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Option configures a RecipeService
type Option func(*RecipeService)

// WithClock replaces the time source used for timestamps and recency windows
func WithClock(now func() time.Time) Option {
	return func(s *RecipeService) {
		s.now = now
	}
}

// RecipeService implements the catalog queries and mutations on top of a
// record store. It holds no state between calls.
type RecipeService struct {
	store  database.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewRecipeService(store database.Store, logger *slog.Logger, opts ...Option) *RecipeService {
	s := &RecipeService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RecipeService) ListAll(ctx context.Context) ([]model.Recipe, error) {
	return s.find(ctx, "list recipes", database.Filter{}, database.FindOptions{})
}

func (s *RecipeService) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	recipe, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, s.storeFailure(ctx, "get recipe", err)
	}
	if recipe == nil {
		return nil, ErrNotFound
	}
	return recipe, nil
}

// SearchByName returns recipes whose name contains query, ignoring case
func (s *RecipeService) SearchByName(ctx context.Context, query string) ([]model.Recipe, error) {
	return s.find(ctx, "search recipes", database.Filter{NameContains: query}, database.FindOptions{})
}

// FilterByCategory returns recipes whose category contains category, ignoring case
func (s *RecipeService) FilterByCategory(ctx context.Context, category string) ([]model.Recipe, error) {
	return s.find(ctx, "filter recipes by category", database.Filter{CategoryContains: category}, database.FindOptions{})
}

func (s *RecipeService) ListFavorites(ctx context.Context) ([]model.Recipe, error) {
	favorite := true
	return s.find(ctx, "list favorite recipes", database.Filter{Favorite: &favorite}, database.FindOptions{})
}

func (s *RecipeService) Paginate(ctx context.Context, req PageRequest) ([]model.Recipe, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	// no store can hold more than MaxInt64 records, so such a page is past the end
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return []model.Recipe{}, nil
	}

	opts := database.FindOptions{
		Skip:  int64(page-1) * int64(limit),
		Limit: int64(limit),
	}
	if field, ok := sortKeys[req.SortBy]; ok {
		opts.Sort = []database.SortField{{
			Field:      field,
			Descending: strings.EqualFold(req.Order, "desc"),
		}}
	}

	return s.find(ctx, "paginate recipes", database.Filter{}, opts)
}

// PopularIngredients counts every ingredient occurrence across the catalog
// and returns the n most frequent. Order among equal counts is unspecified.
func (s *RecipeService) PopularIngredients(ctx context.Context, n int) ([]model.IngredientCount, error) {
	if n <= 0 {
		n = defaultPopularLimit
	}

	var counts []model.IngredientCount
	if err := s.store.Aggregate(ctx, database.PopularIngredientsPipeline(int64(n)), &counts); err != nil {
		return nil, s.storeFailure(ctx, "aggregate ingredients", err)
	}
	if counts == nil {
		counts = []model.IngredientCount{}
	}
	return counts, nil
}

// FindByIngredients returns recipes containing every given ingredient.
// Tokens are trimmed and matched exactly; blank tokens are ignored.
func (s *RecipeService) FindByIngredients(ctx context.Context, ingredients []string) ([]model.Recipe, error) {
	tokens := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if t := strings.TrimSpace(ing); t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return nil, badRequest("Ingredients query parameter is required")
	}

	return s.find(ctx, "find recipes by ingredients", database.Filter{IngredientsAll: tokens}, database.FindOptions{})
}

// RecentSince returns recipes created within the last days days
func (s *RecipeService) RecentSince(ctx context.Context, days int) ([]model.Recipe, error) {
	if days < 0 {
		return nil, badRequest("Days must be a non-negative integer")
	}

	since := model.Timestamp(s.now().AddDate(0, 0, -days))
	return s.find(ctx, "list recent recipes", database.Filter{CreatedSince: &since}, database.FindOptions{})
}

func (s *RecipeService) Create(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if strings.TrimSpace(input.Name) == "" || input.Ingredients == nil || strings.TrimSpace(input.Instructions) == "" {
		return nil, badRequest("Name, ingredients, and instructions are required")
	}

	now := model.Timestamp(s.now())
	recipe := model.Recipe{
		Name:         input.Name,
		Category:     input.Category,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
		Favorite:     false,
		Reviews:      []model.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.Insert(ctx, recipe)
	if err != nil {
		return nil, s.storeFailure(ctx, "create recipe", err)
	}
	return created, nil
}

func (s *RecipeService) Update(ctx context.Context, id string, input UpdateRecipeInput) (*model.Recipe, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, badRequest("Name must not be empty")
	}
	if input.Instructions != nil && strings.TrimSpace(*input.Instructions) == "" {
		return nil, badRequest("Instructions must not be empty")
	}

	return s.update(ctx, "update recipe", oid, database.Update{
		Name:         input.Name,
		Category:     input.Category,
		Ingredients:  input.Ingredients,
		Instructions: input.Instructions,
		Favorite:     input.Favorite,
	})
}

func (s *RecipeService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteByID(ctx, oid)
	if err != nil {
		return s.storeFailure(ctx, "delete recipe", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// AddReview appends a review in a single store write, so concurrent reviews
// on the same recipe are all kept.
func (s *RecipeService) AddReview(ctx context.Context, id string, input ReviewInput) (*model.Recipe, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	review := model.Review{
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: model.Timestamp(s.now()),
	}
	return s.update(ctx, "add review", oid, database.Update{AppendReviews: []model.Review{review}})
}

// ToggleFavorite flips the favorite flag. It reads then writes, so two
// concurrent toggles on one recipe resolve as last writer wins.
func (s *RecipeService) ToggleFavorite(ctx context.Context, id string) (*model.Recipe, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	current, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, s.storeFailure(ctx, "get recipe", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	flipped := !bool(current.Favorite)
	return s.update(ctx, "toggle favorite", oid, database.Update{Favorite: &flipped})
}

func (s *RecipeService) find(ctx context.Context, op string, filter database.Filter, opts database.FindOptions) ([]model.Recipe, error) {
	recipes, err := s.store.FindMany(ctx, filter, opts)
	if err != nil {
		return nil, s.storeFailure(ctx, op, err)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	return recipes, nil
}

func (s *RecipeService) update(ctx context.Context, op string, id primitive.ObjectID, update database.Update) (*model.Recipe, error) {
	update.UpdatedAt = model.Timestamp(s.now())

	recipe, err := s.store.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, s.storeFailure(ctx, op, err)
	}
	if recipe == nil {
		return nil, ErrNotFound
	}
	return recipe, nil
}

func (s *RecipeService) storeFailure(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "record store operation failed", "op", op, "error", err)
	return storeError(op, err)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
