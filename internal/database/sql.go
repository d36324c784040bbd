package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/pageza/recipebook/backend/internal/model"
)

// recipeRow is the relational form of a recipe. Ids keep the ObjectID hex
// form so identifiers look the same on every backend.
type recipeRow struct {
	ID           string          `gorm:"primaryKey;size:24"`
	Name         string          `gorm:"size:255;not null"`
	Category     string          `gorm:"size:255"`
	Instructions string          `gorm:"type:text;not null"`
	Favorite     bool            `gorm:"not null;default:false;index"`
	CreatedAt    time.Time       `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime:false"`
	Ingredients  []ingredientRow `gorm:"foreignKey:RecipeID"`
	Reviews      []reviewRow     `gorm:"foreignKey:RecipeID"`
}

func (recipeRow) TableName() string {
	return "recipes"
}

// ingredientRow is one occurrence of an ingredient token; duplicates are kept.
type ingredientRow struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"size:24;not null;index"`
	Position int    `gorm:"not null"`
	Value    string `gorm:"size:255;not null;index"`
}

func (ingredientRow) TableName() string {
	return "recipe_ingredients"
}

type reviewRow struct {
	ID        uint      `gorm:"primaryKey"`
	RecipeID  string    `gorm:"size:24;not null;index"`
	Rating    float64   `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (reviewRow) TableName() string {
	return "recipe_reviews"
}

var sqlColumns = map[string]string{
	FieldName:      "name",
	FieldCategory:  "category",
	FieldCreatedAt: "created_at",
	FieldUpdatedAt: "updated_at",
}

// SQLStore keeps recipes in a relational database through gorm
type SQLStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSQLStore wraps an open gorm connection
func NewSQLStore(db *gorm.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) FindMany(ctx context.Context, filter Filter, opts FindOptions) ([]model.Recipe, error) {
	q := applyFilter(s.db.WithContext(ctx).Model(&recipeRow{}), filter)

	for _, f := range opts.Sort {
		col, ok := sqlColumns[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: sort by %q", ErrUnsupportedField, f.Field)
		}
		if f.Descending {
			col += " DESC"
		}
		q = q.Order(col)
	}
	q = q.Order("id")

	if opts.Skip > 0 {
		q = q.Offset(int(opts.Skip))
	}
	if opts.Limit > 0 {
		q = q.Limit(int(opts.Limit))
	}

	var rows []recipeRow
	if err := withChildren(q).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}

	recipes := make([]model.Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.toModel())
	}
	return recipes, nil
}

func (s *SQLStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Recipe, error) {
	row, err := findRow(s.db.WithContext(ctx), id)
	if err != nil || row == nil {
		return nil, err
	}
	recipe := row.toModel()
	return &recipe, nil
}

func (s *SQLStore) Insert(ctx context.Context, recipe model.Recipe) (*model.Recipe, error) {
	prepareInsert(&recipe)
	row := rowFromModel(recipe)

	// associations are created in the same transaction as the recipe
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return &recipe, nil
}

func (s *SQLStore) UpdateByID(ctx context.Context, id primitive.ObjectID, update Update) (*model.Recipe, error) {
	var updated *recipeRow

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findRow(tx, id)
		if err != nil || row == nil {
			return err
		}

		fields := map[string]any{"updated_at": model.Timestamp(update.UpdatedAt)}
		if update.Name != nil {
			fields["name"] = *update.Name
		}
		if update.Category != nil {
			fields["category"] = *update.Category
		}
		if update.Instructions != nil {
			fields["instructions"] = *update.Instructions
		}
		if update.Favorite != nil {
			fields["favorite"] = *update.Favorite
		}
		if err := tx.Model(&recipeRow{ID: row.ID}).Updates(fields).Error; err != nil {
			return err
		}

		if update.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", row.ID).Delete(&ingredientRow{}).Error; err != nil {
				return err
			}
			if ings := ingredientRows(row.ID, *update.Ingredients); len(ings) > 0 {
				if err := tx.Create(&ings).Error; err != nil {
					return err
				}
			}
		}

		if len(update.AppendReviews) > 0 {
			reviews := reviewRows(row.ID, update.AppendReviews)
			if err := tx.Create(&reviews).Error; err != nil {
				return err
			}
		}

		updated, err = findRow(tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	if updated == nil {
		return nil, nil
	}

	recipe := updated.toModel()
	return &recipe, nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	var deleted bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hex := id.Hex()
		if err := tx.Where("recipe_id = ?", hex).Delete(&ingredientRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", hex).Delete(&reviewRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", hex).Delete(&recipeRow{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return deleted, nil
}

// Aggregate supports the unwind/group/sort/limit shape over ingredients,
// which it runs as a single GROUP BY over the ingredient table.
func (s *SQLStore) Aggregate(ctx context.Context, pipeline Pipeline, out any) error {
	var (
		unwound, grouped, sorted bool
		limit                    int64
	)

	for _, st := range pipeline {
		switch st := st.(type) {
		case Unwind:
			if st.Field != FieldIngredients || unwound {
				return fmt.Errorf("%w: unwind %q", ErrUnsupportedPipeline, st.Field)
			}
			unwound = true
		case GroupCount:
			if st.Field != FieldIngredients || !unwound || grouped {
				return fmt.Errorf("%w: group by %q", ErrUnsupportedPipeline, st.Field)
			}
			grouped = true
		case SortByCount:
			if !grouped {
				return fmt.Errorf("%w: sort before group", ErrUnsupportedPipeline)
			}
			sorted = true
		case Limit:
			if !grouped || st.N <= 0 {
				return fmt.Errorf("%w: limit %d", ErrUnsupportedPipeline, st.N)
			}
			limit = st.N
		default:
			return fmt.Errorf("%w: stage %T", ErrUnsupportedPipeline, st)
		}
	}
	if !grouped {
		return fmt.Errorf("%w: missing group stage", ErrUnsupportedPipeline)
	}

	q := s.db.WithContext(ctx).
		Table(ingredientRow{}.TableName()).
		Select("value AS ingredient, COUNT(*) AS count").
		Group("value")
	if sorted {
		q = q.Order("count DESC")
	}
	if limit > 0 {
		q = q.Limit(int(limit))
	}

	if err := q.Scan(out).Error; err != nil {
		return fmt.Errorf("failed to run aggregation: %w", err)
	}
	return nil
}

// HealthCheck checks if the database is accessible
func (s *SQLStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func findRow(db *gorm.DB, id primitive.ObjectID) (*recipeRow, error) {
	var row recipeRow
	err := withChildren(db).Where("id = ?", id.Hex()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &row, nil
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.NameContains != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(f.NameContains))
	}
	if f.CategoryContains != "" {
		q = q.Where(`LOWER(category) LIKE ? ESCAPE '\'`, containsPattern(f.CategoryContains))
	}
	if f.Favorite != nil {
		q = q.Where("favorite = ?", *f.Favorite)
	}
	if tokens := distinct(f.IngredientsAll); len(tokens) > 0 {
		q = q.Where(
			"id IN (SELECT recipe_id FROM recipe_ingredients WHERE value IN ? GROUP BY recipe_id HAVING COUNT(DISTINCT value) = ?)",
			tokens, len(tokens),
		)
	}
	if f.CreatedSince != nil {
		q = q.Where("created_at >= ?", model.Timestamp(*f.CreatedSince))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func distinct(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func rowFromModel(r model.Recipe) recipeRow {
	id := r.ID.Hex()
	return recipeRow{
		ID:           id,
		Name:         r.Name,
		Category:     r.Category,
		Instructions: r.Instructions,
		Favorite:     bool(r.Favorite),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Ingredients:  ingredientRows(id, r.Ingredients),
		Reviews:      reviewRows(id, r.Reviews),
	}
}

func ingredientRows(recipeID string, ingredients []string) []ingredientRow {
	rows := make([]ingredientRow, 0, len(ingredients))
	for i, v := range ingredients {
		rows = append(rows, ingredientRow{RecipeID: recipeID, Position: i, Value: v})
	}
	return rows
}

func reviewRows(recipeID string, reviews []model.Review) []reviewRow {
	rows := make([]reviewRow, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, reviewRow{
			RecipeID:  recipeID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: model.Timestamp(r.CreatedAt),
		})
	}
	return rows
}

func (row recipeRow) toModel() model.Recipe {
	id, _ := primitive.ObjectIDFromHex(row.ID)

	r := model.Recipe{
		ID:           id,
		Name:         row.Name,
		Category:     row.Category,
		Instructions: row.Instructions,
		Favorite:     model.Favorite(row.Favorite),
		Ingredients:  make([]string, 0, len(row.Ingredients)),
		Reviews:      make([]model.Review, 0, len(row.Reviews)),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	for _, ing := range row.Ingredients {
		r.Ingredients = append(r.Ingredients, ing.Value)
	}
	for _, rev := range row.Reviews {
		r.Reviews = append(r.Reviews, model.Review{
			Rating:    rev.Rating,
			Comment:   rev.Comment,
			CreatedAt: rev.CreatedAt.UTC(),
		})
	}
	return r
}
