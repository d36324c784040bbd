package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pageza/recipebook/backend/internal/logging"
	"github.com/pageza/recipebook/backend/internal/model"
)

func setupSQLite(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()

	uri := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := Open(ctx, uri, "", logging.NullLogger())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))

	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func insert(t *testing.T, s Store, r model.Recipe) *model.Recipe {
	t.Helper()
	out, err := s.Insert(context.Background(), r)
	require.NoError(t, err)
	return out
}

func names(recipes []model.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func TestSQLStoreInsertAndFind(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	created := insert(t, s, model.Recipe{
		Name:         "Soup",
		Category:     "Starter",
		Ingredients:  []string{"salt", "water", "salt"},
		Instructions: "boil",
	})
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, []string{"salt", "water", "salt"}, got.Ingredients)
	assert.Equal(t, []model.Review{}, got.Reviews)
	assert.False(t, bool(got.Favorite))
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLStoreFindByIDMissing(t *testing.T) {
	s := setupSQLite(t)

	got, err := s.FindByID(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLStoreFilters(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	insert(t, s, model.Recipe{Name: "Tomato Soup", Category: "Soups", Ingredients: []string{"tomato", "salt"}, Instructions: "simmer", Favorite: true})
	insert(t, s, model.Recipe{Name: "Pepper Steak", Category: "Mains", Ingredients: []string{"beef", "salt", "pepper"}, Instructions: "sear"})
	insert(t, s, model.Recipe{Name: "100% Juice", Category: "Drinks", Ingredients: []string{"orange"}, Instructions: "squeeze"})
	insert(t, s, model.Recipe{Name: "Salted_Caramel", Category: "Desserts", Ingredients: []string{"sugar", "salt"}, Instructions: "melt"})

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"name case-insensitive", Filter{NameContains: "SOUP"}, []string{"Tomato Soup"}},
		{"percent is literal", Filter{NameContains: "0%"}, []string{"100% Juice"}},
		{"underscore is literal", Filter{NameContains: "d_c"}, []string{"Salted_Caramel"}},
		{"category substring", Filter{CategoryContains: "ain"}, []string{"Pepper Steak"}},
		{"favorites", Filter{Favorite: boolPtr(true)}, []string{"Tomato Soup"}},
		{"ingredient superset", Filter{IngredientsAll: []string{"pepper", "salt"}}, []string{"Pepper Steak"}},
		{"duplicate tokens", Filter{IngredientsAll: []string{"salt", "salt"}}, []string{"Tomato Soup", "Pepper Steak", "Salted_Caramel"}},
		{"ingredients case-sensitive", Filter{IngredientsAll: []string{"Salt"}}, []string{}},
		{"no filter", Filter{}, []string{"Tomato Soup", "Pepper Steak", "100% Juice", "Salted_Caramel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMany(ctx, tt.filter, FindOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSQLStoreCreatedSince(t *testing.T) {
	s := setupSQLite(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	insert(t, s, model.Recipe{Name: "Old", Instructions: "x", CreatedAt: now.AddDate(0, 0, -10)})
	insert(t, s, model.Recipe{Name: "Edge", Instructions: "x", CreatedAt: now.AddDate(0, 0, -7)})
	insert(t, s, model.Recipe{Name: "New", Instructions: "x", CreatedAt: now.Add(-time.Hour)})

	since := now.AddDate(0, 0, -7)
	got, err := s.FindMany(context.Background(), Filter{CreatedSince: &since}, FindOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Edge", "New"}, names(got))
}

func TestSQLStorePaginationAndSort(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	for _, n := range []string{"c", "a", "e", "b", "d"} {
		insert(t, s, model.Recipe{Name: n, Instructions: "x"})
	}

	page, err := s.FindMany(ctx, Filter{}, FindOptions{Skip: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "b"}, names(page))

	sorted, err := s.FindMany(ctx, Filter{}, FindOptions{Sort: []SortField{{Field: FieldName, Descending: true}}, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c"}, names(sorted))

	_, err = s.FindMany(ctx, Filter{}, FindOptions{Sort: []SortField{{Field: "instructions"}}})
	assert.ErrorIs(t, err, ErrUnsupportedField)
}

func TestSQLStoreUpdateByID(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	created := insert(t, s, model.Recipe{Name: "Soup", Category: "Starter", Ingredients: []string{"salt"}, Instructions: "boil"})

	later := created.UpdatedAt.Add(time.Minute)
	name := "Better Soup"
	ingredients := []string{"salt", "pepper"}
	updated, err := s.UpdateByID(ctx, created.ID, Update{
		Name:          &name,
		Ingredients:   &ingredients,
		Favorite:      boolPtr(true),
		AppendReviews: []model.Review{{Rating: 5, Comment: "great", CreatedAt: later}},
		UpdatedAt:     later,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Better Soup", updated.Name)
	assert.Equal(t, "Starter", updated.Category)
	assert.Equal(t, "boil", updated.Instructions)
	assert.Equal(t, []string{"salt", "pepper"}, updated.Ingredients)
	assert.True(t, bool(updated.Favorite))
	require.Len(t, updated.Reviews, 1)
	assert.Equal(t, 5.0, updated.Reviews[0].Rating)
	assert.True(t, later.Equal(updated.UpdatedAt))
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	// reviews append, never replace
	again, err := s.UpdateByID(ctx, created.ID, Update{
		AppendReviews: []model.Review{{Rating: 3, Comment: "fine", CreatedAt: later}},
		UpdatedAt:     later,
	})
	require.NoError(t, err)
	require.Len(t, again.Reviews, 2)
	assert.Equal(t, "great", again.Reviews[0].Comment)
	assert.Equal(t, "fine", again.Reviews[1].Comment)
}

func TestSQLStoreUpdateMissing(t *testing.T) {
	s := setupSQLite(t)

	got, err := s.UpdateByID(context.Background(), primitive.NewObjectID(), Update{UpdatedAt: time.Now()})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLStoreDeleteByID(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	created := insert(t, s, model.Recipe{Name: "Soup", Ingredients: []string{"salt"}, Instructions: "boil"})

	deleted, err := s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// ingredient rows go with the recipe
	var counts []model.IngredientCount
	require.NoError(t, s.Aggregate(ctx, PopularIngredientsPipeline(10), &counts))
	assert.Empty(t, counts)
}

func TestSQLStorePopularIngredients(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	insert(t, s, model.Recipe{Name: "a", Instructions: "x", Ingredients: []string{"salt", "water", "salt"}})
	insert(t, s, model.Recipe{Name: "b", Instructions: "x", Ingredients: []string{"salt", "pepper"}})
	insert(t, s, model.Recipe{Name: "c", Instructions: "x", Ingredients: []string{"pepper", "Salt"}})

	var counts []model.IngredientCount
	require.NoError(t, s.Aggregate(ctx, PopularIngredientsPipeline(10), &counts))

	require.Len(t, counts, 4)
	assert.Equal(t, model.IngredientCount{Ingredient: "salt", Count: 3}, counts[0])
	assert.Equal(t, model.IngredientCount{Ingredient: "pepper", Count: 2}, counts[1])

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	assert.Equal(t, int64(7), total)

	var top []model.IngredientCount
	require.NoError(t, s.Aggregate(ctx, PopularIngredientsPipeline(1), &top))
	assert.Equal(t, []model.IngredientCount{{Ingredient: "salt", Count: 3}}, top)
}

func TestSQLStoreRejectsUnsupportedPipeline(t *testing.T) {
	s := setupSQLite(t)
	var out []model.IngredientCount

	err := s.Aggregate(context.Background(), Pipeline{GroupCount{Field: FieldName}}, &out)
	assert.ErrorIs(t, err, ErrUnsupportedPipeline)

	err = s.Aggregate(context.Background(), Pipeline{Unwind{Field: FieldIngredients}}, &out)
	assert.ErrorIs(t, err, ErrUnsupportedPipeline)
}

func TestSQLStoreHealthCheck(t *testing.T) {
	s := setupSQLite(t)
	assert.NoError(t, s.HealthCheck(context.Background()))
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "mysql://localhost/recipes", "", logging.NullLogger())
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func boolPtr(b bool) *bool { return &b }
