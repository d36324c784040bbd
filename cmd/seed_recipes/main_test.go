package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebook/backend/internal/logging"
	"github.com/pageza/recipebook/backend/internal/service"
	"github.com/pageza/recipebook/backend/internal/testingutils"
)

func TestSeed(t *testing.T) {
	store := testingutils.NewTestStore(t)
	svc := service.NewRecipeService(store, logging.NullLogger())
	ctx := context.Background()

	input := `[
		{"name": "Pancakes", "category": "Breakfast", "ingredients": ["flour", "milk", "egg"], "instructions": "whisk and fry"},
		{"name": "", "ingredients": ["water"], "instructions": "boil"},
		{"name": "Toast", "ingredients": ["bread"], "instructions": "toast"}
	]`

	res, err := seed(ctx, svc, strings.NewReader(input), logging.NullLogger())
	require.NoError(t, err)
	assert.Equal(t, seedResult{Created: 2, Skipped: 1}, res)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeedRejectsMalformedFile(t *testing.T) {
	store := testingutils.NewTestStore(t)
	svc := service.NewRecipeService(store, logging.NullLogger())

	_, err := seed(context.Background(), svc, strings.NewReader(`{"name": "not an array"}`), logging.NullLogger())
	assert.ErrorContains(t, err, "failed to parse seed file")
}
