package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebook/backend/internal/service"
)

const invalidBody = "Invalid request body"

type RecipeHandler struct {
	svc service.IRecipeService
}

func NewRecipeHandler(svc service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{svc: svc}
}

// RegisterRoutes mounts the catalog. Older clients still call the
// /recipes/search, /recipes/category, /recipes/paginate and
// /recipes/:id/favorite paths, so those stay as aliases.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	router.GET("/search/:query", h.SearchRecipes)
	router.GET("/category/:category", h.RecipesByCategory)
	router.PATCH("/:id/favorite", limit, h.ToggleFavorite)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/paginate", h.PaginateRecipes)
		recipes.GET("/favorites", h.FavoriteRecipes)
		recipes.GET("/popular-ingredients", h.PopularIngredients)
		recipes.GET("/ingredients", h.RecipesByIngredients)
		recipes.GET("/recent/:days", h.RecentRecipes)
		recipes.GET("/search/:query", h.SearchRecipes)
		recipes.GET("/category/:category", h.RecipesByCategory)
		recipes.GET("/:id", h.GetRecipe)

		recipes.POST("", limit, h.CreateRecipe)
		recipes.POST("/:id/review", limit, h.AddReview)
		recipes.PUT("/:id", limit, h.UpdateRecipe)
		recipes.DELETE("/:id", limit, h.DeleteRecipe)
		recipes.PATCH("/:id/favorite", limit, h.ToggleFavorite)
	}
}

// ListRecipes returns the whole catalog, or one page of it when any paging
// parameter is given.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	if hasPaging(c) {
		h.paginate(c, "Failed to fetch recipes")
		return
	}

	recipes, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) PaginateRecipes(c *gin.Context) {
	h.paginate(c, "Failed to fetch paginated recipes")
}

func (h *RecipeHandler) paginate(c *gin.Context, failure string) {
	req := service.PageRequest{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	}

	recipes, err := h.svc.Paginate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Error retrieving recipe")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	recipes, err := h.svc.SearchByName(c.Request.Context(), c.Param("query"))
	if err != nil {
		writeError(c, err, "Failed to search recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) RecipesByCategory(c *gin.Context) {
	recipes, err := h.svc.FilterByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		writeError(c, err, "Failed to fetch recipes by category")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) FavoriteRecipes(c *gin.Context) {
	recipes, err := h.svc.ListFavorites(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch favorite recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) PopularIngredients(c *gin.Context) {
	counts, err := h.svc.PopularIngredients(c.Request.Context(), 10)
	if err != nil {
		writeError(c, err, "Failed to fetch popular ingredients")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// RecipesByIngredients expects a comma separated ingredients parameter
func (h *RecipeHandler) RecipesByIngredients(c *gin.Context) {
	raw := c.Query("ingredients")
	if raw == "" {
		abort(c, http.StatusBadRequest, "Ingredients query parameter is required")
		return
	}

	recipes, err := h.svc.FindByIngredients(c.Request.Context(), strings.Split(raw, ","))
	if err != nil {
		writeError(c, err, "Failed to fetch recipes by ingredients")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) RecentRecipes(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil {
		abort(c, http.StatusBadRequest, "Days must be a non-negative integer")
		return
	}

	recipes, err := h.svc.RecentSince(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to fetch recent recipes")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var input service.CreateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, invalidBody)
		return
	}

	recipe, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err, "Failed to add recipe")
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) AddReview(c *gin.Context) {
	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, invalidBody)
		return
	}

	recipe, err := h.svc.AddReview(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err, "Failed to add review")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Review added successfully",
		"recipe":  recipe,
	})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var input service.UpdateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, invalidBody)
		return
	}

	recipe, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err, "Failed to update recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Recipe updated successfully",
		"updatedRecipe": recipe,
	})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete recipe")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	recipe, err := h.svc.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to update favorite status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Recipe marked as favorite: %t", bool(recipe.Favorite)),
		"recipe":  recipe,
	})
}

func hasPaging(c *gin.Context) bool {
	for _, key := range []string{"page", "limit", "sortBy", "order"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

// queryInt returns 0 for a missing or malformed value, which the service
// replaces with its default.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
