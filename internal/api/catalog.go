package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

// queryList collects a repeated or comma separated query parameter.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetCatalogItems returns the catalog items that satisfy the restrictions
// and preferences given in the query.
func (h *Handler) GetCatalogItems(c *gin.Context) {
	restrictions := queryList(c, "restrictions")
	preferences := queryList(c, "preferences")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	items, err := h.Items.FetchCandidates(ctx, restrictions, preferences)
	if err != nil {
		h.respondError(c, "catalog query", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCatalogItem adds an item to the grocery catalog.
func (h *Handler) CreateCatalogItem(c *gin.Context) {
	var item grocery.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.Name = grocery.Normalize(item.Name)
	if err := h.validate.Struct(&item); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Items.SaveItem(ctx, item); err != nil {
		h.respondError(c, "catalog save", err)
		return
	}
	h.Logger.Info("catalog item added", zap.String("name", item.Name))
	c.JSON(http.StatusCreated, item)
}

// GetCatalogRecipes returns the recipe catalog.
func (h *Handler) GetCatalogRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	recipes, err := h.Recipes.ListRecipes(ctx)
	if err != nil {
		h.respondError(c, "recipe query", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// CreateCatalogRecipe adds a recipe to the catalog.
func (h *Handler) CreateCatalogRecipe(c *gin.Context) {
	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.validate.Struct(&r); err != nil {
		badRequest(c, err)
		return
	}
	r.ID = 0

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Recipes.SaveRecipe(ctx, &r); err != nil {
		h.respondError(c, "recipe save", err)
		return
	}
	h.Logger.Info("catalog recipe added", zap.Int64("id", r.ID), zap.String("title", r.Title))
	c.JSON(http.StatusCreated, r)
}
