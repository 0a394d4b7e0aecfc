package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/repository"
	"github.com/kevin-phan-25/pantrypal/pkg/errors"
	"github.com/kevin-phan-25/pantrypal/pkg/middleware"
)

// RecipesHandler suggests recipes for whatever is currently in the pantry.
type RecipesHandler struct {
	logger    *zap.Logger
	store     repository.Store
	suggester RecipeSuggester
}

// NewRecipesHandler creates a recipes handler.
func NewRecipesHandler(logger *zap.Logger, store repository.Store, suggester RecipeSuggester) *RecipesHandler {
	return &RecipesHandler{
		logger:    logger,
		store:     store,
		suggester: suggester,
	}
}

// Suggest handles GET /api/v1/recipes.
func (h *RecipesHandler) Suggest(c *gin.Context) {
	if !h.suggester.Enabled() {
		c.JSON(http.StatusOK, gin.H{
			"error": "Add SPOONACULAR_KEY to the environment (free at spoonacular.com)",
		})
		return
	}

	accountID := middleware.GetAccountID(c)
	doc, err := h.store.Get(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("Failed to load pantry for recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewDatabaseError("load pantry", err))
		return
	}

	ingredients := make([]string, 0, len(doc.Pantry))
	for _, item := range doc.Pantry {
		if item.DisplayName != "" {
			ingredients = append(ingredients, item.DisplayName)
		}
	}
	if len(ingredients) == 0 {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}

	recipes, err := h.suggester.Suggest(c.Request.Context(), ingredients)
	if err != nil {
		h.logger.Error("Recipe suggestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errors.NewStandardError("UpstreamError", "recipe service is unavailable", ""))
		return
	}

	c.JSON(http.StatusOK, recipes)
}
