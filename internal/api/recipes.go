package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/recipes"
)

// RecipeHandler exposes single recipes from the configured provider.
type RecipeHandler struct {
	provider recipes.Provider
	logger   *zap.Logger
}

func NewRecipeHandler(provider recipes.Provider, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{provider: provider, logger: logger}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recipes/:id", h.GetRecipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.provider.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}
