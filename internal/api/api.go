package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/recipes"
	"github.com/pageza/mealmatch/backend/internal/service"
)

// Dependencies are the services the HTTP layer delegates to.
type Dependencies struct {
	Tokens     service.ITokenService
	Households service.IHouseholdService
	Matches    service.IMatchService
	Recipes    recipes.Provider
	// SwipeLimiter is optional; nil disables swipe rate limiting.
	SwipeLimiter *middleware.RateLimiter
	// CandidateBatch is the candidate limit used when the request gives none.
	CandidateBatch int
	Logger         *zap.Logger
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "MealMatch API is running",
		"version": "v1.0.0",
	})
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		NewAccountHandler(deps.Households, deps.Logger).RegisterRoutes(v1)
		NewHouseholdHandler(deps.Households, deps.Logger).RegisterRoutes(v1)
		NewSwipeHandler(deps.Matches, deps.SwipeLimiter, deps.CandidateBatch, deps.Logger).RegisterRoutes(v1)
		NewShoppingHandler(deps.Households, deps.Logger).RegisterRoutes(v1)
		NewPlanHandler(deps.Households, deps.Logger).RegisterRoutes(v1)
		NewRecipeHandler(deps.Recipes, deps.Logger).RegisterRoutes(v1)
	}
}

// identity returns the authenticated caller set by AuthMiddleware.
func identity(c *gin.Context) service.Identity {
	return service.Identity{
		UID:   c.GetString(middleware.ContextUserID),
		Name:  c.GetString(middleware.ContextUserName),
		Email: c.GetString(middleware.ContextUserEmail),
	}
}

// bindJSON decodes the request body and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return false
	}
	return true
}
