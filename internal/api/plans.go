package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/types"
)

type PlanHandler struct {
	households service.IHouseholdService
	logger     *zap.Logger
}

func NewPlanHandler(households service.IHouseholdService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{households: households, logger: logger}
}

func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/households/:id/plans")
	{
		plans.PUT("/:date/:meal", h.SetPlannedMeal)
		plans.DELETE("/:date/:meal", h.ClearPlannedMeal)
	}
}

func mealParam(c *gin.Context) models.MealType {
	return models.MealType(strings.ToLower(c.Param("meal")))
}

func (h *PlanHandler) SetPlannedMeal(c *gin.Context) {
	var req types.PlannedMealRequest
	if !bindJSON(c, &req) {
		return
	}

	household, err := h.households.SetPlannedMeal(c.Request.Context(), identity(c), c.Param("id"), c.Param("date"), mealParam(c),
		service.PlannedMealInput{RecipeID: req.RecipeID, CustomName: req.CustomName})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekly_plans": household.WeeklyPlans})
}

func (h *PlanHandler) ClearPlannedMeal(c *gin.Context) {
	household, err := h.households.ClearPlannedMeal(c.Request.Context(), identity(c), c.Param("id"), c.Param("date"), mealParam(c))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekly_plans": household.WeeklyPlans})
}
