package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/shopping"
	"github.com/pageza/mealmatch/backend/internal/types"
)

type ShoppingHandler struct {
	households service.IHouseholdService
	logger     *zap.Logger
}

func NewShoppingHandler(households service.IHouseholdService, logger *zap.Logger) *ShoppingHandler {
	return &ShoppingHandler{households: households, logger: logger}
}

func (h *ShoppingHandler) RegisterRoutes(router *gin.RouterGroup) {
	list := router.Group("/households/:id/shopping-list")
	{
		list.GET("", h.GetShoppingList)
		list.DELETE("", h.ResetShoppingList)
		list.POST("/toggle", h.ToggleItem)
		list.POST("/items", h.AddItem)
		list.POST("/regenerate", h.Regenerate)
	}
}

// respond writes the household's list with recipe sections in match order.
func (h *ShoppingHandler) respond(c *gin.Context, household *models.Household) {
	list := household.CurrentSession.ShoppingList
	body := gin.H{"sections": shopping.Ordered(list), "last_updated": nil}
	if list != nil {
		body["last_updated"] = list.LastUpdated
	}
	c.JSON(http.StatusOK, body)
}

func (h *ShoppingHandler) GetShoppingList(c *gin.Context) {
	household, err := h.households.GetHouseholdForMember(c.Request.Context(), c.Param("id"), identity(c).UID)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	h.respond(c, household)
}

func (h *ShoppingHandler) ToggleItem(c *gin.Context) {
	var req types.ToggleItemRequest
	if !bindJSON(c, &req) {
		return
	}

	household, err := h.households.ToggleShoppingItem(c.Request.Context(), identity(c), c.Param("id"), req.Section, *req.Index)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	h.respond(c, household)
}

func (h *ShoppingHandler) AddItem(c *gin.Context) {
	var req types.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}

	household, err := h.households.AddShoppingItem(c.Request.Context(), identity(c), c.Param("id"), req.Name, req.Quantity)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	h.respond(c, household)
}

func (h *ShoppingHandler) Regenerate(c *gin.Context) {
	household, err := h.households.RegenerateShoppingList(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	h.respond(c, household)
}

func (h *ShoppingHandler) ResetShoppingList(c *gin.Context) {
	household, err := h.households.ResetShoppingList(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	h.respond(c, household)
}
