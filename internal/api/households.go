package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/types"
)

type HouseholdHandler struct {
	households service.IHouseholdService
	logger     *zap.Logger
}

func NewHouseholdHandler(households service.IHouseholdService, logger *zap.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: households, logger: logger}
}

func (h *HouseholdHandler) RegisterRoutes(router *gin.RouterGroup) {
	households := router.Group("/households")
	{
		households.POST("", h.CreateHousehold)
		households.POST("/join", h.JoinHousehold)
		households.GET("/:id", h.GetHousehold)
		households.DELETE("/:id/members/me", h.LeaveHousehold)
		households.POST("/:id/session/reset", h.ResetSession)
	}
}

func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	var req types.CreateHouseholdRequest
	// the body is optional
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	household, err := h.households.CreateHousehold(c.Request.Context(), identity(c), req.Name)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"household": household})
}

func (h *HouseholdHandler) JoinHousehold(c *gin.Context) {
	var req types.JoinHouseholdRequest
	if !bindJSON(c, &req) {
		return
	}

	household, err := h.households.JoinHousehold(c.Request.Context(), identity(c), req.InviteCode)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household": household})
}

func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	household, err := h.households.GetHouseholdForMember(c.Request.Context(), c.Param("id"), identity(c).UID)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household": household})
}

// LeaveHousehold removes the caller. The household is gone once its last
// member leaves, which the response reports as deleted.
func (h *HouseholdHandler) LeaveHousehold(c *gin.Context) {
	household, err := h.households.LeaveHousehold(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household": household, "deleted": household == nil})
}

func (h *HouseholdHandler) ResetSession(c *gin.Context) {
	var req types.ResetSessionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	household, err := h.households.ResetSession(c.Request.Context(), identity(c), c.Param("id"), req.ClearPreferences)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"household": household})
}
