package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/service"
)

// AccountHandler serves the caller's own account.
type AccountHandler struct {
	households service.IHouseholdService
	logger     *zap.Logger
}

func NewAccountHandler(households service.IHouseholdService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{households: households, logger: logger}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.Me)
}

// Me returns the caller's account and, when linked, their household.
func (h *AccountHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	who := identity(c)

	account, err := h.households.GetAccount(ctx, who)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}

	var household *models.Household
	if account.HouseholdID != "" {
		household, err = h.households.GetHouseholdForMember(ctx, account.HouseholdID, who.UID)
		if err != nil {
			middleware.RespondError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "household": household})
}
