package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// maxCandidateLimit bounds the limit query parameter.
const maxCandidateLimit = 100

// SwipeHandler serves swipes and the candidate list.
type SwipeHandler struct {
	matches      service.IMatchService
	limiter      *middleware.RateLimiter
	defaultLimit int
	logger       *zap.Logger
}

func NewSwipeHandler(matches service.IMatchService, limiter *middleware.RateLimiter, defaultLimit int, logger *zap.Logger) *SwipeHandler {
	return &SwipeHandler{
		matches:      matches,
		limiter:      limiter,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (h *SwipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	households := router.Group("/households/:id")
	{
		swipe := []gin.HandlerFunc{h.Swipe}
		if h.limiter != nil {
			swipe = append([]gin.HandlerFunc{h.limiter.RateLimitMiddleware()}, swipe...)
		}
		households.POST("/swipes", swipe...)
		households.GET("/candidates", h.Candidates)
	}
}

func (h *SwipeHandler) Swipe(c *gin.Context) {
	var req types.SwipeRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.matches.Swipe(c.Request.Context(), service.SwipeInput{
		HouseholdID: c.Param("id"),
		UID:         identity(c).UID,
		Slot:        models.Slot(req.Slot),
		RecipeID:    req.RecipeID,
		Direction:   models.Direction(strings.ToLower(req.Direction)),
	})
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"household":      res.Household,
		"recorded":       res.Recorded,
		"match":          res.Match,
		"match_count":    res.MatchCount,
		"plan_completed": res.PlanCompleted,
	})
}

func (h *SwipeHandler) Candidates(c *gin.Context) {
	filter := service.CandidateFilter{Limit: h.defaultLimit}

	if diets := c.Query("diet"); diets != "" {
		for _, d := range strings.Split(diets, ",") {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				filter.Diets = append(filter.Diets, d)
			}
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxCandidateLimit {
			middleware.RespondError(c, h.logger, types.Invalidf("limit must be between 1 and %d", maxCandidateLimit))
			return
		}
		filter.Limit = limit
	}

	res, err := h.matches.Candidates(c.Request.Context(), c.Param("id"), identity(c).UID, filter)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": res.Recipes, "degraded": res.Degraded})
}
