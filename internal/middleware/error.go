package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Count *int   `json:"match_count,omitempty"`
}

// StatusFor maps a service error to its HTTP status and machine-readable code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrPrecondition):
		return http.StatusForbidden, "precondition_failed"
	case errors.Is(err, types.ErrMatchCapReached):
		return http.StatusConflict, "match_cap_reached"
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, types.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// RespondError writes err as a JSON error response. Internal errors are
// logged and their message is not exposed.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: code}

	var capErr *types.MatchCapError
	if errors.As(err, &capErr) {
		resp.Error = types.ErrMatchCapReached.Error()
		resp.Count = &capErr.Count
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = "internal server error"
	}

	c.AbortWithStatusJSON(status, resp)
}

// Recovery turns panics into a JSON 500 response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
	})
}
