package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/api"
	"github.com/pageza/mealmatch/backend/internal/middleware"
)

// SetupRouter builds the gin engine with the shared middleware chain and
// all API routes.
func SetupRouter(deps api.Dependencies, corsOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(corsOrigins))

	api.RegisterRoutes(router, deps)

	return router
}
