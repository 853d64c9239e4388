// Package recipes fetches recipes from the configured upstream and normalizes
// every payload shape into models.Recipe.
package recipes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/mealmatch/backend/config"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// Provider is a source of normalized recipes.
type Provider interface {
	// ListAll returns the recipes currently offered for swiping.
	ListAll(ctx context.Context) ([]models.Recipe, error)
	// GetByID returns one recipe, or types.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
}

// NewProvider builds the provider selected by cfg. When rdb is non-nil the
// provider is wrapped in a Redis cache.
func NewProvider(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (Provider, error) {
	client := &http.Client{Timeout: cfg.RecipeTimeout}

	var p Provider
	switch cfg.RecipeProvider {
	case "recipeapi":
		p = NewAPIClient(cfg.RecipeAPIURL, client)
	case "mealdb":
		p = NewMealDBClient(MealDBBaseURL, client, cfg.CandidateBatch)
	case "catalog":
		p = NewCatalogProvider(db)
	default:
		return nil, fmt.Errorf("unknown recipe provider %q", cfg.RecipeProvider)
	}

	logger.Info("recipe provider configured", zap.String("provider", cfg.RecipeProvider))
	if rdb == nil {
		return p, nil
	}
	return NewCached(p, rdb, cfg.RecipeCacheTTL, logger), nil
}

func upstreamErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, types.ErrUpstreamUnavailable, err)
}
