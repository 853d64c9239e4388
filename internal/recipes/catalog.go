package recipes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// CatalogProvider serves recipes from the local recipes table.
type CatalogProvider struct {
	db *gorm.DB
}

// NewCatalogProvider creates a provider backed by db.
func NewCatalogProvider(db *gorm.DB) *CatalogProvider {
	return &CatalogProvider{db: db}
}

func (p *CatalogProvider) ListAll(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := p.db.WithContext(ctx).Order("created_at, id").Find(&recipes).Error; err != nil {
		return nil, upstreamErr("list catalog", err)
	}
	return recipes, nil
}

func (p *CatalogProvider) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	var r models.Recipe
	if err := p.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundf("recipe %s", id)
		}
		return nil, upstreamErr("get catalog recipe", err)
	}
	return &r, nil
}

// Upsert inserts recipes or refreshes the stored copies.
func (p *CatalogProvider) Upsert(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&recipes).Error
	if err != nil {
		return fmt.Errorf("failed to upsert recipes: %w", err)
	}
	return nil
}
