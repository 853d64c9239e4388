package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// MockRecipeProvider is a mock implementation of the recipe provider
type MockRecipeProvider struct {
	mock.Mock
}

func (m *MockRecipeProvider) ListAll(ctx context.Context) ([]models.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeProvider) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

// MockArchiver is a mock implementation of the session archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, h *models.Household) (string, error) {
	args := m.Called(ctx, h)
	return args.String(0), args.Error(1)
}

// StaticProvider serves a fixed recipe list. It is safe for concurrent use.
type StaticProvider struct {
	mu      sync.Mutex
	recipes []models.Recipe
	lookups int
	Err     error
}

// NewStaticProvider returns a provider serving recipes in order.
func NewStaticProvider(recipes ...models.Recipe) *StaticProvider {
	return &StaticProvider{recipes: recipes}
}

func (p *StaticProvider) ListAll(ctx context.Context) ([]models.Recipe, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]models.Recipe, len(p.recipes))
	copy(out, p.recipes)
	return out, nil
}

func (p *StaticProvider) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	if p.Err != nil {
		return nil, p.Err
	}
	for _, r := range p.recipes {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, types.NotFoundf("recipe %s", id)
}

// Lookups returns how many GetByID calls were made.
func (p *StaticProvider) Lookups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookups
}

// Recipe builds a recipe with three ingredients derived from its title.
func Recipe(id, title string) models.Recipe {
	return models.Recipe{
		ID:    id,
		Title: title,
		Ingredients: []models.Ingredient{
			{Name: title + " base", Measure: "200g"},
			{Name: "salt", Measure: "1 tsp"},
			{Name: "olive oil", Measure: "2 tbsp"},
		},
	}
}

// Recipes builds n recipes with ids r1..rn.
func Recipes(n int) []models.Recipe {
	out := make([]models.Recipe, n)
	for i := range out {
		out[i] = Recipe(fmt.Sprintf("r%d", i+1), fmt.Sprintf("Recipe %d", i+1))
	}
	return out
}
