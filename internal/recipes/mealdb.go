package recipes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// MealDBBaseURL is the public TheMealDB v1 endpoint.
const MealDBBaseURL = "https://www.themealdb.com/api/json/v1/1"

const mealDBConcurrency = 4

// MealDBClient offers random TheMealDB meals for swiping.
type MealDBClient struct {
	baseURL string
	client  *http.Client
	batch   int
}

// NewMealDBClient creates a client that draws batch random meals per ListAll.
func NewMealDBClient(baseURL string, client *http.Client, batch int) *MealDBClient {
	if client == nil {
		client = http.DefaultClient
	}
	if batch <= 0 {
		batch = 10
	}
	return &MealDBClient{baseURL: strings.TrimRight(baseURL, "/"), client: client, batch: batch}
}

// ListAll calls random.php batch times in parallel and returns the distinct
// meals in draw order. It fails only when every draw fails.
func (c *MealDBClient) ListAll(ctx context.Context) ([]models.Recipe, error) {
	draws := make([]*models.Recipe, c.batch)
	errs := make([]error, c.batch)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mealDBConcurrency)
	for i := 0; i < c.batch; i++ {
		i := i
		g.Go(func() error {
			meals, err := c.meals(gctx, "/random.php")
			if err == nil && len(meals) > 0 {
				draws[i] = &meals[0]
			}
			errs[i] = err
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool, c.batch)
	recipes := make([]models.Recipe, 0, c.batch)
	var lastErr error
	for i, r := range draws {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		if r == nil || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		recipes = append(recipes, *r)
	}
	if len(recipes) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return recipes, nil
}

// GetByID calls lookup.php?i={id}.
func (c *MealDBClient) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	meals, err := c.meals(ctx, "/lookup.php?i="+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, types.NotFoundf("meal %s", id)
	}
	return &meals[0], nil
}

// meals fetches path and normalizes the {"meals": [...]} envelope. A null
// meals value is an empty result.
func (c *MealDBClient) meals(ctx context.Context, path string) ([]models.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, upstreamErr("GET "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr("read "+path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamErr("GET "+path, fmt.Errorf("status %d", resp.StatusCode))
	}

	var envelope struct {
		Meals []map[string]interface{} `json:"meals"`
	}
	if err := decodeJSON(body, &envelope); err != nil {
		return nil, upstreamErr("decode "+path, err)
	}

	out := make([]models.Recipe, 0, len(envelope.Meals))
	for _, raw := range envelope.Meals {
		r, err := Normalize(raw)
		if err != nil {
			return nil, upstreamErr("normalize "+path, err)
		}
		out = append(out, r)
	}
	return out, nil
}
