package recipes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// APIClient reads recipes from the recipe API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for the recipe API at baseURL.
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// ListAll fetches GET /api/recipes. Entries that cannot be normalized are skipped.
func (c *APIClient) ListAll(ctx context.Context) ([]models.Recipe, error) {
	body, err := c.get(ctx, "/api/recipes")
	if err != nil {
		return nil, err
	}

	// the list comes bare or wrapped in {"recipes": [...]} / {"data": [...]}
	var payload interface{}
	if err := decodeJSON(body, &payload); err != nil {
		return nil, upstreamErr("decode recipe list", err)
	}
	if obj, ok := payload.(map[string]interface{}); ok {
		for _, k := range []string{"recipes", "data", "meals"} {
			if list, ok := obj[k]; ok {
				payload = list
				break
			}
		}
	}
	list, ok := payload.([]interface{})
	if !ok {
		return nil, upstreamErr("decode recipe list", fmt.Errorf("unexpected payload %T", payload))
	}

	recipes := make([]models.Recipe, 0, len(list))
	for _, item := range list {
		raw, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		r, err := Normalize(raw)
		if err != nil {
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// GetByID fetches GET /api/recipes/{id}.
func (c *APIClient) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	body, err := c.get(ctx, "/api/recipes/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := decodeJSON(body, &raw); err != nil {
		return nil, upstreamErr("decode recipe", err)
	}
	if inner, ok := raw["recipe"].(map[string]interface{}); ok {
		raw = inner
	}
	r, err := Normalize(raw)
	if err != nil {
		return nil, upstreamErr("normalize recipe "+id, err)
	}
	return &r, nil
}

func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, upstreamErr("GET "+path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamErr("read "+path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.NotFoundf("recipe api %s", path)
	case resp.StatusCode != http.StatusOK:
		return nil, upstreamErr("GET "+path, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
