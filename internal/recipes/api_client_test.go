package recipes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/types"
)

func TestAPIClientListAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recipes": [
			{"id": "1", "title": "Pasta Bake"},
			{"title": "missing id"},
			{"idMeal": "52772", "strMeal": "Teriyaki Chicken Casserole"}
		]}`))
	}))
	defer srv.Close()

	recipes, err := NewAPIClient(srv.URL+"/", srv.Client()).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "1", recipes[0].ID)
	assert.Equal(t, "52772", recipes[1].ID)
}

func TestAPIClientGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/recipes/52772":
			w.Write([]byte(teriyakiMeal))
		case "/api/recipes/wrapped":
			w.Write([]byte(`{"recipe": {"id": "wrapped", "title": "Wrapped"}}`))
		case "/api/recipes/broken":
			w.Write([]byte(`{"id": "broken"`))
		case "/api/recipes/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, srv.Client())
	ctx := context.Background()

	r, err := c.GetByID(ctx, "52772")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki Chicken Casserole", r.Title)
	assert.Len(t, r.Ingredients, 2)

	r, err = c.GetByID(ctx, "wrapped")
	require.NoError(t, err)
	assert.Equal(t, "Wrapped", r.Title)

	_, err = c.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = c.GetByID(ctx, "broken")
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)

	_, err = c.GetByID(ctx, "down")
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}

func TestAPIClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAPIClient(url, nil).ListAll(context.Background())
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}
