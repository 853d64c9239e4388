package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
	"github.com/pageza/mealmatch/backend/internal/types"
)

type swipeResponse struct {
	Household     *models.Household `json:"household"`
	Recorded      bool              `json:"recorded"`
	Match         *models.Recipe    `json:"match"`
	MatchCount    int               `json:"match_count"`
	PlanCompleted bool              `json:"plan_completed"`
}

func (s *testServer) swipe(hid string, who *types.TokenClaims, recipeID, direction string) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodPost, "/api/v1/households/"+hid+"/swipes", who, map[string]string{
		"recipe_id": recipeID,
		"direction": direction,
	})
}

func TestSwipeMutualLike(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipe("52772", "Teriyaki Chicken Casserole"))
	h := s.pair()

	w := s.swipe(h.ID, &alice, "52772", "right")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first swipeResponse
	decode(t, w, &first)
	assert.True(t, first.Recorded)
	assert.Nil(t, first.Match)

	w = s.swipe(h.ID, &bob, "52772", "right")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var second swipeResponse
	decode(t, w, &second)
	require.NotNil(t, second.Match)
	assert.Equal(t, "Teriyaki Chicken Casserole", second.Match.Title)
	assert.Equal(t, 1, second.MatchCount)
	assert.False(t, second.PlanCompleted)
	assert.True(t, second.Household.CurrentSession.HasMatch("52772"))
}

func TestSwipeValidation(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipes(1)...)
	h := s.pair()

	assert.Equal(t, http.StatusBadRequest, s.swipe(h.ID, &alice, "r1", "up").Code)
	assert.Equal(t, http.StatusBadRequest, s.swipe(h.ID, &alice, "", "right").Code)
	assert.Equal(t, http.StatusForbidden, s.swipe(h.ID, &carol, "r1", "right").Code)

	w := s.do(http.MethodPost, "/api/v1/households/"+h.ID+"/swipes", &alice, map[string]string{
		"recipe_id": "r1", "direction": "right", "slot": "user2",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwipeSeventhMatchCompletesPlan(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipes(8)...)
	h := s.pair()

	var last swipeResponse
	for i := 1; i <= models.MaxMatchedMeals; i++ {
		id := fmt.Sprintf("r%d", i)
		require.Equal(t, http.StatusOK, s.swipe(h.ID, &alice, id, "right").Code)
		w := s.swipe(h.ID, &bob, id, "right")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decode(t, w, &last)
	}
	assert.True(t, last.PlanCompleted)
	assert.Equal(t, models.MaxMatchedMeals, last.MatchCount)
	assert.Equal(t, models.SessionCompleted, last.Household.CurrentSession.Status)

	w := s.swipe(h.ID, &alice, "r8", "right")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"match cap reached","code":"match_cap_reached","match_count":7}`, w.Body.String())

	// dislikes are still recorded
	assert.Equal(t, http.StatusOK, s.swipe(h.ID, &alice, "r8", "left").Code)

	w = s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/shopping-list", &bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list shoppingResponse
	decode(t, w, &list)
	require.Len(t, list.Sections, models.MaxMatchedMeals)
	for i, section := range list.Sections {
		assert.Equal(t, fmt.Sprintf("r%d", i+1), section.Key)
	}
}

func TestSwipeProviderDown(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipes(1)...)
	h := s.pair()
	require.Equal(t, http.StatusOK, s.swipe(h.ID, &alice, "r1", "right").Code)

	s.provider.Err = fmt.Errorf("mealdb: %w", types.ErrUpstreamUnavailable)
	assert.Equal(t, http.StatusBadGateway, s.swipe(h.ID, &bob, "r1", "right").Code)
}

func TestCandidates(t *testing.T) {
	recipes := testhelpers.Recipes(4)
	recipes[2].Dietary.Vegan = true
	s := newTestServer(t, recipes...)
	h := s.pair()
	require.Equal(t, http.StatusOK, s.swipe(h.ID, &alice, "r1", "left").Code)

	type candidates struct {
		Recipes  []models.Recipe `json:"recipes"`
		Degraded bool            `json:"degraded"`
	}
	ids := func(c candidates) []string {
		var out []string
		for _, r := range c.Recipes {
			out = append(out, r.ID)
		}
		return out
	}

	w := s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/candidates?limit=2", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got candidates
	decode(t, w, &got)
	assert.Equal(t, []string{"r2", "r3"}, ids(got))

	w = s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/candidates?diet=Vegan", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = candidates{}
	decode(t, w, &got)
	assert.Equal(t, []string{"r3"}, ids(got))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/candidates?diet=keto", &alice, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/candidates?limit=0", &alice, nil).Code)

	s.provider.Err = types.ErrUpstreamUnavailable
	w = s.do(http.MethodGet, "/api/v1/households/"+h.ID+"/candidates", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = candidates{}
	decode(t, w, &got)
	assert.True(t, got.Degraded)
	assert.Empty(t, got.Recipes)
}

func TestGetRecipe(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipe("52772", "Teriyaki Chicken Casserole"))

	w := s.do(http.MethodGet, "/api/v1/recipes/52772", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Recipe models.Recipe `json:"recipe"`
	}
	decode(t, w, &got)
	assert.Equal(t, "Teriyaki Chicken Casserole", got.Recipe.Title)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/recipes/nope", &alice, nil).Code)
}
