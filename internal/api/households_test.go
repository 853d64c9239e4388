package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/middleware"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
)

func TestCreateAndJoinHousehold(t *testing.T) {
	s := newTestServer(t)
	h := s.pair()

	assert.Equal(t, "The Flat", h.Name)
	assert.Len(t, h.InviteCode, 6)
	assert.Equal(t, "u1", h.Users.User1.UID)
	assert.Equal(t, "u2", h.Users.User2.UID)

	w := s.do(http.MethodGet, "/api/v1/households/"+h.ID, &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got householdResponse
	decode(t, w, &got)
	assert.Equal(t, h.ID, got.Household.ID)
}

func TestCreateHouseholdWithoutBody(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/households", &alice, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created householdResponse
	decode(t, w, &created)
	assert.Equal(t, "Alice's household", created.Household.Name)
}

func TestJoinHouseholdErrors(t *testing.T) {
	s := newTestServer(t)
	h := s.pair()

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"missing code", map[string]string{}, http.StatusBadRequest, "invalid_input"},
		{"unknown code", map[string]string{"invite_code": "ZZZZZZ"}, http.StatusNotFound, "not_found"},
		{"full household", map[string]string{"invite_code": h.InviteCode}, http.StatusForbidden, "precondition_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/v1/households/join", &carol, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var resp middleware.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestGetHouseholdNonMember(t *testing.T) {
	s := newTestServer(t)
	h := s.pair()

	w := s.do(http.MethodGet, "/api/v1/households/"+h.ID, &carol, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/v1/households/missing", &carol, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaveHousehold(t *testing.T) {
	s := newTestServer(t)
	h := s.pair()

	w := s.do(http.MethodDelete, "/api/v1/households/"+h.ID+"/members/me", &bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first struct {
		householdResponse
		Deleted bool `json:"deleted"`
	}
	decode(t, w, &first)
	assert.False(t, first.Deleted)
	assert.Empty(t, first.Household.Users.User2.UID)

	w = s.do(http.MethodDelete, "/api/v1/households/"+h.ID+"/members/me", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var last struct {
		householdResponse
		Deleted bool `json:"deleted"`
	}
	decode(t, w, &last)
	assert.True(t, last.Deleted)
	assert.Nil(t, last.Household)

	w = s.do(http.MethodGet, "/api/v1/households/"+h.ID, &alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetSession(t *testing.T) {
	s := newTestServer(t, testhelpers.Recipe("52772", "Teriyaki Chicken Casserole"))
	h := s.pair()
	s.swipe(h.ID, &alice, "52772", "right")
	s.swipe(h.ID, &bob, "52772", "right")

	w := s.do(http.MethodPost, "/api/v1/households/"+h.ID+"/session/reset", &alice, map[string]bool{"clear_preferences": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got householdResponse
	decode(t, w, &got)
	assert.Empty(t, got.Household.CurrentSession.MatchedMeals)
	assert.False(t, got.Household.Users.User1.MealPreferences.Decided("52772"))
	assert.False(t, got.Household.Users.User2.MealPreferences.Decided("52772"))
}
