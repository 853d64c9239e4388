package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/service"
	"github.com/pageza/mealmatch/backend/internal/store"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
	"github.com/pageza/mealmatch/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	alice = types.TokenClaims{UserID: "u1", Name: "Alice", Email: "alice@example.com"}
	bob   = types.TokenClaims{UserID: "u2", Name: "Bob", Email: "bob@example.com"}
	carol = types.TokenClaims{UserID: "u3", Name: "Carol", Email: "carol@example.com"}
)

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	tokens   *service.TokenService
	provider *testhelpers.StaticProvider
}

func newTestServer(t *testing.T, recipes ...models.Recipe) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	st := store.New(testhelpers.SetupSQLiteDB(t))
	provider := testhelpers.NewStaticProvider(recipes...)
	tokens := service.NewTokenService("test-secret")
	households := service.NewHouseholdService(st, nil, logger)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		Tokens:         tokens,
		Households:     households,
		Matches:        service.NewMatchService(households, provider, logger),
		Recipes:        provider,
		CandidateBatch: 10,
		Logger:         logger,
	})
	return &testServer{t: t, router: router, tokens: tokens, provider: provider}
}

func (s *testServer) do(method, path string, who *types.TokenClaims, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		claims := *who
		token, err := s.tokens.GenerateToken(&claims, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

type householdResponse struct {
	Household *models.Household `json:"household"`
}

// pair creates a household for alice and lets bob join it.
func (s *testServer) pair() *models.Household {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/households", &alice, map[string]string{"name": "The Flat"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var created householdResponse
	decode(s.t, w, &created)

	w = s.do(http.MethodPost, "/api/v1/households/join", &bob, map[string]string{"invite_code": created.Household.InviteCode})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var joined householdResponse
	decode(s.t, w, &joined)
	return joined.Household
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/me", &carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before struct {
		Account   models.Account    `json:"account"`
		Household *models.Household `json:"household"`
	}
	decode(t, w, &before)
	assert.Equal(t, "u3", before.Account.UID)
	assert.Empty(t, before.Account.HouseholdID)
	assert.Nil(t, before.Household)

	h := s.pair()
	w = s.do(http.MethodGet, "/api/v1/me", &bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after struct {
		Account   models.Account    `json:"account"`
		Household *models.Household `json:"household"`
	}
	decode(t, w, &after)
	assert.Equal(t, h.ID, after.Account.HouseholdID)
	require.NotNil(t, after.Household)
	assert.Equal(t, "u2", after.Household.Users.User2.UID)
}
