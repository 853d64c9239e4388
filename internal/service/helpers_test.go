package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pageza/mealmatch/backend/internal/archive"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/store"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
)

var (
	alice = Identity{UID: "u1", Name: "Alice", Email: "alice@example.com"}
	bob   = Identity{UID: "u2", Name: "Bob", Email: "bob@example.com"}
	carol = Identity{UID: "u3", Name: "Carol", Email: "carol@example.com"}
)

type fixture struct {
	store      *store.Store
	provider   *testhelpers.StaticProvider
	households *HouseholdService
	matches    *MatchService
}

func newFixture(t *testing.T, archiver archive.Archiver, recipes ...models.Recipe) *fixture {
	t.Helper()
	st := store.New(testhelpers.SetupSQLiteDB(t))
	logger := zaptest.NewLogger(t)
	provider := testhelpers.NewStaticProvider(recipes...)
	households := NewHouseholdService(st, archiver, logger)
	return &fixture{
		store:      st,
		provider:   provider,
		households: households,
		matches:    NewMatchService(households, provider, logger),
	}
}

// pair creates a household for alice and lets bob join it.
func (f *fixture) pair(t *testing.T) *models.Household {
	t.Helper()
	ctx := context.Background()
	h, err := f.households.CreateHousehold(ctx, alice, "The Flat")
	require.NoError(t, err)
	h, err = f.households.JoinHousehold(ctx, bob, h.InviteCode)
	require.NoError(t, err)
	return h
}

func (f *fixture) swipe(t *testing.T, hid string, who Identity, recipeID string, dir models.Direction) *SwipeResult {
	t.Helper()
	res, err := f.matches.Swipe(context.Background(), SwipeInput{
		HouseholdID: hid,
		UID:         who.UID,
		RecipeID:    recipeID,
		Direction:   dir,
	})
	require.NoError(t, err)
	return res
}

// match makes both members like recipeID.
func (f *fixture) match(t *testing.T, hid, recipeID string) *SwipeResult {
	t.Helper()
	f.swipe(t, hid, alice, recipeID, models.DirectionRight)
	return f.swipe(t, hid, bob, recipeID, models.DirectionRight)
}
