package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/testhelpers"
	"github.com/pageza/mealmatch/backend/internal/types"
)

func newHousehold(code string) *models.Household {
	return &models.Household{
		ID:         uuid.NewString(),
		Name:       "The Flat",
		InviteCode: code,
		Status:     "active",
		Users: models.Members{
			User1: models.Member{UID: "u1", Name: "Ana", Email: "ana@example.com"},
		},
		CurrentSession: models.NewSession(time.Now().UTC()),
		WeeklyPlans:    models.WeeklyPlans{},
	}
}

func TestHouseholdRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupSQLiteDB(t))

	h := newHousehold("ABC123")
	h.Users.User1.MealPreferences.Record("52772", models.DecisionLiked, time.Now())
	require.NoError(t, repo.Create(ctx, h))
	assert.Equal(t, int64(1), h.Version)

	got, err := repo.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Flat", got.Name)
	assert.Equal(t, []string{"52772"}, got.Users.User1.MealPreferences.Liked())
	assert.Equal(t, models.SessionPending, got.CurrentSession.Status)
	assert.NotNil(t, got.CurrentSession.MatchedMeals)

	byCode, err := repo.GetByInviteCode(ctx, " abc123 ")
	require.NoError(t, err)
	assert.Equal(t, h.ID, byCode.ID)

	exists, err := repo.InviteCodeExists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHouseholdNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupSQLiteDB(t))

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = repo.GetByInviteCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), types.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newHousehold("QQQQQQ")), types.ErrNotFound)
}

func TestHouseholdDuplicateInviteCode(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupSQLiteDB(t))

	require.NoError(t, repo.Create(ctx, newHousehold("DUP001")))
	err := repo.Create(ctx, newHousehold("DUP001"))
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestHouseholdUpdateVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupSQLiteDB(t))

	h := newHousehold("CAS001")
	require.NoError(t, repo.Create(ctx, h))

	first, err := repo.Get(ctx, h.ID)
	require.NoError(t, err)
	second, err := repo.Get(ctx, h.ID)
	require.NoError(t, err)

	first.Users.User2 = models.Member{UID: "u2", Name: "Ben"}
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// second still holds version 1
	second.Name = "Lost write"
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, types.ErrConflict)

	got, err := repo.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Flat", got.Name)
	assert.Equal(t, "u2", got.Users.User2.UID)
	assert.Equal(t, int64(2), got.Version)
}

func TestHouseholdDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupSQLiteDB(t))

	h := newHousehold("DEL001")
	require.NoError(t, repo.Create(ctx, h))
	require.NoError(t, repo.Delete(ctx, h.ID))

	_, err := repo.Get(ctx, h.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAccountUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testhelpers.SetupSQLiteDB(t))

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.Account{UID: "u1", Name: "Ana", HouseholdID: "h1"}))
	require.NoError(t, repo.Upsert(ctx, &models.Account{UID: "u1", Name: "Ana B", HouseholdID: ""}))

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", acc.Name)
	assert.Empty(t, acc.HouseholdID)
}

func TestAccountClaim(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testhelpers.SetupSQLiteDB(t))

	prev, err := repo.Claim(ctx, &models.Account{UID: "u1", Name: "Ana"}, "h1")
	require.NoError(t, err)
	assert.Empty(t, prev)

	// claiming the same household again is fine
	prev, err = repo.Claim(ctx, &models.Account{UID: "u1"}, "h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", prev)

	_, err = repo.Claim(ctx, &models.Account{UID: "u1"}, "h2")
	assert.ErrorIs(t, err, types.ErrPrecondition)

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h1", acc.HouseholdID)
	assert.Equal(t, "Ana", acc.Name)

	// releasing a household the account is not linked to does nothing
	require.NoError(t, repo.Release(ctx, "u1", "h2"))
	acc, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "h1", acc.HouseholdID)

	require.NoError(t, repo.Release(ctx, "u1", "h1"))
	_, err = repo.Claim(ctx, &models.Account{UID: "u1"}, "h2")
	require.NoError(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New(testhelpers.SetupSQLiteDB(t))

	h := newHousehold("TX0001")
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Households.Create(ctx, h); err != nil {
			return err
		}
		return types.ErrConflict
	})
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = s.Households.Get(ctx, h.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestHouseholdRepositoryPostgres(t *testing.T) {
	ctx := context.Background()
	repo := NewHouseholdRepository(testhelpers.SetupPostgresDB(t))

	h := newHousehold("PG0001")
	require.NoError(t, repo.Create(ctx, h))
	assert.ErrorIs(t, repo.Create(ctx, newHousehold("PG0001")), types.ErrConflict)

	stale := *h
	h.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, h))
	assert.ErrorIs(t, repo.Update(ctx, &stale), types.ErrConflict)

	got, err := repo.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}
