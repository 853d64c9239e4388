package service

import (
	"context"
	"time"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// ITokenService defines the interface for bearer token operations
type ITokenService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims, ttl time.Duration) (string, error)
}

// IHouseholdService defines the interface for household operations
type IHouseholdService interface {
	GetHousehold(ctx context.Context, id string) (*models.Household, error)
	GetHouseholdForMember(ctx context.Context, id, uid string) (*models.Household, error)
	GetAccount(ctx context.Context, who Identity) (*models.Account, error)
	CreateHousehold(ctx context.Context, who Identity, name string) (*models.Household, error)
	JoinHousehold(ctx context.Context, who Identity, inviteCode string) (*models.Household, error)
	LeaveHousehold(ctx context.Context, who Identity, householdID string) (*models.Household, error)
	ResetSession(ctx context.Context, who Identity, householdID string, clearPreferences bool) (*models.Household, error)

	ToggleShoppingItem(ctx context.Context, who Identity, householdID, section string, index int) (*models.Household, error)
	AddShoppingItem(ctx context.Context, who Identity, householdID, name, quantity string) (*models.Household, error)
	ResetShoppingList(ctx context.Context, who Identity, householdID string) (*models.Household, error)
	RegenerateShoppingList(ctx context.Context, who Identity, householdID string) (*models.Household, error)

	SetPlannedMeal(ctx context.Context, who Identity, householdID, date string, meal models.MealType, in PlannedMealInput) (*models.Household, error)
	ClearPlannedMeal(ctx context.Context, who Identity, householdID, date string, meal models.MealType) (*models.Household, error)
}

// IMatchService defines the interface for swipe and match operations
type IMatchService interface {
	RecordSwipe(ctx context.Context, in SwipeInput) (*models.Household, error)
	Swipe(ctx context.Context, in SwipeInput) (*SwipeResult, error)
	Candidates(ctx context.Context, householdID, uid string, filter CandidateFilter) (*CandidateResult, error)
}
