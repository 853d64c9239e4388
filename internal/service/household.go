package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/archive"
	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/shopping"
	"github.com/pageza/mealmatch/backend/internal/store"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// HouseholdStatusActive is the status of every live household.
const HouseholdStatusActive = "active"

// Identity is the authenticated caller.
type Identity struct {
	UID   string
	Name  string
	Email string
}

// HouseholdService owns the household document: membership, the planning
// session, the shopping list and the weekly plans.
type HouseholdService struct {
	store    *store.Store
	writer   *householdWriter
	archiver archive.Archiver
	logger   *zap.Logger
	now      func() time.Time
	newCode  func() (string, error)
}

// Ensure HouseholdService implements IHouseholdService
var _ IHouseholdService = (*HouseholdService)(nil)

// NewHouseholdService creates a new HouseholdService. archiver may be nil.
func NewHouseholdService(st *store.Store, archiver archive.Archiver, logger *zap.Logger) *HouseholdService {
	logger = logger.Named("household")
	return &HouseholdService{
		store:    st,
		writer:   newHouseholdWriter(st.Households, logger),
		archiver: archiver,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newCode:  newInviteCode,
	}
}

// GetHousehold returns the household with id.
func (s *HouseholdService) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	return s.store.Households.Get(ctx, id)
}

// GetHouseholdForMember returns the household if uid is one of its members.
func (s *HouseholdService) GetHouseholdForMember(ctx context.Context, id, uid string) (*models.Household, error) {
	h, err := s.store.Households.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := h.Users.SlotOf(uid); !ok {
		return nil, types.Preconditionf("user %s is not a member of household %s", uid, id)
	}
	return h, nil
}

// GetAccount returns the caller's account, creating an unlinked one on first use.
func (s *HouseholdService) GetAccount(ctx context.Context, who Identity) (*models.Account, error) {
	acc, err := s.store.Accounts.Get(ctx, who.UID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	acc = &models.Account{UID: who.UID, Name: who.Name, Email: who.Email}
	if err := s.store.Accounts.Upsert(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (who Identity) account() *models.Account {
	return &models.Account{UID: who.UID, Name: who.Name, Email: who.Email}
}

// CreateHousehold creates a household with the caller in user1 and a fresh
// invite code, and links the caller's account to it.
func (s *HouseholdService) CreateHousehold(ctx context.Context, who Identity, name string) (*models.Household, error) {
	if who.UID == "" {
		return nil, types.Invalidf("user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = who.Name + "'s household"
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}
		taken, err := s.store.Households.InviteCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		now := s.now()
		h := &models.Household{
			ID:         uuid.NewString(),
			Name:       name,
			InviteCode: code,
			Status:     HouseholdStatusActive,
			Users: models.Members{
				User1: models.Member{UID: who.UID, Name: who.Name, Email: who.Email},
			},
			CurrentSession: models.NewSession(now),
			WeeklyPlans:    models.WeeklyPlans{},
			CreatedAt:      now,
		}

		err = s.store.Transaction(ctx, func(tx *store.Store) error {
			if err := tx.Households.Create(ctx, h); err != nil {
				return err
			}
			_, err := tx.Accounts.Claim(ctx, who.account(), h.ID)
			return err
		})
		if errors.Is(err, types.ErrConflict) {
			// lost a race for the code
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("household created",
			zap.String("household_id", h.ID), zap.String("uid", who.UID))
		return h, nil
	}
	return nil, fmt.Errorf("no free invite code after %d attempts: %w", inviteCodeAttempts, types.ErrConflict)
}

// JoinHousehold puts the caller into the free slot of the household owning
// inviteCode. Joining a household one already belongs to is a no-op.
func (s *HouseholdService) JoinHousehold(ctx context.Context, who Identity, inviteCode string) (*models.Household, error) {
	if strings.TrimSpace(inviteCode) == "" {
		return nil, types.Invalidf("invite code is required")
	}
	target, err := s.store.Households.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	// The account is claimed before the slot so two joins by one user
	// cannot both land.
	previous, err := s.store.Accounts.Claim(ctx, who.account(), target.ID)
	if err != nil {
		return nil, err
	}

	h, err := s.writer.update(ctx, target.ID, func(h *models.Household) (writeAction, error) {
		if _, ok := h.Users.SlotOf(who.UID); ok {
			return writeSkip, nil
		}
		var slot models.Slot
		switch {
		case !h.Users.User2.Occupied():
			slot = models.SlotUser2
		case !h.Users.User1.Occupied():
			slot = models.SlotUser1
		default:
			return writeSkip, types.Preconditionf("household %s is full", h.ID)
		}
		*h.Users.Get(slot) = models.Member{UID: who.UID, Name: who.Name, Email: who.Email}
		return writeUpdate, nil
	})
	if err != nil {
		if previous != target.ID {
			s.releaseAccount(ctx, who.UID, target.ID)
		}
		return nil, err
	}

	s.logger.Info("household joined",
		zap.String("household_id", h.ID), zap.String("uid", who.UID))
	return h, nil
}

// releaseAccount undoes a claim whose join did not go through.
func (s *HouseholdService) releaseAccount(ctx context.Context, uid, householdID string) {
	if err := s.store.Accounts.Release(context.WithoutCancel(ctx), uid, householdID); err != nil {
		s.logger.Error("failed to release account claim",
			zap.String("household_id", householdID), zap.String("uid", uid), zap.Error(err))
	}
}

// LeaveHousehold frees the caller's slot, decisions included. The household
// is deleted when its last member leaves; the returned household is then nil.
func (s *HouseholdService) LeaveHousehold(ctx context.Context, who Identity, householdID string) (*models.Household, error) {
	h, err := s.writer.update(ctx, householdID, func(h *models.Household) (writeAction, error) {
		slot, ok := h.Users.SlotOf(who.UID)
		if !ok {
			return writeSkip, types.Preconditionf("user %s is not a member of household %s", who.UID, householdID)
		}
		*h.Users.Get(slot) = models.Member{}
		if h.MemberCount() == 0 {
			return writeDelete, nil
		}
		return writeUpdate, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Accounts.Release(ctx, who.UID, householdID); err != nil {
		return nil, err
	}

	s.logger.Info("household left",
		zap.String("household_id", householdID),
		zap.String("uid", who.UID),
		zap.Bool("deleted", h == nil))
	return h, nil
}

// errSessionMoved stops a reset whose archive no longer matches the session.
var errSessionMoved = errors.New("session changed while archiving")

// ResetSession archives the current session and starts an empty pending one.
// With clearPreferences both members' swipe decisions are dropped as well.
// The archive is uploaded before the household lock is taken; if the matched
// set changes meanwhile the session is read and archived again.
func (s *HouseholdService) ResetSession(ctx context.Context, who Identity, householdID string, clearPreferences bool) (*models.Household, error) {
	for attempt := 1; ; attempt++ {
		read, err := s.GetHouseholdForMember(ctx, householdID, who.UID)
		if err != nil {
			return nil, err
		}
		key := s.archiveSession(ctx, read)

		last := attempt == maxWriteAttempts
		h, err := s.writer.update(ctx, householdID, func(h *models.Household) (writeAction, error) {
			if _, ok := h.Users.SlotOf(who.UID); !ok {
				return writeSkip, types.Preconditionf("user %s is not a member of household %s", who.UID, householdID)
			}
			if !last && s.archiver != nil && !sameMatches(h.CurrentSession.MatchedMeals, read.CurrentSession.MatchedMeals) {
				return writeSkip, errSessionMoved
			}
			h.CurrentSession = models.NewSession(s.now())
			if clearPreferences {
				h.Users.User1.MealPreferences = models.MealPreferences{}
				h.Users.User2.MealPreferences = models.MealPreferences{}
			}
			return writeUpdate, nil
		})
		if errors.Is(err, errSessionMoved) {
			continue
		}
		if err != nil && key != "" {
			s.logger.Warn("session archived but not reset",
				zap.String("household_id", householdID), zap.String("key", key), zap.Error(err))
		}
		return h, err
	}
}

// archiveSession uploads the session of h when it has matches and returns
// the object key, or "" when nothing was stored.
func (s *HouseholdService) archiveSession(ctx context.Context, h *models.Household) string {
	if s.archiver == nil || len(h.CurrentSession.MatchedMeals) == 0 {
		return ""
	}
	key, err := s.archiver.Archive(ctx, h)
	if err != nil {
		s.logger.Warn("session archive failed",
			zap.String("household_id", h.ID), zap.Error(err))
		return ""
	}
	s.logger.Info("session archived",
		zap.String("household_id", h.ID), zap.String("key", key))
	return key
}

func sameMatches(a, b []models.Recipe) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// updateShoppingList applies fn to the current list of a member's household.
func (s *HouseholdService) updateShoppingList(ctx context.Context, who Identity, householdID string, fn func(h *models.Household) (*models.ShoppingList, error)) (*models.Household, error) {
	return s.writer.update(ctx, householdID, func(h *models.Household) (writeAction, error) {
		if _, ok := h.Users.SlotOf(who.UID); !ok {
			return writeSkip, types.Preconditionf("user %s is not a member of household %s", who.UID, householdID)
		}
		list, err := fn(h)
		if err != nil {
			return writeSkip, err
		}
		list.LastUpdated = s.now()
		h.CurrentSession.ShoppingList = list
		return writeUpdate, nil
	})
}

// ToggleShoppingItem flips one ingredient of the shopping list.
func (s *HouseholdService) ToggleShoppingItem(ctx context.Context, who Identity, householdID, section string, index int) (*models.Household, error) {
	return s.updateShoppingList(ctx, who, householdID, func(h *models.Household) (*models.ShoppingList, error) {
		return shopping.Toggle(h.CurrentSession.ShoppingList, section, index)
	})
}

// AddShoppingItem appends a manual entry to "Other Items".
func (s *HouseholdService) AddShoppingItem(ctx context.Context, who Identity, householdID, name, quantity string) (*models.Household, error) {
	return s.updateShoppingList(ctx, who, householdID, func(h *models.Household) (*models.ShoppingList, error) {
		return shopping.AddItem(h.CurrentSession.ShoppingList, name, quantity)
	})
}

// ResetShoppingList empties the shopping list, manual entries included.
func (s *HouseholdService) ResetShoppingList(ctx context.Context, who Identity, householdID string) (*models.Household, error) {
	return s.updateShoppingList(ctx, who, householdID, func(h *models.Household) (*models.ShoppingList, error) {
		return shopping.Reset(h.CurrentSession.ShoppingList), nil
	})
}

// RegenerateShoppingList rebuilds the list from the matched meals, keeping
// checked ingredients and manual entries.
func (s *HouseholdService) RegenerateShoppingList(ctx context.Context, who Identity, householdID string) (*models.Household, error) {
	return s.updateShoppingList(ctx, who, householdID, func(h *models.Household) (*models.ShoppingList, error) {
		return shopping.Regenerate(h.CurrentSession.ShoppingList, h.CurrentSession.MatchedMeals), nil
	})
}

// PlannedMealInput names either a matched recipe or a custom meal.
type PlannedMealInput struct {
	RecipeID   string
	CustomName string
}

// SetPlannedMeal assigns a meal to date and mealType.
func (s *HouseholdService) SetPlannedMeal(ctx context.Context, who Identity, householdID, date string, meal models.MealType, in PlannedMealInput) (*models.Household, error) {
	if _, err := models.ParsePlanDate(date); err != nil {
		return nil, types.Invalidf("date %q must be YYYY-MM-DD", date)
	}
	if !meal.Valid() {
		return nil, types.Invalidf("unknown meal type %q", meal)
	}
	recipeID := strings.TrimSpace(in.RecipeID)
	custom := strings.TrimSpace(in.CustomName)
	if (recipeID == "") == (custom == "") {
		return nil, types.Invalidf("exactly one of recipe_id and custom_name is required")
	}

	return s.writer.update(ctx, householdID, func(h *models.Household) (writeAction, error) {
		if _, ok := h.Users.SlotOf(who.UID); !ok {
			return writeSkip, types.Preconditionf("user %s is not a member of household %s", who.UID, householdID)
		}

		planned := &models.PlannedMeal{Meal: custom, IsCustom: true}
		if recipeID != "" {
			recipe, ok := h.CurrentSession.FindMatch(recipeID)
			if !ok {
				return writeSkip, types.Preconditionf("recipe %s is not a matched meal", recipeID)
			}
			id := recipe.ID
			planned = &models.PlannedMeal{Meal: recipe.Title, RecipeID: &id}
		}

		if h.WeeklyPlans == nil {
			h.WeeklyPlans = models.WeeklyPlans{}
		}
		day, ok := h.WeeklyPlans[date]
		if !ok || day == nil {
			day = &models.DayPlan{}
			h.WeeklyPlans[date] = day
		}
		*day.Slot(meal) = planned
		return writeUpdate, nil
	})
}

// ClearPlannedMeal removes a planned meal. A day left without meals is removed.
func (s *HouseholdService) ClearPlannedMeal(ctx context.Context, who Identity, householdID, date string, meal models.MealType) (*models.Household, error) {
	if _, err := models.ParsePlanDate(date); err != nil {
		return nil, types.Invalidf("date %q must be YYYY-MM-DD", date)
	}
	if !meal.Valid() {
		return nil, types.Invalidf("unknown meal type %q", meal)
	}

	return s.writer.update(ctx, householdID, func(h *models.Household) (writeAction, error) {
		if _, ok := h.Users.SlotOf(who.UID); !ok {
			return writeSkip, types.Preconditionf("user %s is not a member of household %s", who.UID, householdID)
		}
		day, ok := h.WeeklyPlans[date]
		if !ok || day == nil || *day.Slot(meal) == nil {
			return writeSkip, nil
		}
		*day.Slot(meal) = nil
		if day.Empty() {
			delete(h.WeeklyPlans, date)
		}
		return writeUpdate, nil
	})
}
