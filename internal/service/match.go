package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/recipes"
	"github.com/pageza/mealmatch/backend/internal/shopping"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// SwipeInput is one swipe of one member.
type SwipeInput struct {
	HouseholdID string
	UID         string
	// Slot is the slot the client believes it holds; empty means "mine".
	Slot      models.Slot
	RecipeID  string
	Direction models.Direction
}

// SwipeResult reports the state after a swipe.
type SwipeResult struct {
	Household     *models.Household
	Recorded      bool
	Match         *models.Recipe
	PlanCompleted bool
	MatchCount    int
}

// CandidateFilter narrows the candidate list.
type CandidateFilter struct {
	Diets []string
	Limit int
}

// CandidateResult is the list offered for swiping. Degraded is set when the
// recipe provider failed and the list is empty for that reason.
type CandidateResult struct {
	Recipes  []models.Recipe
	Degraded bool
}

// MatchService records swipes and detects mutual likes.
type MatchService struct {
	households *HouseholdService
	provider   recipes.Provider
	logger     *zap.Logger
}

// Ensure MatchService implements IMatchService
var _ IMatchService = (*MatchService)(nil)

// NewMatchService creates a MatchService sharing the household write path.
func NewMatchService(households *HouseholdService, provider recipes.Provider, logger *zap.Logger) *MatchService {
	return &MatchService{
		households: households,
		provider:   provider,
		logger:     logger.Named("match"),
	}
}

func (in SwipeInput) validate() error {
	if strings.TrimSpace(in.RecipeID) == "" {
		return types.Invalidf("recipe id is required")
	}
	if !in.Direction.Valid() {
		return types.Invalidf("direction must be left or right, got %q", in.Direction)
	}
	if in.Slot != "" && !in.Slot.Valid() {
		return types.Invalidf("unknown slot %q", in.Slot)
	}
	return nil
}

// actingMember resolves the caller's slot and checks it against the claimed one.
func actingMember(h *models.Household, uid string, claimed models.Slot) (models.Slot, error) {
	slot, ok := h.Users.SlotOf(uid)
	if !ok {
		return "", types.Preconditionf("user %s is not a member of household %s", uid, h.ID)
	}
	if claimed != "" && claimed != slot {
		return "", types.Preconditionf("user %s holds %s, not %s", uid, slot, claimed)
	}
	return slot, nil
}

// RecordSwipe stores the member's decision without evaluating matches.
// Repeating the current decision writes nothing.
func (s *MatchService) RecordSwipe(ctx context.Context, in SwipeInput) (*models.Household, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.households.writer.update(ctx, in.HouseholdID, func(h *models.Household) (writeAction, error) {
		slot, err := actingMember(h, in.UID, in.Slot)
		if err != nil {
			return writeSkip, err
		}
		if !h.Users.Get(slot).MealPreferences.Record(in.RecipeID, in.Direction.Decision(), s.households.now()) {
			return writeSkip, nil
		}
		return writeUpdate, nil
	})
}

// Swipe records a decision and, for a like the counterpart already shares,
// appends the recipe to the matched set. The seventh match completes the
// session and builds its shopping list. A like is refused with
// types.MatchCapError once seven meals are matched.
func (s *MatchService) Swipe(ctx context.Context, in SwipeInput) (*SwipeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	// The recipe is fetched before the household lock is taken when the
	// stored state says this like completes a match.
	var snapshot *models.Recipe
	if in.Direction == models.DirectionRight {
		current, err := s.households.GetHousehold(ctx, in.HouseholdID)
		if err != nil {
			return nil, err
		}
		if slot, err := actingMember(current, in.UID, in.Slot); err == nil && completesMatch(current, slot, in.RecipeID) {
			if snapshot, err = s.snapshot(ctx, in.RecipeID); err != nil {
				return nil, err
			}
		}
	}

	var res SwipeResult
	h, err := s.households.writer.update(ctx, in.HouseholdID, func(h *models.Household) (writeAction, error) {
		res = SwipeResult{}
		slot, err := actingMember(h, in.UID, in.Slot)
		if err != nil {
			return writeSkip, err
		}
		session := &h.CurrentSession
		res.MatchCount = len(session.MatchedMeals)

		if in.Direction == models.DirectionRight && len(session.MatchedMeals) >= models.MaxMatchedMeals {
			return writeSkip, &types.MatchCapError{Count: len(session.MatchedMeals), Cap: models.MaxMatchedMeals}
		}

		now := s.households.now()
		matches := in.Direction == models.DirectionRight && completesMatch(h, slot, in.RecipeID)
		res.Recorded = h.Users.Get(slot).MealPreferences.Record(in.RecipeID, in.Direction.Decision(), now)

		if !matches {
			if !res.Recorded {
				return writeSkip, nil
			}
			return writeUpdate, nil
		}

		if snapshot == nil {
			// the counterpart liked it after the household was read
			if snapshot, err = s.snapshot(ctx, in.RecipeID); err != nil {
				return writeSkip, err
			}
		}
		match := *snapshot

		session.MatchedMeals = append(session.MatchedMeals, match)
		res.Match = &match
		res.MatchCount = len(session.MatchedMeals)

		if res.MatchCount == models.MaxMatchedMeals {
			session.Status = models.SessionCompleted
			session.CompletedAt = &now
			list := shopping.Regenerate(session.ShoppingList, session.MatchedMeals)
			list.LastUpdated = now
			session.ShoppingList = list
			res.PlanCompleted = true
		}
		return writeUpdate, nil
	})
	if err != nil {
		return nil, err
	}
	res.Household = h

	if res.Match != nil {
		s.logger.Info("match found",
			zap.String("household_id", in.HouseholdID),
			zap.String("recipe_id", in.RecipeID),
			zap.Int("match_count", res.MatchCount),
			zap.Bool("plan_completed", res.PlanCompleted))
	}
	return &res, nil
}

// completesMatch reports whether a like of recipeID by the member in slot
// would add it to the matched set.
func completesMatch(h *models.Household, slot models.Slot, recipeID string) bool {
	other := h.Users.Get(slot.Other())
	session := &h.CurrentSession
	return other.Occupied() &&
		other.MealPreferences.Likes(recipeID) &&
		!session.HasMatch(recipeID) &&
		len(session.MatchedMeals) < models.MaxMatchedMeals
}

// snapshot fetches the recipe stored with a match.
func (s *MatchService) snapshot(ctx context.Context, recipeID string) (*models.Recipe, error) {
	recipe, err := s.provider.GetByID(ctx, recipeID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrUpstreamUnavailable) {
			err = upstreamUnavailable(err)
		}
		return nil, err
	}
	snap := *recipe
	snap.ID = recipeID
	return &snap, nil
}

// Candidates lists provider recipes the caller has not decided on yet,
// optionally restricted to recipes satisfying every named diet.
func (s *MatchService) Candidates(ctx context.Context, householdID, uid string, filter CandidateFilter) (*CandidateResult, error) {
	for _, d := range filter.Diets {
		if !models.IsDietaryKey(d) {
			return nil, types.Invalidf("unknown diet %q", d)
		}
	}

	h, err := s.households.GetHouseholdForMember(ctx, householdID, uid)
	if err != nil {
		return nil, err
	}
	slot, _ := h.Users.SlotOf(uid)
	prefs := h.Users.Get(slot).MealPreferences

	all, err := s.provider.ListAll(ctx)
	if err != nil {
		s.logger.Warn("recipe provider unavailable, serving no candidates",
			zap.String("household_id", householdID), zap.Error(err))
		return &CandidateResult{Recipes: []models.Recipe{}, Degraded: true}, nil
	}

	out := make([]models.Recipe, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, r := range all {
		if seen[r.ID] || prefs.Decided(r.ID) || !r.Dietary.Satisfies(filter.Diets) {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return &CandidateResult{Recipes: out}, nil
}
