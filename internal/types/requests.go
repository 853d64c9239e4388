package types

// CreateHouseholdRequest is the body of POST /households.
type CreateHouseholdRequest struct {
	Name string `json:"name"`
}

// JoinHouseholdRequest is the body of POST /households/join.
type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// SwipeRequest is the body of POST /households/:id/swipes.
type SwipeRequest struct {
	RecipeID  string `json:"recipe_id" binding:"required"`
	Direction string `json:"direction" binding:"required"`
	Slot      string `json:"slot"`
}

// ResetSessionRequest is the body of POST /households/:id/session/reset.
type ResetSessionRequest struct {
	ClearPreferences bool `json:"clear_preferences"`
}

// ToggleItemRequest is the body of POST /households/:id/shopping-list/toggle.
type ToggleItemRequest struct {
	Section string `json:"section" binding:"required"`
	Index   *int   `json:"index" binding:"required"`
}

// AddItemRequest is the body of POST /households/:id/shopping-list/items.
type AddItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity string `json:"quantity"`
}

// PlannedMealRequest is the body of PUT /households/:id/plans/:date/:meal.
// Exactly one of RecipeID and CustomName is set.
type PlannedMealRequest struct {
	RecipeID   string `json:"recipe_id"`
	CustomName string `json:"custom_name"`
}
