package models

import "time"

// OtherItemsKey is the reserved section holding manually added entries.
const OtherItemsKey = "Other Items"

// ShoppingItem is one checkable line of the shopping list.
type ShoppingItem struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
	Checked bool   `json:"checked"`
}

// ShoppingSection groups the ingredients of one matched recipe, or the manual
// entries when keyed by OtherItemsKey.
type ShoppingSection struct {
	Name        string         `json:"name"`
	RecipeID    string         `json:"recipeId,omitempty"`
	Position    int            `json:"position"`
	Ingredients []ShoppingItem `json:"ingredients"`
}

// ShoppingList is keyed by recipe id, plus OtherItemsKey.
type ShoppingList struct {
	Items       map[string]*ShoppingSection `json:"items"`
	LastUpdated time.Time                   `json:"lastUpdated"`
	Status      string                      `json:"status"`
}

// Shopping list statuses.
const (
	ShoppingListActive = "active"
	ShoppingListEmpty  = "empty"
)
