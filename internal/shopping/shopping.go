// Package shopping derives the household shopping checklist from the matched
// recipes of a session. Every function is pure: inputs are never mutated and a
// fresh list is returned.
package shopping

import (
	"sort"
	"strings"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// DefaultQuantity is used when a manual item is added without a quantity.
const DefaultQuantity = "1"

// Generate builds a list with one unchecked section per recipe, keyed by recipe id.
// A recipe appearing twice keeps its first position.
func Generate(recipes []models.Recipe) *models.ShoppingList {
	list := &models.ShoppingList{
		Items:  make(map[string]*models.ShoppingSection, len(recipes)),
		Status: models.ShoppingListActive,
	}
	for i, r := range recipes {
		if _, dup := list.Items[r.ID]; dup {
			continue
		}
		items := make([]models.ShoppingItem, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			items = append(items, models.ShoppingItem{Name: ing.Name, Measure: ing.Measure})
		}
		list.Items[r.ID] = &models.ShoppingSection{
			Name:        r.Title,
			RecipeID:    r.ID,
			Position:    i,
			Ingredients: items,
		}
	}
	return list
}

// Regenerate rebuilds the list for recipes while keeping what the household
// already did: the checked state of ingredients whose recipe is still matched,
// and the whole "Other Items" section.
func Regenerate(prev *models.ShoppingList, recipes []models.Recipe) *models.ShoppingList {
	next := Generate(recipes)
	if prev == nil {
		return next
	}
	for key, section := range next.Items {
		old, ok := prev.Items[key]
		if !ok {
			continue
		}
		// Repeated lines are matched by occurrence: the nth copy in the new
		// section takes the state of the nth copy in the old one.
		states := make(map[string][]bool, len(old.Ingredients))
		for _, it := range old.Ingredients {
			k := itemKey(it)
			states[k] = append(states[k], it.Checked)
		}
		seen := make(map[string]int, len(section.Ingredients))
		for i := range section.Ingredients {
			k := itemKey(section.Ingredients[i])
			n := seen[k]
			seen[k]++
			if n < len(states[k]) && states[k][n] {
				section.Ingredients[i].Checked = true
			}
		}
	}
	if other, ok := prev.Items[models.OtherItemsKey]; ok {
		next.Items[models.OtherItemsKey] = cloneSection(other)
	}
	next.LastUpdated = prev.LastUpdated
	return next
}

// Toggle flips the checked flag of one ingredient.
func Toggle(list *models.ShoppingList, sectionKey string, index int) (*models.ShoppingList, error) {
	if list == nil {
		return nil, types.NotFoundf("shopping list")
	}
	section, ok := list.Items[sectionKey]
	if !ok {
		return nil, types.NotFoundf("shopping list section %q", sectionKey)
	}
	if index < 0 || index >= len(section.Ingredients) {
		return nil, types.NotFoundf("item %d in section %q", index, sectionKey)
	}
	out := Clone(list)
	item := &out.Items[sectionKey].Ingredients[index]
	item.Checked = !item.Checked
	return out, nil
}

// AddItem appends a manual entry to "Other Items", creating the section if needed.
func AddItem(list *models.ShoppingList, name, quantity string) (*models.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.Invalidf("item name is required")
	}
	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		quantity = DefaultQuantity
	}

	var out *models.ShoppingList
	if list == nil {
		out = &models.ShoppingList{Items: map[string]*models.ShoppingSection{}, Status: models.ShoppingListActive}
	} else {
		out = Clone(list)
	}
	section, ok := out.Items[models.OtherItemsKey]
	if !ok {
		section = &models.ShoppingSection{Name: models.OtherItemsKey, Position: models.MaxMatchedMeals}
		out.Items[models.OtherItemsKey] = section
	}
	section.Ingredients = append(section.Ingredients, models.ShoppingItem{Name: name, Measure: quantity})
	out.Status = models.ShoppingListActive
	return out, nil
}

// Reset returns an empty list. "Other Items" is cleared too.
func Reset(list *models.ShoppingList) *models.ShoppingList {
	out := &models.ShoppingList{
		Items:  map[string]*models.ShoppingSection{},
		Status: models.ShoppingListEmpty,
	}
	if list != nil {
		out.LastUpdated = list.LastUpdated
	}
	return out
}

// KeyedSection pairs a section with its map key.
type KeyedSection struct {
	Key string `json:"key"`
	*models.ShoppingSection
}

// Ordered returns recipe sections in match-discovery order followed by "Other Items".
func Ordered(list *models.ShoppingList) []KeyedSection {
	if list == nil {
		return []KeyedSection{}
	}
	out := make([]KeyedSection, 0, len(list.Items))
	var other *models.ShoppingSection
	for key, section := range list.Items {
		if key == models.OtherItemsKey {
			other = section
			continue
		}
		out = append(out, KeyedSection{Key: key, ShoppingSection: section})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Key < out[j].Key
	})
	if other != nil {
		out = append(out, KeyedSection{Key: models.OtherItemsKey, ShoppingSection: other})
	}
	return out
}

// Clone deep-copies a list.
func Clone(list *models.ShoppingList) *models.ShoppingList {
	if list == nil {
		return nil
	}
	out := &models.ShoppingList{
		Items:       make(map[string]*models.ShoppingSection, len(list.Items)),
		LastUpdated: list.LastUpdated,
		Status:      list.Status,
	}
	for k, s := range list.Items {
		out.Items[k] = cloneSection(s)
	}
	return out
}

func cloneSection(s *models.ShoppingSection) *models.ShoppingSection {
	c := *s
	if s.Ingredients != nil {
		c.Ingredients = make([]models.ShoppingItem, len(s.Ingredients))
		copy(c.Ingredients, s.Ingredients)
	}
	return &c
}

func itemKey(it models.ShoppingItem) string {
	return strings.ToLower(strings.TrimSpace(it.Name)) + "|" + strings.ToLower(strings.TrimSpace(it.Measure))
}
