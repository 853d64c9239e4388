package recipes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pageza/mealmatch/backend/internal/models"
)

// maxMealDBIngredients is the number of strIngredientN/strMeasureN pairs.
const maxMealDBIngredients = 20

// ErrMalformedRecipe is returned by Normalize when a payload has no id or title.
var ErrMalformedRecipe = errors.New("malformed recipe payload")

// Normalize converts a decoded upstream payload into the canonical recipe.
// It understands TheMealDB documents (strMeal, strIngredient1, ...), the recipe
// API documents (title, ingredients[]) and loose variants of both.
func Normalize(raw map[string]interface{}) (models.Recipe, error) {
	r := models.Recipe{
		ID:           firstString(raw, "id", "idMeal", "_id", "recipeId"),
		Title:        firstString(raw, "title", "strMeal", "name"),
		ImageURL:     firstString(raw, "imageUrl", "strMealThumb", "image", "thumbnail"),
		Category:     firstString(raw, "category", "strCategory"),
		Cuisine:      firstString(raw, "cuisine", "strArea", "area"),
		PrepTime:     firstString(raw, "prepTime", "prep_time"),
		CookTime:     firstString(raw, "cookTime", "cook_time"),
		Servings:     int(firstNumber(raw, "servings", "strServings")),
		Instructions: instructions(raw),
		Ingredients:  ingredients(raw),
	}
	if r.ID == "" || r.Title == "" {
		return models.Recipe{}, fmt.Errorf("%w: id=%q title=%q", ErrMalformedRecipe, r.ID, r.Title)
	}

	if n, ok := raw["nutrition"].(map[string]interface{}); ok {
		r.Nutrition = models.Nutrition{
			Calories: firstNumber(n, "calories", "kcal"),
			Protein:  firstNumber(n, "protein"),
			Carbs:    firstNumber(n, "carbs", "carbohydrates"),
			Fat:      firstNumber(n, "fat"),
		}
	}

	r.Dietary = dietary(raw)
	return r, nil
}

// DecodeRecipe decodes one JSON document and normalizes it.
func DecodeRecipe(data []byte) (models.Recipe, error) {
	var raw map[string]interface{}
	if err := decodeJSON(data, &raw); err != nil {
		return models.Recipe{}, err
	}
	return Normalize(raw)
}

func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := asString(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func firstNumber(raw map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := asNumber(raw[k]); ok {
			return f
		}
	}
	return 0
}

// asNumber accepts numbers and strings with a leading number such as "12g".
func asNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		end := 0
		for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
			end++
		}
		f, err := strconv.ParseFloat(s[:end], 64)
		return f, err == nil
	}
	return 0, false
}

func instructions(raw map[string]interface{}) string {
	for _, k := range []string{"instructions", "strInstructions", "steps"} {
		switch t := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case []interface{}:
			steps := make([]string, 0, len(t))
			for _, step := range t {
				if s := asString(step); s != "" {
					steps = append(steps, s)
				}
			}
			if len(steps) > 0 {
				return strings.Join(steps, "\n")
			}
		}
	}
	return ""
}

func ingredients(raw map[string]interface{}) []models.Ingredient {
	out := []models.Ingredient{}
	if list, ok := raw["ingredients"].([]interface{}); ok {
		for _, item := range list {
			switch t := item.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					out = append(out, models.Ingredient{Name: s})
				}
			case map[string]interface{}:
				name := firstString(t, "name", "ingredient")
				if name == "" {
					continue
				}
				out = append(out, models.Ingredient{
					Name:    name,
					Measure: firstString(t, "measure", "quantity", "amount"),
				})
			}
		}
		return out
	}

	for i := 1; i <= maxMealDBIngredients; i++ {
		name := asString(raw[fmt.Sprintf("strIngredient%d", i)])
		if name == "" {
			continue
		}
		out = append(out, models.Ingredient{
			Name:    name,
			Measure: asString(raw[fmt.Sprintf("strMeasure%d", i)]),
		})
	}
	return out
}

var flagSetters = map[string]func(*models.DietaryFlags){
	"vegan":       func(f *models.DietaryFlags) { f.Vegan = true },
	"vegetarian":  func(f *models.DietaryFlags) { f.Vegetarian = true },
	"pescatarian": func(f *models.DietaryFlags) { f.Pescatarian = true },
	"glutenfree":  func(f *models.DietaryFlags) { f.GlutenFree = true },
	"dairyfree":   func(f *models.DietaryFlags) { f.DairyFree = true },
	"nutfree":     func(f *models.DietaryFlags) { f.NutFree = true },
	"lowcarb":     func(f *models.DietaryFlags) { f.LowCarb = true },
	"lowfat":      func(f *models.DietaryFlags) { f.LowFat = true },
	"lowsugar":    func(f *models.DietaryFlags) { f.LowSugar = true },
	"highprotein": func(f *models.DietaryFlags) { f.HighProtein = true },
}

// flagKey folds "Gluten-Free", "gluten_free" and "glutenFree" to one key.
func flagKey(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// dietary reads a flag object (dietary or dietaryFlags) and tag lists
// (tags array or the comma separated strTags).
func dietary(raw map[string]interface{}) models.DietaryFlags {
	var f models.DietaryFlags
	for _, k := range []string{"dietary", "dietaryFlags"} {
		obj, ok := raw[k].(map[string]interface{})
		if !ok {
			continue
		}
		for name, v := range obj {
			if b, _ := v.(bool); b {
				if set, ok := flagSetters[flagKey(name)]; ok {
					set(&f)
				}
			}
		}
	}

	var tags []string
	if list, ok := raw["tags"].([]interface{}); ok {
		for _, t := range list {
			tags = append(tags, asString(t))
		}
	}
	if s := asString(raw["strTags"]); s != "" {
		tags = append(tags, strings.Split(s, ",")...)
	}
	for _, tag := range tags {
		if set, ok := flagSetters[flagKey(strings.TrimSpace(tag))]; ok {
			set(&f)
		}
	}
	return f
}
