package recipes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmatch/backend/internal/models"
)

const teriyakiMeal = `{
	"idMeal": "52772",
	"strMeal": "Teriyaki Chicken Casserole",
	"strCategory": "Chicken",
	"strArea": "Japanese",
	"strInstructions": "Preheat oven to 350F.",
	"strMealThumb": "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
	"strTags": "Meat,Casserole,Dairy-Free",
	"strIngredient1": "soy sauce",
	"strMeasure1": "3/4 cup",
	"strIngredient2": "water",
	"strMeasure2": "1/2 cup",
	"strIngredient3": "",
	"strMeasure3": " ",
	"strIngredient4": null,
	"strMeasure4": null
}`

func TestDecodeMealDBShape(t *testing.T) {
	r, err := DecodeRecipe([]byte(teriyakiMeal))
	require.NoError(t, err)

	want := models.Recipe{
		ID:           "52772",
		Title:        "Teriyaki Chicken Casserole",
		ImageURL:     "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
		Category:     "Chicken",
		Cuisine:      "Japanese",
		Instructions: "Preheat oven to 350F.",
		Ingredients: []models.Ingredient{
			{Name: "soy sauce", Measure: "3/4 cup"},
			{Name: "water", Measure: "1/2 cup"},
		},
		Dietary: models.DietaryFlags{DairyFree: true},
	}
	if diff := cmp.Diff(want, r, cmpopts.IgnoreFields(models.Recipe{}, "IngredientsJSON")); diff != "" {
		t.Errorf("normalized recipe mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRecipeAPIShape(t *testing.T) {
	r, err := DecodeRecipe([]byte(`{
		"id": 17,
		"title": "Pasta Bake",
		"imageUrl": "https://example.com/pasta.jpg",
		"servings": "4",
		"prepTime": 15,
		"instructions": ["Boil pasta", "Bake"],
		"ingredients": [
			{"name": "pasta", "quantity": "200g"},
			{"ingredient": "cheese", "amount": "100g"},
			"salt",
			{"measure": "1 tsp"}
		],
		"nutrition": {"calories": 540, "protein": "21g", "carbs": 60.5, "fat": "18"},
		"dietary": {"vegetarian": true, "glutenFree": false, "high_protein": true}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "17", r.ID)
	assert.Equal(t, "Pasta Bake", r.Title)
	assert.Equal(t, 4, r.Servings)
	assert.Equal(t, "15", r.PrepTime)
	assert.Equal(t, "Boil pasta\nBake", r.Instructions)
	assert.Equal(t, []models.Ingredient{
		{Name: "pasta", Measure: "200g"},
		{Name: "cheese", Measure: "100g"},
		{Name: "salt"},
	}, r.Ingredients)
	assert.Equal(t, models.Nutrition{Calories: 540, Protein: 21, Carbs: 60.5, Fat: 18}, r.Nutrition)
	assert.True(t, r.Dietary.Vegetarian)
	assert.True(t, r.Dietary.HighProtein)
	assert.False(t, r.Dietary.GlutenFree)
}

func TestNormalizeNameVariant(t *testing.T) {
	r, err := Normalize(map[string]interface{}{"_id": "abc", "name": "Tofu Stir Fry", "tags": []interface{}{"Vegan"}})
	require.NoError(t, err)
	assert.Equal(t, "abc", r.ID)
	assert.Equal(t, "Tofu Stir Fry", r.Title)
	assert.True(t, r.Dietary.Vegan)
	assert.NotNil(t, r.Ingredients)
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := Normalize(map[string]interface{}{"strMeal": "No id"})
	assert.ErrorIs(t, err, ErrMalformedRecipe)

	_, err = Normalize(map[string]interface{}{"id": "1"})
	assert.ErrorIs(t, err, ErrMalformedRecipe)

	_, err = DecodeRecipe([]byte(`[1,2]`))
	assert.Error(t, err)
}
