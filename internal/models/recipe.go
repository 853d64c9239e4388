package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Nutrition is the per-serving nutritional summary of a recipe.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DietaryFlags marks which diets a recipe is suitable for.
type DietaryFlags struct {
	Vegan       bool `json:"vegan"`
	Vegetarian  bool `json:"vegetarian"`
	Pescatarian bool `json:"pescatarian"`
	GlutenFree  bool `json:"glutenFree"`
	DairyFree   bool `json:"dairyFree"`
	NutFree     bool `json:"nutFree"`
	LowCarb     bool `json:"lowCarb"`
	LowFat      bool `json:"lowFat"`
	LowSugar    bool `json:"lowSugar"`
	HighProtein bool `json:"highProtein"`
}

// dietaryKeys maps the accepted filter names to flag accessors.
var dietaryKeys = map[string]func(DietaryFlags) bool{
	"vegan":        func(f DietaryFlags) bool { return f.Vegan },
	"vegetarian":   func(f DietaryFlags) bool { return f.Vegetarian },
	"pescatarian":  func(f DietaryFlags) bool { return f.Pescatarian },
	"gluten-free":  func(f DietaryFlags) bool { return f.GlutenFree },
	"dairy-free":   func(f DietaryFlags) bool { return f.DairyFree },
	"nut-free":     func(f DietaryFlags) bool { return f.NutFree },
	"low-carb":     func(f DietaryFlags) bool { return f.LowCarb },
	"low-fat":      func(f DietaryFlags) bool { return f.LowFat },
	"low-sugar":    func(f DietaryFlags) bool { return f.LowSugar },
	"high-protein": func(f DietaryFlags) bool { return f.HighProtein },
}

// IsDietaryKey reports whether name is a known dietary filter.
func IsDietaryKey(name string) bool {
	_, ok := dietaryKeys[name]
	return ok
}

// Satisfies reports whether every named diet is set. Unknown names never match.
func (f DietaryFlags) Satisfies(diets []string) bool {
	for _, d := range diets {
		check, ok := dietaryKeys[d]
		if !ok || !check(f) {
			return false
		}
	}
	return true
}

// Recipe is the canonical recipe shape. Snapshots of it are stored inside a
// household's matched set, and it doubles as the row of the local catalog.
type Recipe struct {
	ID           string       `gorm:"type:varchar(64);primarykey" json:"id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	ImageURL     string       `gorm:"size:512" json:"imageUrl"`
	Category     string       `gorm:"size:100;index" json:"category"`
	Cuisine      string       `gorm:"size:100" json:"cuisine"`
	PrepTime     string       `gorm:"size:50" json:"prepTime,omitempty"`
	CookTime     string       `gorm:"size:50" json:"cookTime,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	Nutrition    Nutrition    `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	Ingredients  []Ingredient `gorm:"-" json:"ingredients"`
	Instructions string       `gorm:"type:text" json:"instructions"`
	Dietary      DietaryFlags `gorm:"embedded;embeddedPrefix:diet_" json:"dietary"`

	IngredientsJSON datatypes.JSONType[[]Ingredient] `gorm:"column:ingredients" json:"-"`
	CreatedAt       time.Time                        `json:"-"`
	UpdatedAt       time.Time                        `json:"-"`
}

// TableName pins the catalog table name.
func (Recipe) TableName() string {
	return "recipes"
}

// BeforeSave copies the ingredient list into its JSON column.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.IngredientsJSON = datatypes.NewJSONType(r.Ingredients)
	return nil
}

// AfterFind restores the ingredient list from its JSON column.
func (r *Recipe) AfterFind(tx *gorm.DB) error {
	r.Ingredients = r.IngredientsJSON.Data()
	return nil
}
