package models

import "time"

// MealType is one of the three daily meal slots.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// Valid reports whether m is breakfast, lunch or dinner.
func (m MealType) Valid() bool {
	return m == Breakfast || m == Lunch || m == Dinner
}

// PlanDateLayout is the ISO date format of weekly plan keys.
const PlanDateLayout = "2006-01-02"

// PlannedMeal is a meal assigned to a day. RecipeID is nil for custom meals.
type PlannedMeal struct {
	Meal     string  `json:"meal"`
	RecipeID *string `json:"id"`
	IsCustom bool    `json:"isCustom"`
}

// DayPlan holds the meals of one day.
type DayPlan struct {
	Breakfast *PlannedMeal `json:"breakfast"`
	Lunch     *PlannedMeal `json:"lunch"`
	Dinner    *PlannedMeal `json:"dinner"`
}

// Slot returns a pointer to the field for meal.
func (d *DayPlan) Slot(meal MealType) **PlannedMeal {
	switch meal {
	case Breakfast:
		return &d.Breakfast
	case Lunch:
		return &d.Lunch
	default:
		return &d.Dinner
	}
}

// Empty reports whether no meal is planned.
func (d *DayPlan) Empty() bool {
	return d.Breakfast == nil && d.Lunch == nil && d.Dinner == nil
}

// WeeklyPlans maps an ISO date to that day's plan.
type WeeklyPlans map[string]*DayPlan

// ParsePlanDate validates an ISO date key.
func ParsePlanDate(s string) (time.Time, error) {
	return time.Parse(PlanDateLayout, s)
}
