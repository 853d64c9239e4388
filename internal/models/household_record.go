package models

import (
	"time"

	"gorm.io/datatypes"
)

// HouseholdRecord is the persisted form of a Household. The nested document
// parts live in JSON columns and Version guards every update.
type HouseholdRecord struct {
	ID          string                          `gorm:"type:varchar(36);primarykey"`
	Name        string                          `gorm:"size:255"`
	InviteCode  string                          `gorm:"size:6;not null;uniqueIndex"`
	Status      string                          `gorm:"size:20;not null;default:'active'"`
	Version     int64                           `gorm:"not null;default:1"`
	Users       datatypes.JSONType[Members]     `gorm:"column:users"`
	Session     datatypes.JSONType[Session]     `gorm:"column:session"`
	WeeklyPlans datatypes.JSONType[WeeklyPlans] `gorm:"column:weekly_plans"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName pins the households table name.
func (HouseholdRecord) TableName() string {
	return "households"
}

// NewHouseholdRecord converts a household into its persisted form.
func NewHouseholdRecord(h *Household) *HouseholdRecord {
	plans := h.WeeklyPlans
	if plans == nil {
		plans = WeeklyPlans{}
	}
	return &HouseholdRecord{
		ID:          h.ID,
		Name:        h.Name,
		InviteCode:  h.InviteCode,
		Status:      h.Status,
		Version:     h.Version,
		Users:       datatypes.NewJSONType(h.Users),
		Session:     datatypes.NewJSONType(h.CurrentSession),
		WeeklyPlans: datatypes.NewJSONType(plans),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// Household converts the record back into the domain shape.
func (r *HouseholdRecord) Household() *Household {
	h := &Household{
		ID:             r.ID,
		Name:           r.Name,
		InviteCode:     r.InviteCode,
		Status:         r.Status,
		Version:        r.Version,
		Users:          r.Users.Data(),
		CurrentSession: r.Session.Data(),
		WeeklyPlans:    r.WeeklyPlans.Data(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if h.WeeklyPlans == nil {
		h.WeeklyPlans = WeeklyPlans{}
	}
	if h.CurrentSession.MatchedMeals == nil {
		h.CurrentSession.MatchedMeals = []Recipe{}
	}
	if h.CurrentSession.Status == "" {
		h.CurrentSession.Status = SessionPending
	}
	return h
}
