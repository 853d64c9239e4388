package models

import "time"

// Account is the per-user record linking a user to their household.
type Account struct {
	UID         string    `gorm:"type:varchar(128);primarykey" json:"uid"`
	Name        string    `gorm:"size:255" json:"name"`
	Email       string    `gorm:"size:255;index" json:"email"`
	HouseholdID string    `gorm:"type:varchar(36);index" json:"householdId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName pins the accounts table name.
func (Account) TableName() string {
	return "accounts"
}
