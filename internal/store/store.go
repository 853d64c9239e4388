// Package store persists households and accounts with gorm.
package store

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db         *gorm.DB
	Households *HouseholdRepository
	Accounts   *AccountRepository
}

// New creates a Store on db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Households: NewHouseholdRepository(db),
		Accounts:   NewAccountRepository(db),
	}
}

// Transaction runs fn with repositories bound to one transaction. The
// transaction commits when fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
