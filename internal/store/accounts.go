package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// AccountRepository reads and writes per-user account records.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get loads the account of uid.
func (r *AccountRepository) Get(ctx context.Context, uid string) (*models.Account, error) {
	var acc models.Account
	if err := r.db.WithContext(ctx).First(&acc, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundf("account %s", uid)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

// Upsert inserts acc or overwrites the stored name, email and household link.
func (r *AccountRepository) Upsert(ctx context.Context, acc *models.Account) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "household_id", "updated_at"}),
	}).Create(acc).Error
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// Claim links the account of acc.UID to householdID, creating the account if
// needed. It fails with a precondition error when the account already belongs
// to a different household. The check and the write are a single conditional
// update, so of two concurrent claims for different households only one wins.
// The household linked before the call is returned.
func (r *AccountRepository) Claim(ctx context.Context, acc *models.Account, householdID string) (string, error) {
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.Account{UID: acc.UID, Name: acc.Name, Email: acc.Email}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		var current models.Account
		if err := tx.First(&current, "uid = ?", acc.UID).Error; err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		previous = current.HouseholdID

		updates := map[string]interface{}{"household_id": householdID}
		if acc.Name != "" {
			updates["name"] = acc.Name
		}
		if acc.Email != "" {
			updates["email"] = acc.Email
		}
		res := tx.Model(&models.Account{}).
			Where("uid = ? AND (household_id = '' OR household_id = ?)", acc.UID, householdID).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to link account: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return types.Preconditionf("user %s already belongs to another household", acc.UID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// Release unlinks uid if it is still linked to householdID.
func (r *AccountRepository) Release(ctx context.Context, uid, householdID string) error {
	err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("uid = ? AND household_id = ?", uid, householdID).
		Update("household_id", "").Error
	if err != nil {
		return fmt.Errorf("failed to unlink account: %w", err)
	}
	return nil
}
