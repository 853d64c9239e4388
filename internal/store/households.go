package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// HouseholdRepository reads and writes household documents.
type HouseholdRepository struct {
	db *gorm.DB
}

// NewHouseholdRepository creates a new household repository.
func NewHouseholdRepository(db *gorm.DB) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// Get loads a household by id.
func (r *HouseholdRepository) Get(ctx context.Context, id string) (*models.Household, error) {
	var rec models.HouseholdRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundf("household %s", id)
		}
		return nil, fmt.Errorf("failed to get household: %w", err)
	}
	return rec.Household(), nil
}

// GetByInviteCode loads the household owning code. Codes compare case-insensitively.
func (r *HouseholdRepository) GetByInviteCode(ctx context.Context, code string) (*models.Household, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var rec models.HouseholdRecord
	if err := r.db.WithContext(ctx).First(&rec, "invite_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundf("invite code %s", code)
		}
		return nil, fmt.Errorf("failed to get household by invite code: %w", err)
	}
	return rec.Household(), nil
}

// InviteCodeExists reports whether code is taken.
func (r *HouseholdRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseholdRecord{}).
		Where("invite_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return count > 0, nil
}

// Create inserts h with version 1.
func (r *HouseholdRepository) Create(ctx context.Context, h *models.Household) error {
	now := time.Now().UTC()
	h.Version = 1
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	h.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(models.NewHouseholdRecord(h)).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("household %s: %w", h.ID, types.ErrConflict)
		}
		return fmt.Errorf("failed to create household: %w", err)
	}
	return nil
}

// Update writes the whole document of h if its stored version still equals
// h.Version, then bumps h.Version. A stale version yields types.ErrConflict.
func (r *HouseholdRepository) Update(ctx context.Context, h *models.Household) error {
	rec := models.NewHouseholdRecord(h)
	now := time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&models.HouseholdRecord{}).
		Where("id = ? AND version = ?", h.ID, h.Version).
		Updates(map[string]interface{}{
			"name":         rec.Name,
			"status":       rec.Status,
			"users":        rec.Users,
			"session":      rec.Session,
			"weekly_plans": rec.WeeklyPlans,
			"version":      h.Version + 1,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update household: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, h.ID); err != nil {
			return err
		}
		return fmt.Errorf("household %s at version %d: %w", h.ID, h.Version, types.ErrConflict)
	}

	h.Version++
	h.UpdatedAt = now
	return nil
}

// Delete removes a household.
func (r *HouseholdRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.HouseholdRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete household: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.NotFoundf("household %s", id)
	}
	return nil
}

// isDuplicateKey recognizes unique violations from gorm's translated errors
// and from raw lib/pq errors, which gorm's postgres dialector does not translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
