package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/pageza/mealmatch/backend/internal/models"
	"github.com/pageza/mealmatch/backend/internal/store"
	"github.com/pageza/mealmatch/backend/internal/types"
)

// writeAction tells the writer what to do with the mutated household.
type writeAction int

const (
	writeUpdate writeAction = iota
	writeSkip
	writeDelete
)

// maxWriteAttempts bounds the read-compute-write cycles of one operation.
const maxWriteAttempts = 5

// householdWriter runs read-modify-write cycles on one household at a time.
// Writers inside the process queue on a per-household mutex; writers in other
// processes are caught by the version check and the cycle is retried.
type householdWriter struct {
	repo   *store.HouseholdRepository
	locks  *keyedMutex
	logger *zap.Logger
}

func newHouseholdWriter(repo *store.HouseholdRepository, logger *zap.Logger) *householdWriter {
	return &householdWriter{repo: repo, locks: newKeyedMutex(), logger: logger}
}

func (w *householdWriter) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(b, maxWriteAttempts-1), ctx)
}

// update loads household id, applies fn and writes the result as one
// document. fn runs again on a fresh copy after a version conflict, so it
// must derive everything from its argument. The returned household is nil
// after a delete.
func (w *householdWriter) update(ctx context.Context, id string, fn func(h *models.Household) (writeAction, error)) (*models.Household, error) {
	unlock := w.locks.Lock(id)
	defer unlock()

	var result *models.Household
	attempt := 0
	op := func() error {
		attempt++
		h, err := w.repo.Get(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}

		action, err := fn(h)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch action {
		case writeSkip:
			result = h
			return nil
		case writeDelete:
			if err := w.repo.Delete(ctx, id); err != nil {
				return backoff.Permanent(err)
			}
			result = nil
			return nil
		}

		if err := w.repo.Update(ctx, h); err != nil {
			if errors.Is(err, types.ErrConflict) {
				w.logger.Debug("household version conflict, retrying",
					zap.String("household_id", id), zap.Int("attempt", attempt))
				return err
			}
			return backoff.Permanent(err)
		}
		result = h
		return nil
	}

	if err := backoff.Retry(op, w.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return result, nil
}
