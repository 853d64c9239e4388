package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a household, account, recipe or shopping-list
	// section does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPrecondition is returned when the caller does not own the slot it acts on
	// or the household is missing a required sub-structure.
	ErrPrecondition = errors.New("precondition failed")
	// ErrMatchCapReached is returned for a right swipe once the matched set is full.
	ErrMatchCapReached = errors.New("match cap reached")
	// ErrUpstreamUnavailable is returned when the recipe provider fails or returns
	// malformed data.
	ErrUpstreamUnavailable = errors.New("recipe provider unavailable")
	// ErrConflict is returned when a household was modified between read and write.
	ErrConflict = errors.New("household was modified concurrently")
	// ErrInvalidInput is returned for malformed dates, meal types, directions and so on.
	ErrInvalidInput = errors.New("invalid input")
)

// MatchCapError carries the size of the matched set that blocked the swipe.
type MatchCapError struct {
	Count int
	Cap   int
}

func (e *MatchCapError) Error() string {
	return fmt.Sprintf("match cap reached: %d of %d meals already matched", e.Count, e.Cap)
}

// Is lets errors.Is(err, ErrMatchCapReached) match.
func (e *MatchCapError) Is(target error) bool {
	return target == ErrMatchCapReached
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Preconditionf wraps ErrPrecondition with a formatted message.
func Preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPrecondition)
}

// Invalidf wraps ErrInvalidInput with a formatted message.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
