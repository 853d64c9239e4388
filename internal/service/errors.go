package service

import (
	"errors"
	"fmt"

	"github.com/pageza/mealmatch/backend/internal/types"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

func upstreamUnavailable(err error) error {
	return fmt.Errorf("%w: %v", types.ErrUpstreamUnavailable, err)
}
