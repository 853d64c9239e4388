package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/mealmatch/backend/internal/types"
)

// TokenService validates the HS256 bearer tokens issued by the identity
// provider. Generate exists for tooling and tests.
type TokenService struct {
	secret []byte
}

// Ensure TokenService implements ITokenService
var _ ITokenService = (*TokenService)(nil)

// NewTokenService creates a TokenService for secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// ValidateToken parses and verifies tokenString.
func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateToken signs claims, expiring after ttl.
func (s *TokenService) GenerateToken(claims *types.TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	c := *claims
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if c.Subject == "" {
		c.Subject = c.UserID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &c).SignedString(s.secret)
}
