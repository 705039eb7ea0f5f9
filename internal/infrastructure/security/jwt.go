package security

import (
	"errors"
	"fmt"
	"time"

	"safarsathi-service/internal/domain/entity"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for malformed, expired or forged tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims identify the actor a token was issued to
type Claims struct {
	ID   string      `json:"id"`
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies HS256 session tokens
type TokenSigner struct {
	secret  []byte
	expires time.Duration
	now     func() time.Time
}

// NewTokenSigner creates a signer for tokens valid for expires
func NewTokenSigner(secret string, expires time.Duration) *TokenSigner {
	return &TokenSigner{
		secret:  []byte(secret),
		expires: expires,
		now:     time.Now,
	}
}

// Sign issues a token for actor
func (s *TokenSigner) Sign(actor *entity.Actor) (string, error) {
	now := s.now()
	claims := Claims{
		ID:   actor.ID,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expires)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses token and returns its claims
func (s *TokenSigner) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
