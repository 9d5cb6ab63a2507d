package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/growbucks/internal/domain"
)

// Claims represents the JWT claims. The subject is the caller ID.
type Claims struct {
	Role      domain.Role `json:"role"`
	AccountID string      `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}

// Caller converts verified claims into a domain caller.
func (c *Claims) Caller() *domain.Caller {
	return &domain.Caller{
		ID:        c.Subject,
		Role:      c.Role,
		AccountID: c.AccountID,
	}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate signs a token for the caller. Used by tooling and tests; tokens are
// normally issued by the identity provider.
func (m *JWTManager) Generate(caller *domain.Caller) (string, error) {
	if !caller.Role.IsValid() {
		return "", fmt.Errorf("generate token: %w", domain.ErrInvalidToken)
	}

	now := m.now()
	claims := Claims{
		Role:      caller.Role,
		AccountID: caller.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	// A child token must name its account.
	if claims.Role == domain.RoleChild && claims.AccountID == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
