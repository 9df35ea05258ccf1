package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

var (
	// ErrInvalidToken covers malformed structure, bad signatures and missing claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken marks a well-formed, correctly signed token past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// TokenManager handles issuing and validating JWT tokens. The signing secret
// is fixed at construction and never mutated, so a single instance is safe to
// share across concurrent requests.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the JWT payload. Roles ride along in the token so request
// authorization never needs a store round-trip; the trade-off is that a role
// change only takes effect once the token expires.
type Claims struct {
	Roles []domain.Role `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Expired reports whether the claims' expiry has passed at the given instant.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt == nil || !c.ExpiresAt.Time.After(now)
}

// Generate builds and signs an HS256 JWT asserting the user's identity and
// roles, with sub/iat/exp set from the configured TTL.
func (tm *TokenManager) Generate(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and claim shape but deliberately not expiry, so
// callers can distinguish an expired token from a forged one via Expired.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", ErrInvalidToken)
	}
	return claims, nil
}

// Validate parses the token and additionally enforces expiry at the given
// instant, mapping the two failure classes to ErrInvalidToken and
// ErrExpiredToken. On ErrExpiredToken the parsed claims are still returned
// so callers can see whose token lapsed.
func (tm *TokenManager) Validate(tokenStr string, now time.Time) (*Claims, error) {
	claims, err := tm.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Expired(now) {
		return claims, ErrExpiredToken
	}
	return claims, nil
}
