// Package auth guards the mutating routes with HS256 bearer tokens.
//
// There are no user accounts: an operator mints a token with `newsctl token`
// from the shared JWT_SECRET and hands it to whatever automation needs to
// change favorites or clear the cache.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest JWT_SECRET accepted.
const MinSecretLength = 32

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrWeakSecret   = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
)

// Claims is the token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies tokens with one shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer validates the secret length.
func NewIssuer(secret string) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	return &Issuer{secret: []byte(secret), now: time.Now}, nil
}

// Issue returns a signed token for subject with role, valid for ttl.
func (i *Issuer) Issue(subject, role string, ttl time.Duration) (string, error) {
	if subject == "" || role == "" {
		return "", errors.New("issue token: subject and role are required")
	}
	if ttl <= 0 {
		return "", errors.New("issue token: ttl must be positive")
	}
	now := i.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Parse verifies an "Authorization" header value and returns its claims.
// Only HS256 is accepted and exp is required.
func (i *Issuer) Parse(authorization string) (*Claims, error) {
	const prefix = "Bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return nil, ErrMissingToken
	}
	raw := strings.TrimSpace(authorization[len(prefix):])

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return claims, nil
}
