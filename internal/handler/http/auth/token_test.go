package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

func fixedIssuer(t *testing.T, at time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)
	iss.now = func() time.Time { return at }
	return iss
}

func TestNewIssuer_WeakSecret(t *testing.T) {
	_, err := NewIssuer("short")
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	iss := fixedIssuer(t, now)

	tok, err := iss.Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := iss.Parse("Bearer " + tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, now.Add(time.Hour), claims.ExpiresAt.Time)

	// scheme は大文字小文字を区別しない
	_, err = iss.Parse("bearer " + tok)
	assert.NoError(t, err)
}

func TestIssue_RejectsBadInput(t *testing.T) {
	iss := fixedIssuer(t, time.Now())
	_, err := iss.Issue("", RoleAdmin, time.Hour)
	assert.Error(t, err)
	_, err = iss.Issue("ops", RoleAdmin, 0)
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	iss := fixedIssuer(t, now)

	valid, err := iss.Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	expired, err := fixedIssuer(t, now.Add(-2*time.Hour)).Issue("ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	other, err := NewIssuer("another-secret-key-at-least-32-characters")
	require.NoError(t, err)
	foreign, err := other.Issue("ops", RoleAdmin, 24*365*time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops", "role": "admin"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "ops", "role": "admin", "exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "ops", "role": "admin", "exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "empty", header: "", want: ErrMissingToken},
		{name: "basic scheme", header: "Basic b3BzOnB3", want: ErrMissingToken},
		{name: "bearer only", header: "Bearer ", want: ErrMissingToken},
		{name: "garbage", header: "Bearer not.a.jwt", want: ErrInvalidToken},
		{name: "expired", header: "Bearer " + expired, want: ErrInvalidToken},
		{name: "wrong secret", header: "Bearer " + foreign, want: ErrInvalidToken},
		{name: "missing exp", header: "Bearer " + noExp, want: ErrInvalidToken},
		{name: "hs512", header: "Bearer " + hs512, want: ErrInvalidToken},
		{name: "alg none", header: "Bearer " + noneAlg, want: ErrInvalidToken},
		{name: "tampered", header: "Bearer " + valid + "x", want: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Parse(tt.header)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
