package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openboard/openboard/session"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	require.NoError(t, err)
	return raw
}

func TestJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})

	got, err := session.JWTExpiry(raw)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestJWTExpiry_NoClaim(t *testing.T) {
	raw := signToken(t, jwt.RegisteredClaims{Subject: "alice"})

	_, err := session.JWTExpiry(raw)
	assert.ErrorIs(t, err, session.ErrNoExpiry)
}

func TestJWTExpiry_Malformed(t *testing.T) {
	_, err := session.JWTExpiry("not-a-token")
	assert.Error(t, err)
}
