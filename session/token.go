package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFunc extracts the expiry time from a raw token. It is deliberately
// isolated from the rest of the manager so alternate token formats can be
// substituted without touching the refresh state machine.
type ExpiryFunc func(raw string) (time.Time, error)

// ErrNoExpiry is returned by JWTExpiry when the token carries no exp claim.
var ErrNoExpiry = errors.New("token has no exp claim")

// JWTExpiry reads the exp registered claim from a JWT without verifying its
// signature. The client has no key material to verify with; the server is the
// authority on token validity, and a forged exp only mis-times the proactive
// logout.
func JWTExpiry(raw string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
