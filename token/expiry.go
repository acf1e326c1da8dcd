package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var ErrNoExpiry = errors.New("token has no exp claim")

// ExpiresAt decodes the payload of a JWT and returns its exp claim.
// The signature is not verified; only the backend can do that.
func ExpiresAt(rawToken string) (time.Time, error) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, errors.New("empty token")
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("[token ExpiresAt] decode: %w", err)
	}

	exp, err := unverified.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("[token ExpiresAt] exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// IsExpired reports whether exp lies before the current epoch second.
// Tokens that cannot be decoded are always expired.
func IsExpired(rawToken string) bool {
	exp, err := ExpiresAt(rawToken)
	if err != nil {
		return true
	}
	return exp.Unix() < NowTimeFunc().Unix()
}
