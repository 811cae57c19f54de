package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryOf reads the exp claim of an access token without verifying its
// signature. The console never holds the signing key; it only needs to know
// when to refresh.
func ExpiryOf(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
