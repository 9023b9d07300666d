package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// ExpiryHint returns now+ttl for a positive ttl, otherwise the exp claim of a JWT token.
// The signature is not verified; the value is advisory and never enforced.
func ExpiryHint(clock clockwork.Clock, token string, ttl time.Duration) time.Time {
	if ttl > 0 {
		return clock.Now().Add(ttl)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
