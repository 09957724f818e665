package authstate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/breez-edu/breez/supabase/client"
)

// sessionExpired reports whether the session's access token has expired.
// The token is decoded without signature verification: the client never
// trusts the claims for authorization, only to decide whether a cached
// session is worth presenting before the backend answers.
func sessionExpired(s *client.Session, now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return true
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
