package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserSummary is the authenticated user's display data, as returned by the
// login and profile endpoints.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	SchoolID  string `json:"schoolId,omitempty"`
}

// Session holds the credentials for an authenticated user.
// AccessToken and RefreshToken are either both present or both absent;
// a partial session is never stored.
type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         UserSummary `json:"user"`
	ExpiresAt    time.Time   `json:"expiresAt,omitzero"`
}

// Valid reports whether the session carries a complete credential pair.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Expired reports whether the access token has passed its expiry.
// Sessions without a known expiry are never considered expired here;
// the server is the authority and answers with a 401.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TokenExpiry extracts the expiry of an access token from its unverified
// "exp" claim. Verification is the server's job; the client only uses the
// claim as a hint. Returns the zero time when the token is not a JWT or
// carries no expiry.
func TokenExpiry(accessToken string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
