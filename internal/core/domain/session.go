package domain

import "time"

// Session is the decoded content of a bearer token.
type Session struct {
	TokenID   string
	UserID    int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
