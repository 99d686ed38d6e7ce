package model

import "time"

// Session is a time-bounded credential proving a user's identity.
//
// The ID is an opaque random UUID; possession of it is the proof. A
// session is valid when a row with this ID exists and ExpiresAt is in
// the future. Expiry is fixed at creation (now + 3 days) and never
// extended — there is no sliding window.
type Session struct {
	ID        string    `json:"session_id" db:"session_id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the session is past its expiry at the given
// instant. A session expiring exactly now counts as expired.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
