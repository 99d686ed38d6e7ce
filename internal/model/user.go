// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// IDs are numeric and assigned by the database (AUTOINCREMENT) — the
// username is the unique human-facing handle, the id is what sessions
// and subscriptions reference.
//
// PasswordHash holds the bcrypt hash of the user's password. It is
// tagged `json:"-"` so no handler can leak it by serializing a User;
// the plaintext password exists only transiently inside the auth
// service during register/login.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
