package model

// Subscription maps a user to a topic they follow. The (UserID, Topic)
// pairs form a set — the schema enforces uniqueness, so saving the same
// pair twice is a no-op rather than a duplicate row.
type Subscription struct {
	ID     int64  `json:"id"      db:"id"`
	UserID int64  `json:"user_id" db:"user_id"`
	Topic  string `json:"topic"   db:"topic"`
}
