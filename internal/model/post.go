package model

import "time"

// Post is stored as a single JSON object in the blob store, keyed by
// "<id>.json". The comment sequence is embedded in the same object —
// comments have no identity of their own and are only ever appended.
type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Comments []Comment `json:"comments"`
}

// Comment is immutable once appended to a post. Time is set by the
// server at append time, never taken from the client.
type Comment struct {
	User    string    `json:"user"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}
