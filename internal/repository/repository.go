// Package repository declares the storage interfaces the service layer
// programs against. Concrete implementations live in subpackages:
// sqlite (users, sessions, subscriptions), blob (posts on S3), and
// cache (topic lists on redis). Services receive these interfaces, so
// tests can substitute in-memory fakes without touching a real store.
package repository

import (
	"context"
	"time"

	"github.com/tazwar/feedpost/internal/model"
)

// UserRepository persists user accounts in the relational store.
type UserRepository interface {
	// CreateUser inserts a new user and fills in ID and timestamps.
	// Returns apperror.ErrConflict when the username or email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUser reports whether a row existed and was removed.
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// SessionRepository persists sessions in the relational store.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// DeleteSession reports whether a row existed and was removed,
	// so callers can tell "logged out" from "was never logged in".
	DeleteSession(ctx context.Context, id string) (bool, error)
	// DeleteExpiredSessions removes every session whose expiry is at
	// or before now and returns how many rows went away.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionRepository persists (user, topic) pairs.
type SubscriptionRepository interface {
	// SaveSubscriptions bulk-inserts the pairs and returns the number
	// of rows actually added (already-present pairs are ignored).
	SaveSubscriptions(ctx context.Context, userID int64, topics []string) (int64, error)
	GetSubscriptions(ctx context.Context, userID int64) ([]string, error)
	DeleteSubscriptions(ctx context.Context, userID int64, topics []string) (int64, error)
}

// PostStore persists posts as whole JSON documents in a blob container.
// There is no partial update — AppendComment in the service layer is a
// read-modify-write of the full object.
type PostStore interface {
	Put(ctx context.Context, post *model.Post) error
	// Get returns apperror.ErrNotFound when no object exists for id.
	Get(ctx context.Context, id string) (*model.Post, error)
	// List scans the whole container. O(n) — fine at this scale.
	List(ctx context.Context) ([]model.Post, error)
	// Delete reports whether an object existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// TopicCache memoizes a user's topic list with a fixed TTL.
type TopicCache interface {
	// GetTopics returns (topics, true, nil) on a hit and
	// (nil, false, nil) on a miss.
	GetTopics(ctx context.Context, userID int64) ([]string, bool, error)
	SetTopics(ctx context.Context, userID int64, topics []string) error
	// Invalidate drops the cached entry; absent keys are not an error.
	Invalidate(ctx context.Context, userID int64) error
}
