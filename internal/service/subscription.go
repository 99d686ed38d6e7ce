package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/repository"
)

// SubscriptionService manages per-user topic subscriptions with a
// cache-aside topic list.
//
// Every operation is session-gated: the caller's (session_id, user_id)
// pair is validated first, and on failure nothing touches the store or
// the cache. A stolen user_id without a matching live session gets 401
// and no side effects.
type SubscriptionService struct {
	subs     repository.SubscriptionRepository
	cache    repository.TopicCache
	sessions *SessionService
	logger   *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	cache repository.TopicCache,
	sessions *SessionService,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		cache:    cache,
		sessions: sessions,
		logger:   logger,
	}
}

// authorize is the shared session gate.
func (s *SubscriptionService) authorize(ctx context.Context, sessionID string, userID int64) error {
	if !s.sessions.Validate(ctx, sessionID, userID) {
		return apperror.Unauthorized("failed to validate session")
	}
	return nil
}

// Get returns the user's topics, cache first.
//
// Cache-aside: on a hit the store is never touched; on a miss the
// store is queried and the result cached with the fixed TTL. Cache
// failures degrade to store reads rather than failing the request —
// the cache is an optimization, not a dependency.
func (s *SubscriptionService) Get(ctx context.Context, sessionID string, userID int64) ([]string, error) {
	if err := s.authorize(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	topics, hit, err := s.cache.GetTopics(ctx, userID)
	if err != nil {
		s.logger.Warn("topic cache read failed, falling back to store",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
	} else if hit {
		return topics, nil
	}

	topics, err = s.subs.GetSubscriptions(ctx, userID)
	if err != nil {
		return nil, apperror.Store(fmt.Sprintf("reading subscriptions for user %d", userID), err)
	}

	if err := s.cache.SetTopics(ctx, userID, topics); err != nil {
		s.logger.Warn("topic cache write failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
	}
	return topics, nil
}

// Save bulk-inserts the (user, topic) pairs and invalidates the cached
// list so the next Get sees the new state instead of waiting out the
// TTL. Returns the number of rows actually added.
func (s *SubscriptionService) Save(ctx context.Context, sessionID string, userID int64, topics []string) (int64, error) {
	if err := s.authorize(ctx, sessionID, userID); err != nil {
		return 0, err
	}

	cleaned, err := cleanTopics(topics)
	if err != nil {
		return 0, err
	}

	added, err := s.subs.SaveSubscriptions(ctx, userID, cleaned)
	if err != nil {
		return 0, apperror.Store(fmt.Sprintf("saving subscriptions for user %d", userID), err)
	}

	s.invalidate(ctx, userID)

	s.logger.Info("subscriptions saved",
		slog.Int64("userID", userID),
		slog.Int64("added", added),
	)
	return added, nil
}

// Delete bulk-removes the matching pairs and invalidates the cache.
// Returns the number of rows removed.
func (s *SubscriptionService) Delete(ctx context.Context, sessionID string, userID int64, topics []string) (int64, error) {
	if err := s.authorize(ctx, sessionID, userID); err != nil {
		return 0, err
	}

	cleaned, err := cleanTopics(topics)
	if err != nil {
		return 0, err
	}

	removed, err := s.subs.DeleteSubscriptions(ctx, userID, cleaned)
	if err != nil {
		return 0, apperror.Store(fmt.Sprintf("deleting subscriptions for user %d", userID), err)
	}

	s.invalidate(ctx, userID)

	s.logger.Info("subscriptions deleted",
		slog.Int64("userID", userID),
		slog.Int64("removed", removed),
	)
	return removed, nil
}

// invalidate drops the cached list, logging rather than failing on
// cache errors: the store write already succeeded, and the TTL bounds
// how long a stale entry can outlive a failed invalidation.
func (s *SubscriptionService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("topic cache invalidation failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
	}
}

// cleanTopics trims and drops empty entries; an entirely empty list is
// a validation error, since the request then has nothing to do.
func cleanTopics(topics []string) ([]string, error) {
	cleaned := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, apperror.ValidationFailed("topics", "at least one topic is required")
	}
	return cleaned, nil
}
