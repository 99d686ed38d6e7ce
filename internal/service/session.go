// Package service contains the business logic layer: session
// lifecycle, credential validation, posts, and subscriptions. Services
// accept repository interfaces and return domain errors from
// internal/apperror; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// SessionTTL is the fixed lifetime of every session: 3 days from
// creation, not configurable, never extended.
const SessionTTL = 72 * time.Hour

// SessionService is the session manager — the one component with
// temporal logic. It issues, validates, and revokes sessions.
//
// The clock is injectable so tests can move time instead of sleeping;
// production wiring leaves it nil and gets time.Now.
type SessionService struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(sessions repository.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// newSessionServiceWithClock is a test hook.
func newSessionServiceWithClock(sessions repository.SessionRepository, logger *slog.Logger, now func() time.Time) *SessionService {
	return &SessionService{sessions: sessions, logger: logger, now: now}
}

// Create issues a fresh session for the user. The ID is a random UUID
// (collision probability negligible — generation is treated as
// unique), and expiry is creation time plus SessionTTL. Store failures
// propagate as ErrStore so login can answer 500 rather than pretending
// the session exists.
func (s *SessionService) Create(ctx context.Context, userID int64) (*model.Session, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, apperror.Store(fmt.Sprintf("creating session for user %d", userID), err)
	}

	s.logger.Info("session created",
		slog.String("sessionID", session.ID),
		slog.Int64("userID", userID),
		slog.Time("expiresAt", session.ExpiresAt),
	)
	return session, nil
}

// Validate reports whether the session exists, is unexpired, and (when
// userID > 0) belongs to that user.
//
// Two deliberate properties:
//
//   - Fail closed: any store failure is "not valid", never an error.
//     An auth check that can't reach the database must deny.
//   - Read-only: expired rows are NOT deleted here. Cleanup belongs to
//     the scheduled sweep; validation on the request path only reads.
func (s *SessionService) Validate(ctx context.Context, sessionID string, userID int64) bool {
	if sessionID == "" {
		return false
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("session lookup failed, treating as invalid",
				slog.String("sessionID", sessionID),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if session.Expired(s.now()) {
		return false
	}
	if userID > 0 && session.UserID != userID {
		return false
	}
	return true
}

// Delete revokes a session. Idempotent: the first call on an existing
// session returns true, any subsequent call returns false without
// error. Store failures propagate.
func (s *SessionService) Delete(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.sessions.DeleteSession(ctx, sessionID)
	if err != nil {
		return false, apperror.Store(fmt.Sprintf("deleting session %s", sessionID), err)
	}
	if deleted {
		s.logger.Info("session deleted", slog.String("sessionID", sessionID))
	}
	return deleted, nil
}

// DeleteExpired bulk-removes every expired session and returns the
// count. Runs on the scheduler, not on any request path.
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, apperror.Store("sweeping expired sessions", err)
	}
	if count > 0 {
		s.logger.Info("expired sessions swept", slog.Int64("count", count))
	}
	return count, nil
}
