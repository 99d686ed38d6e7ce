package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// CreateSession inserts a session row. The caller (the session
// service) has already generated the ID and computed the expiry; this
// method only persists.
func (db *DB) CreateSession(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, expires_at, created_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session for user %d: %w", session.UserID, err)
	}
	return nil
}

// GetSession fetches a session row by ID. Expiry is NOT checked here —
// that is the session service's job. The repository only answers
// "does this row exist and what does it say".
func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := db.conn.QueryRowContext(ctx,
		`SELECT session_id, user_id, expires_at, created_at
		 FROM sessions WHERE session_id = ?`,
		id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	return &s, nil
}

// DeleteSession removes a session row. Returns whether a row existed —
// a second delete of the same ID is (false, nil), not an error.
func (db *DB) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return affected > 0, nil
}

// DeleteExpiredSessions bulk-removes every session whose expiry is at
// or before now. Invoked by the scheduled sweep, never by request
// handlers — validation treats expired rows as invalid without
// deleting them.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("sqlite: sweeping expired sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: sweeping expired sessions: %w", err)
	}
	return affected, nil
}
