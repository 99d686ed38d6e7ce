package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The ID is assigned by SQLite
// (AUTOINCREMENT) and written back into the struct, along with the
// timestamps, so the caller holds the canonical record afterwards.
//
// Duplicate usernames and emails surface as UNIQUE-constraint
// violations; we translate those into apperror.Conflict so the handler
// can answer 409 instead of 500.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if conflict := classifyUserConflict(err, user); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// classifyUserConflict maps a UNIQUE violation on users.username or
// users.email to an apperror.Conflict, or returns nil for any other
// error. The driver exposes no structured error code for this, so we
// match on the message — the same approach database/sql forums
// recommend for the pure-Go driver.
func classifyUserConflict(err error, user *model.User) *apperror.AppError {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "users.username") {
		return apperror.Conflict("user", user.Username)
	}
	if strings.Contains(msg, "users.email") {
		return apperror.Conflict("user", user.Email)
	}
	return apperror.Conflict("user", user.Username)
}

// GetUserByID retrieves a user by their numeric ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE id = ?`, strconv.FormatInt(id, 10), id)
}

// GetUserByUsername retrieves a user by their unique username.
// Returns apperror.ErrNotFound if no user exists with that name.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE username = ?`, username, username)
}

func (db *DB) getUser(ctx context.Context, query, label string, arg any) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", label)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", label, err)
	}
	return &u, nil
}

// UpdateUser rewrites the mutable fields of an existing user.
// Returns apperror.ErrNotFound if the ID matches no row.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if conflict := classifyUserConflict(err, user); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	return nil
}

// DeleteUser removes a user row. Idempotent: deleting a missing user
// returns (false, nil), not an error.
func (db *DB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	return affected > 0, nil
}
