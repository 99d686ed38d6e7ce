package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/auth"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// AuthService handles registration, login, and logout.
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ SessionService (session lifecycle)
//
// Login deliberately answers "invalid credentials" for both an unknown
// username and a wrong password, so the endpoint can't be used to
// probe which usernames exist.
type AuthService struct {
	users     repository.UserRepository
	sessions  *SessionService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	sessions *SessionService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account. All three fields are required; the
// password is bcrypt-hashed before it ever reaches the repository. A
// taken username or email comes back as ErrConflict (409), any other
// store failure as ErrStore (500).
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, apperror.Store(fmt.Sprintf("registering user %q", username), err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login verifies the credentials and issues a session on success.
// Unknown username and wrong password are indistinguishable to the
// caller: both are ErrUnauthorized with the same message.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, apperror.Store(fmt.Sprintf("looking up user %q", username), err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("username", username))
		return nil, apperror.Unauthorized("invalid credentials")
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return session, nil
}

// Logout revokes the session. Revoking a session that doesn't exist —
// already logged out, expired and swept, or never issued — is
// ErrNotFound so the handler can answer 404 per the API contract.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.ValidationFailed("session_id", "session_id is required")
	}

	deleted, err := s.sessions.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("session", sessionID)
	}
	return nil
}
