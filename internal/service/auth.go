// Package service contains the business logic layer.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes the JSON envelope
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the record store
//
// Services accept primitives and return domain errors (apperror), never HTTP
// types or status codes. Handlers translate.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
	"github.com/sakif/rulesmith/internal/auth"
	"github.com/sakif/rulesmith/internal/model"
	"github.com/sakif/rulesmith/internal/repository"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// emailPattern is deliberately loose — it rejects obvious garbage (no "@",
// no dot in the domain) without trying to implement RFC 5322. The
// registration email is not verified anyway.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// loginFailedMsg is returned for both "no such email" and "wrong password".
// A distinct message per case would leak which emails are registered.
const loginFailedMsg = "invalid email or password"

// AuthService handles registration, login, and identity lookup.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the sanitized user and the issued token so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  model.SanitizedUser
	Token string
}

// Register creates a new account and issues a token.
//
// Uniqueness of email AND username is checked here with two separate lookups
// before the append — the store itself enforces nothing. Two concurrent
// registrations with the same email can both pass the check; this race is
// accepted given the low write concurrency (the store serializes individual
// operations, not check-then-append sequences).
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "username, email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "invalid email format")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if _, exists := s.users.FindByEmail(ctx, email); exists {
		return nil, apperror.Conflict("email", "email is already registered")
	}
	if _, exists := s.users.FindByUsername(ctx, username); exists {
		return nil, apperror.Conflict("username", "username is already taken")
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashed,
	}
	// Repository assigns ID and CreatedAt.
	s.users.Append(ctx, user)

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email and password are required")
	}

	user, ok := s.users.FindByEmail(ctx, email)
	if !ok {
		return nil, apperror.Unauthorized(loginFailedMsg)
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, apperror.Unauthorized(loginFailedMsg)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

// GetUserByID returns the sanitized user for the given internal ID.
// Used by the /api/auth/me handler after the middleware validates the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.SanitizedUser, error) {
	if id == "" {
		return model.SanitizedUser{}, apperror.ValidationFailed("id", "user ID is required")
	}

	user, ok := s.users.FindByID(ctx, id)
	if !ok {
		return model.SanitizedUser{}, apperror.NotFound("user", id)
	}

	return user.Sanitized(), nil
}
