package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"helix/contexts/identity-access/auth-service/domain/entities"
	domainerrors "helix/contexts/identity-access/auth-service/domain/errors"
	"helix/contexts/identity-access/auth-service/ports"
)

const minPasswordLength = 8

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     entities.Role
}

type LoginResult struct {
	User      entities.User
	Token     string
	ExpiresAt time.Time
}

// Service orchestrates account registration, credential verification, and
// token-backed identity lookups.
type Service struct {
	Users  ports.UserRepository
	Tokens TokenIssuer
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (s Service) Register(ctx context.Context, input RegisterInput) (entities.User, error) {
	logger := s.resolveLogger()
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" || len(input.Password) < minPasswordLength {
		return entities.User{}, domainerrors.ErrInvalidRegistration
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return entities.User{}, domainerrors.ErrInvalidRegistration
	}
	role := input.Role
	if role == "" {
		role = entities.RoleClinician
	}
	if !role.Valid() {
		return entities.User{}, domainerrors.ErrInvalidRegistration
	}

	if _, found, err := s.Users.GetUserByUsername(ctx, username); err != nil {
		return entities.User{}, err
	} else if found {
		logger.Warn("registration rejected for duplicate username",
			"event", "auth_register_duplicate_username",
			"module", "identity-access/auth-service",
			"layer", "application",
			"username", username,
		)
		return entities.User{}, domainerrors.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, err
	}
	userID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.User{}, err
	}

	now := s.now()
	user := entities.User{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.SaveUser(ctx, user); err != nil {
		// A concurrent insert on the same username surfaces as the same
		// domain error the pre-check produces.
		return entities.User{}, err
	}

	logger.Info("user registered",
		"event", "auth_user_registered",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", user.UserID,
		"username", user.Username,
		"role", string(user.Role),
	)
	return user, nil
}

func (s Service) Login(ctx context.Context, username string, password string) (LoginResult, error) {
	logger := s.resolveLogger()
	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" || password == "" {
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	user, found, err := s.Users.GetUserByUsername(ctx, normalized)
	if err != nil {
		return LoginResult{}, err
	}
	if !found {
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}
	if !user.Active {
		return LoginResult{}, domainerrors.ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("login rejected for bad credentials",
			"event", "auth_login_rejected",
			"module", "identity-access/auth-service",
			"layer", "application",
			"username", normalized,
		)
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	now := s.now()
	token, expiresAt, err := s.Tokens.Issue(user, now)
	if err != nil {
		return LoginResult{}, err
	}
	logger.Info("user logged in",
		"event", "auth_login_succeeded",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", user.UserID,
		"username", user.Username,
	)
	return LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate verifies a bearer token and resolves the current account. A
// token for a deactivated or deleted account is rejected even when the
// signature is still valid.
func (s Service) Authenticate(ctx context.Context, token string) (entities.User, error) {
	identity, err := s.Tokens.Verify(token)
	if err != nil {
		return entities.User{}, err
	}
	user, err := s.Users.GetUser(ctx, identity.UserID)
	if err != nil {
		return entities.User{}, domainerrors.ErrInvalidToken
	}
	if !user.Active {
		return entities.User{}, domainerrors.ErrUserInactive
	}
	return user, nil
}

func (s Service) Deactivate(ctx context.Context, actor entities.User, userID string) (entities.User, error) {
	if actor.Role != entities.RoleAdmin {
		return entities.User{}, domainerrors.ErrAdminRequired
	}
	user, err := s.Users.GetUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return entities.User{}, err
	}
	if !user.Active {
		return user, nil
	}
	user.Active = false
	user.UpdatedAt = s.now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return entities.User{}, err
	}
	s.resolveLogger().Info("user deactivated",
		"event", "auth_user_deactivated",
		"module", "identity-access/auth-service",
		"layer", "application",
		"user_id", user.UserID,
		"actor_id", actor.UserID,
	)
	return user, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
