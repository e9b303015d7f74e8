package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/identity-access/auth-service/application"
	"helix/contexts/identity-access/auth-service/domain/entities"
	httptransport "helix/contexts/identity-access/auth-service/transport/http"
)

type Handler struct {
	Accounts application.Service
	Logger   *slog.Logger
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.UserResponse, error) {
	user, err := h.Accounts.Register(ctx, application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entities.Role(req.Role),
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.LoginResponse, error) {
	result, err := h.Accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httptransport.LoginResponse{}, err
	}
	return httptransport.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        toUserResponse(result.User),
	}, nil
}

// AuthenticateHandler resolves a bearer token to the current account. It also
// backs the platform auth middleware for every protected route group.
func (h Handler) AuthenticateHandler(ctx context.Context, token string) (httptransport.UserResponse, error) {
	user, err := h.Accounts.Authenticate(ctx, token)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (h Handler) DeactivateHandler(ctx context.Context, actorToken string, userID string) (httptransport.UserResponse, error) {
	actor, err := h.Accounts.Authenticate(ctx, actorToken)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	user, err := h.Accounts.Deactivate(ctx, actor, userID)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func toUserResponse(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}
