package httpserver

import (
	"errors"
	"net/http"

	autherrors "helix/contexts/identity-access/auth-service/domain/errors"
	authhttp "helix/contexts/identity-access/auth-service/transport/http"
)

func (s *Server) registerAuthRoutes() {
	s.mux.HandleFunc("POST /api/auth/v1/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/v1/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/auth/v1/me", s.handleMe)
	s.mux.HandleFunc("POST /api/auth/v1/users/{user_id}/deactivate", s.handleDeactivateUser)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authhttp.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Auth.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAuthDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authhttp.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Auth.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAuthDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeAuthError(w, http.StatusUnauthorized, "missing_token", "bearer token is required")
		return
	}
	resp, err := s.modules.Auth.Handler.AuthenticateHandler(r.Context(), token)
	if err != nil {
		writeAuthDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeAuthError(w, http.StatusUnauthorized, "missing_token", "bearer token is required")
		return
	}
	resp, err := s.modules.Auth.Handler.DeactivateHandler(r.Context(), token, r.PathValue("user_id"))
	if err != nil {
		writeAuthDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuthDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, autherrors.ErrInvalidRegistration),
		errors.Is(err, autherrors.ErrUsernameTaken):
		writeAuthError(w, http.StatusBadRequest, "invalid_registration", err.Error())
	case errors.Is(err, autherrors.ErrInvalidCredentials),
		errors.Is(err, autherrors.ErrInvalidToken):
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, autherrors.ErrUserInactive),
		errors.Is(err, autherrors.ErrAdminRequired):
		writeAuthError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, autherrors.ErrUserNotFound):
		writeAuthError(w, http.StatusNotFound, "user_not_found", err.Error())
	default:
		writeAuthError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
