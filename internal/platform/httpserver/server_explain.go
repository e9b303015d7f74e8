package httpserver

import (
	"errors"
	"net/http"

	explainerrors "helix/contexts/modeling/explainability-service/domain/errors"
	explainhttp "helix/contexts/modeling/explainability-service/transport/http"
)

func (s *Server) registerExplainRoutes() {
	s.mux.HandleFunc("POST /api/explain/v1/explanations", s.handleExplainPrediction)
	s.mux.HandleFunc("GET /api/explain/v1/explanations/{explanation_id}", s.handleGetExplanation)
	s.mux.HandleFunc("GET /api/explain/v1/predictions/{prediction_id}/explanations", s.handleListExplanations)
}

func (s *Server) handleExplainPrediction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req explainhttp.ExplainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Explain.Handler.ExplainHandler(r.Context(), user.UserID, req)
	if err != nil {
		writeExplainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetExplanation(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Explain.Handler.GetExplanationHandler(r.Context(), r.PathValue("explanation_id"))
	if err != nil {
		writeExplainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListExplanations(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Explain.Handler.ListExplanationsByPredictionHandler(
		r.Context(),
		r.PathValue("prediction_id"),
	)
	if err != nil {
		writeExplainDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeExplainDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, explainerrors.ErrUnsupportedMethod),
		errors.Is(err, explainerrors.ErrInvalidExplanationRef):
		writeExplainError(w, http.StatusBadRequest, "invalid_explain_request", err.Error())
	case errors.Is(err, explainerrors.ErrExplanationNotFound):
		writeExplainError(w, http.StatusNotFound, "explanation_not_found", err.Error())
	case errors.Is(err, explainerrors.ErrAttributionUnavailable):
		writeExplainError(w, http.StatusUnprocessableEntity, "attribution_unavailable", err.Error())
	default:
		writeExplainError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeExplainError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, explainhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
