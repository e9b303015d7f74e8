package httpserver

import (
	"errors"
	"net/http"

	grnerrors "helix/contexts/modeling/grn-service/domain/errors"
	grnhttp "helix/contexts/modeling/grn-service/transport/http"
)

func (s *Server) registerGRNRoutes() {
	s.mux.HandleFunc("POST /api/grn/v1/models", s.handleCreateModel)
	s.mux.HandleFunc("GET /api/grn/v1/models", s.handleListModels)
	s.mux.HandleFunc("GET /api/grn/v1/models/{model_id}", s.handleGetModel)
	s.mux.HandleFunc("POST /api/grn/v1/models/{model_id}/verify", s.handleVerifyModel)
	s.mux.HandleFunc("DELETE /api/grn/v1/models/{model_id}", s.handleDeleteModel)
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req grnhttp.CreateModelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.GRN.Handler.CreateModelHandler(r.Context(), user.UserID, req)
	if err != nil {
		writeGRNDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.GRN.Handler.ListModelsHandler(r.Context(), limit)
	if err != nil {
		writeGRNDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.GRN.Handler.GetModelHandler(r.Context(), r.PathValue("model_id"))
	if err != nil {
		writeGRNDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyModel(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req grnhttp.VerifyModelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.GRN.Handler.VerifyModelHandler(r.Context(), r.PathValue("model_id"), req)
	if err != nil {
		writeGRNDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	if err := s.modules.GRN.Handler.DeleteModelHandler(r.Context(), r.PathValue("model_id")); err != nil {
		writeGRNDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeGRNDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, grnerrors.ErrInvalidModelInput),
		errors.Is(err, grnerrors.ErrUnknownGene),
		errors.Is(err, grnerrors.ErrDuplicateEdge),
		errors.Is(err, grnerrors.ErrNoPropertiesToCheck):
		writeGRNError(w, http.StatusBadRequest, "invalid_model", err.Error())
	case errors.Is(err, grnerrors.ErrModelNotFound):
		writeGRNError(w, http.StatusNotFound, "model_not_found", err.Error())
	case errors.Is(err, grnerrors.ErrModelNotValidated),
		errors.Is(err, grnerrors.ErrModelNotDeletable):
		writeGRNError(w, http.StatusConflict, "model_state_conflict", err.Error())
	default:
		writeGRNError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGRNError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, grnhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
