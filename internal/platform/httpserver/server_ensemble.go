package httpserver

import (
	"errors"
	"net/http"

	ensembleerrors "helix/contexts/modeling/ensemble-service/domain/errors"
	ensemblehttp "helix/contexts/modeling/ensemble-service/transport/http"
)

func (s *Server) registerEnsembleRoutes() {
	s.mux.HandleFunc("POST /api/ensemble/v1/predictions", s.handleCombinePredictions)
	s.mux.HandleFunc("GET /api/ensemble/v1/predictions/{prediction_id}", s.handleGetPrediction)
	s.mux.HandleFunc("GET /api/ensemble/v1/patients/{patient_id}/predictions", s.handleListPredictionsByPatient)
}

func (s *Server) handleCombinePredictions(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req ensemblehttp.CombineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Ensemble.Handler.CombineHandler(r.Context(), user.UserID, req)
	if err != nil {
		writeEnsembleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Ensemble.Handler.GetPredictionHandler(r.Context(), r.PathValue("prediction_id"))
	if err != nil {
		writeEnsembleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPredictionsByPatient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Ensemble.Handler.ListPredictionsByPatientHandler(r.Context(), r.PathValue("patient_id"))
	if err != nil {
		writeEnsembleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeEnsembleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ensembleerrors.ErrInsufficientInputs),
		errors.Is(err, ensembleerrors.ErrInvalidMethodOutput),
		errors.Is(err, ensembleerrors.ErrUnknownStrategy),
		errors.Is(err, ensembleerrors.ErrInvalidPredictionRef),
		errors.Is(err, ensembleerrors.ErrPlanRoutesUnavailable):
		writeEnsembleError(w, http.StatusBadRequest, "invalid_combine_request", err.Error())
	case errors.Is(err, ensembleerrors.ErrNoUsableInput):
		writeEnsembleError(w, http.StatusUnprocessableEntity, "no_usable_input", err.Error())
	case errors.Is(err, ensembleerrors.ErrPredictionNotFound):
		writeEnsembleError(w, http.StatusNotFound, "prediction_not_found", err.Error())
	default:
		writeEnsembleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEnsembleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ensemblehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
