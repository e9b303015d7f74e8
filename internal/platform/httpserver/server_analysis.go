package httpserver

import (
	"errors"
	"net/http"

	analysiserrors "helix/contexts/modeling/analysis-router-service/domain/errors"
	analysishttp "helix/contexts/modeling/analysis-router-service/transport/http"
)

func (s *Server) registerAnalysisRoutes() {
	s.mux.HandleFunc("POST /api/analysis/v1/plans", s.handleCreatePlan)
	s.mux.HandleFunc("GET /api/analysis/v1/plans/{plan_id}", s.handleGetPlan)
	s.mux.HandleFunc("POST /api/analysis/v1/plans/{plan_id}/dispatch", s.handleDispatchPlan)
	s.mux.HandleFunc("GET /api/analysis/v1/patients/{patient_id}/plans", s.handleListPlansByPatient)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req analysishttp.CreatePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Analysis.Handler.CreatePlanHandler(r.Context(), user.UserID, req)
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Analysis.Handler.GetPlanHandler(r.Context(), r.PathValue("plan_id"))
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDispatchPlan(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Analysis.Handler.DispatchPlanHandler(r.Context(), r.PathValue("plan_id"))
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPlansByPatient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Analysis.Handler.ListPlansByPatientHandler(r.Context(), r.PathValue("patient_id"))
	if err != nil {
		writeAnalysisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAnalysisDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysiserrors.ErrInvalidPlanInput),
		errors.Is(err, analysiserrors.ErrUnknownRequestedMethod):
		writeAnalysisError(w, http.StatusBadRequest, "invalid_plan", err.Error())
	case errors.Is(err, analysiserrors.ErrNoApplicableMethod):
		writeAnalysisError(w, http.StatusUnprocessableEntity, "no_applicable_method", err.Error())
	case errors.Is(err, analysiserrors.ErrPlanNotFound):
		writeAnalysisError(w, http.StatusNotFound, "plan_not_found", err.Error())
	case errors.Is(err, analysiserrors.ErrPlanAlreadyDispatched):
		writeAnalysisError(w, http.StatusConflict, "plan_already_dispatched", err.Error())
	default:
		writeAnalysisError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAnalysisError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, analysishttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
