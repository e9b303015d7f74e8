package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"helix/contexts/orchestration/workflow-service/domain/entities"
	workflowerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
	workflowhttp "helix/contexts/orchestration/workflow-service/transport/http"
)

func (s *Server) registerWorkflowRoutes() {
	s.mux.HandleFunc("POST /api/workflows/v1/workflows", s.handleSubmitWorkflow)
	s.mux.HandleFunc("GET /api/workflows/v1/workflows", s.handleListWorkflows)
	s.mux.HandleFunc("GET /api/workflows/v1/workflows/{workflow_id}", s.handleGetWorkflow)
	s.mux.HandleFunc("GET /api/workflows/v1/workflows/{workflow_id}/results", s.handleWorkflowResults)
	s.mux.HandleFunc("POST /api/workflows/v1/workflows/{workflow_id}/cancel", s.handleCancelWorkflow)
	s.mux.HandleFunc("POST /api/workflows/v1/workflows/{workflow_id}/retry", s.handleRetryWorkflow)
	s.mux.HandleFunc("POST /api/workflows/v1/workflows/{workflow_id}/progress", s.handleWorkflowProgress)
}

func (s *Server) handleSubmitWorkflow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req workflowhttp.SubmitWorkflowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The body field wins; the header is a fallback for clients that follow
	// the platform-wide Idempotency-Key convention.
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	resp, err := s.modules.Workflows.Handler.SubmitWorkflowHandler(r.Context(), req, user.UserID)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter := ports.WorkflowFilter{
		PatientID: r.URL.Query().Get("patient_id"),
		Status:    entities.Status(r.URL.Query().Get("status")),
	}
	resp, err := s.modules.Workflows.Handler.ListWorkflowsHandler(r.Context(), filter, limit)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Workflows.Handler.GetWorkflowHandler(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkflowResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Workflows.Handler.GetResultsHandler(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelWorkflow(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Workflows.Handler.CancelWorkflowHandler(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetryWorkflow(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Workflows.Handler.RetryWorkflowHandler(r.Context(), r.PathValue("workflow_id"))
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkflowProgress(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req workflowhttp.ReportProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Workflows.Handler.ReportProgressHandler(r.Context(), r.PathValue("workflow_id"), req)
	if err != nil {
		writeWorkflowDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeWorkflowDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflowerrors.ErrIdempotencyKeyRequired),
		errors.Is(err, workflowerrors.ErrInvalidWorkflowInput),
		errors.Is(err, workflowerrors.ErrUnknownWorkflowType):
		writeWorkflowError(w, http.StatusBadRequest, "invalid_workflow_request", err.Error())
	case errors.Is(err, workflowerrors.ErrResultsNotReady):
		writeWorkflowError(w, http.StatusBadRequest, "results_not_ready", err.Error())
	case errors.Is(err, workflowerrors.ErrWorkflowNotFound):
		writeWorkflowError(w, http.StatusNotFound, "workflow_not_found", err.Error())
	case errors.Is(err, workflowerrors.ErrIdempotencyConflict),
		errors.Is(err, workflowerrors.ErrInvalidTransition),
		errors.Is(err, workflowerrors.ErrWorkflowNotRetryable),
		errors.Is(err, workflowerrors.ErrWorkflowNotRunning),
		errors.Is(err, workflowerrors.ErrWorkflowCancelled):
		writeWorkflowError(w, http.StatusConflict, "workflow_state_conflict", err.Error())
	default:
		writeWorkflowError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeWorkflowError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, workflowhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
