package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	workflowhttp "helix/contexts/orchestration/workflow-service/transport/http"
)

func submitWorkflow(t *testing.T, server *Server, token string) string {
	t.Helper()
	body := `{"idempotency_key":"idem-1","workflow_type":"grn_inference","patient_id":"patient-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/workflows/v1/workflows", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 submit, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp workflowhttp.SubmitWorkflowResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if resp.Workflow.WorkflowID == "" {
		t.Fatal("expected non-empty workflow id")
	}
	return resp.Workflow.WorkflowID
}

func TestWorkflowResultsBeforeCompletionReturns400(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "scheduler-clinician")
	workflowID := submitWorkflow(t, server, token)

	req := httptest.NewRequest(http.MethodGet, "/api/workflows/v1/workflows/"+workflowID+"/results", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pending workflow results, got %d body=%s", rr.Code, rr.Body.String())
	}
	var errResp workflowhttp.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "results_not_ready" {
		t.Fatalf("expected results_not_ready code, got %q", errResp.Code)
	}
}

func TestWorkflowResultsUnknownWorkflowReturns404(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "results-clinician")

	req := httptest.NewRequest(http.MethodGet, "/api/workflows/v1/workflows/wf-missing/results", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
