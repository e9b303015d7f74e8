package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	patientservice "helix/contexts/clinical-data/patient-service"
	patientapp "helix/contexts/clinical-data/patient-service/application"
	authservice "helix/contexts/identity-access/auth-service"
	authhttp "helix/contexts/identity-access/auth-service/transport/http"
	analysisrouterservice "helix/contexts/modeling/analysis-router-service"
	ensembleservice "helix/contexts/modeling/ensemble-service"
	explainabilityservice "helix/contexts/modeling/explainability-service"
	grnservice "helix/contexts/modeling/grn-service"
	workflowservice "helix/contexts/orchestration/workflow-service"
	streamingservice "helix/contexts/realtime/streaming-service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cipher, err := patientapp.NewMRNCipher(bytes.Repeat([]byte("k"), 32))
	if err != nil {
		t.Fatalf("build mrn cipher: %v", err)
	}
	return New(
		Modules{
			Auth:      authservice.NewInMemoryModule([]byte("test-secret"), slog.Default()),
			Patients:  patientservice.NewInMemoryModule(cipher, slog.Default()),
			GRN:       grnservice.NewInMemoryModule(slog.Default()),
			Analysis:  analysisrouterservice.NewInMemoryModule(nil, slog.Default()),
			Ensemble:  ensembleservice.NewInMemoryModule(nil, nil, slog.Default()),
			Explain:   explainabilityservice.NewInMemoryModule(slog.Default()),
			Vitals:    streamingservice.NewInMemoryModule(nil, nil, slog.Default()),
			Workflows: workflowservice.NewInMemoryModule(nil, nil, slog.Default()),
		},
		slog.Default(),
		":0",
	)
}

func registerAndLogin(t *testing.T, server *Server, username string) string {
	t.Helper()
	registerBody := fmt.Sprintf(
		`{"username":%q,"email":%q,"password":"correct-horse"}`,
		username, username+"@hospital.test",
	)
	registerReq := httptest.NewRequest(http.MethodPost, "/api/auth/v1/register", bytes.NewReader([]byte(registerBody)))
	registerReq.Header.Set("Content-Type", "application/json")
	registerRR := httptest.NewRecorder()
	server.mux.ServeHTTP(registerRR, registerReq)
	if registerRR.Code != http.StatusCreated {
		t.Fatalf("expected 201 register, got %d body=%s", registerRR.Code, registerRR.Body.String())
	}

	loginBody := fmt.Sprintf(`{"username":%q,"password":"correct-horse"}`, username)
	loginReq := httptest.NewRequest(http.MethodPost, "/api/auth/v1/login", bytes.NewReader([]byte(loginBody)))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRR := httptest.NewRecorder()
	server.mux.ServeHTTP(loginRR, loginReq)
	if loginRR.Code != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", loginRR.Code, loginRR.Body.String())
	}

	var resp authhttp.LoginResponse
	if err := json.Unmarshal(loginRR.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected non-empty access token")
	}
	return resp.AccessToken
}

func TestAuthMeRequiresBearerToken(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/v1/me", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthMeRejectsGarbageToken(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthRegisterRejectsDuplicateUsername(t *testing.T) {
	server := newTestServer(t)
	registerAndLogin(t, server, "dr.osei")

	body := []byte(`{"username":"dr.osei","email":"other@hospital.test","password":"correct-horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/v1/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 duplicate username, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthLoginTokenResolvesCurrentUser(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "dr.virtanen")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 me, got %d body=%s", rr.Code, rr.Body.String())
	}

	var user authhttp.UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if user.Username != "dr.virtanen" {
		t.Fatalf("expected username dr.virtanen, got %q", user.Username)
	}
}
