package httpserver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	patienthttp "helix/contexts/clinical-data/patient-service/transport/http"
)

func TestPatientCreateRequiresAuthorization(t *testing.T) {
	server := newTestServer(t)
	body := []byte(`{"mrn":"MRN-100200","given_name":"Aino","family_name":"Virtanen","birth_year":1968,"consent_granted":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/patients/v1/patients", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPatientArtifactUploadRequiresConsent(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "dr.laine")

	createBody := []byte(`{"mrn":"MRN-300400","given_name":"Teemu","family_name":"Laakso","birth_year":1975,"consent_granted":true}`)
	createReq := httptest.NewRequest(http.MethodPost, "/api/patients/v1/patients", bytes.NewReader(createBody))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("Authorization", "Bearer "+token)
	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", createRR.Code, createRR.Body.String())
	}

	var patient patienthttp.PatientResponse
	if err := json.Unmarshal(createRR.Body.Bytes(), &patient); err != nil {
		t.Fatalf("decode patient response: %v", err)
	}

	revokeReq := httptest.NewRequest(
		http.MethodPost,
		"/api/patients/v1/patients/"+patient.PatientID+"/consent",
		bytes.NewReader([]byte(`{"consent_granted":false}`)),
	)
	revokeReq.Header.Set("Content-Type", "application/json")
	revokeReq.Header.Set("Authorization", "Bearer "+token)
	revokeRR := httptest.NewRecorder()
	server.mux.ServeHTTP(revokeRR, revokeReq)
	if revokeRR.Code != http.StatusOK {
		t.Fatalf("expected 200 consent revoke, got %d body=%s", revokeRR.Code, revokeRR.Body.String())
	}

	artifactBody := []byte(`{"kind":"expression_matrix","content_type":"text/csv","data_base64":"` +
		base64.StdEncoding.EncodeToString([]byte("gene,value\nTP53,0.8\n")) + `"}`)
	artifactReq := httptest.NewRequest(
		http.MethodPost,
		"/api/patients/v1/patients/"+patient.PatientID+"/artifacts",
		bytes.NewReader(artifactBody),
	)
	artifactReq.Header.Set("Content-Type", "application/json")
	artifactReq.Header.Set("Authorization", "Bearer "+token)
	artifactRR := httptest.NewRecorder()
	server.mux.ServeHTTP(artifactRR, artifactReq)
	if artifactRR.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without consent, got %d body=%s", artifactRR.Code, artifactRR.Body.String())
	}
}

func TestPatientArtifactRoundTripAfterConsent(t *testing.T) {
	server := newTestServer(t)
	token := registerAndLogin(t, server, "dr.nkemelu")

	createBody := []byte(`{"mrn":"MRN-500600","given_name":"Chiamaka","family_name":"Nkemelu","birth_year":1982,"consent_granted":true}`)
	createReq := httptest.NewRequest(http.MethodPost, "/api/patients/v1/patients", bytes.NewReader(createBody))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("Authorization", "Bearer "+token)
	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", createRR.Code, createRR.Body.String())
	}

	var patient patienthttp.PatientResponse
	if err := json.Unmarshal(createRR.Body.Bytes(), &patient); err != nil {
		t.Fatalf("decode patient response: %v", err)
	}

	raw := []byte("gene,value\nTP53,0.8\nBRCA1,0.3\n")
	artifactBody := []byte(`{"kind":"expression_matrix","content_type":"text/csv","data_base64":"` +
		base64.StdEncoding.EncodeToString(raw) + `"}`)
	artifactReq := httptest.NewRequest(
		http.MethodPost,
		"/api/patients/v1/patients/"+patient.PatientID+"/artifacts",
		bytes.NewReader(artifactBody),
	)
	artifactReq.Header.Set("Content-Type", "application/json")
	artifactReq.Header.Set("Authorization", "Bearer "+token)
	artifactRR := httptest.NewRecorder()
	server.mux.ServeHTTP(artifactRR, artifactReq)
	if artifactRR.Code != http.StatusCreated {
		t.Fatalf("expected 201 artifact, got %d body=%s", artifactRR.Code, artifactRR.Body.String())
	}

	var artifact patienthttp.ArtifactResponse
	if err := json.Unmarshal(artifactRR.Body.Bytes(), &artifact); err != nil {
		t.Fatalf("decode artifact response: %v", err)
	}

	downloadReq := httptest.NewRequest(http.MethodGet, "/api/patients/v1/artifacts/"+artifact.ArtifactID, nil)
	downloadReq.Header.Set("Authorization", "Bearer "+token)
	downloadRR := httptest.NewRecorder()
	server.mux.ServeHTTP(downloadRR, downloadReq)
	if downloadRR.Code != http.StatusOK {
		t.Fatalf("expected 200 download, got %d body=%s", downloadRR.Code, downloadRR.Body.String())
	}
	if !bytes.Equal(downloadRR.Body.Bytes(), raw) {
		t.Fatalf("expected downloaded bytes to match upload, got %q", downloadRR.Body.String())
	}
	if got := downloadRR.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv content type, got %q", got)
	}
}
