package httpserver

import (
	"errors"
	"net/http"

	patienterrors "helix/contexts/clinical-data/patient-service/domain/errors"
	patienthttp "helix/contexts/clinical-data/patient-service/transport/http"
)

func (s *Server) registerPatientRoutes() {
	s.mux.HandleFunc("POST /api/patients/v1/patients", s.handleCreatePatient)
	s.mux.HandleFunc("GET /api/patients/v1/patients", s.handleListPatients)
	s.mux.HandleFunc("GET /api/patients/v1/patients/{patient_id}", s.handleGetPatient)
	s.mux.HandleFunc("POST /api/patients/v1/patients/{patient_id}/consent", s.handleUpdateConsent)
	s.mux.HandleFunc("POST /api/patients/v1/patients/{patient_id}/artifacts", s.handleAttachArtifact)
	s.mux.HandleFunc("GET /api/patients/v1/patients/{patient_id}/artifacts", s.handleListArtifacts)
	s.mux.HandleFunc("GET /api/patients/v1/artifacts/{artifact_id}", s.handleDownloadArtifact)
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req patienthttp.CreatePatientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Patients.Handler.CreatePatientHandler(r.Context(), user.UserID, req)
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Patients.Handler.ListPatientsHandler(r.Context(), limit)
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Patients.Handler.GetPatientHandler(r.Context(), r.PathValue("patient_id"))
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateConsent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req patienthttp.UpdateConsentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Patients.Handler.UpdateConsentHandler(r.Context(), r.PathValue("patient_id"), req)
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttachArtifact(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req patienthttp.AttachArtifactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Patients.Handler.AttachArtifactHandler(
		r.Context(),
		user.UserID,
		r.PathValue("patient_id"),
		req,
	)
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.modules.Patients.Handler.ListArtifactsHandler(r.Context(), r.PathValue("patient_id"))
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownloadArtifact(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	meta, data, err := s.modules.Patients.Handler.GetArtifactHandler(r.Context(), r.PathValue("artifact_id"))
	if err != nil {
		writePatientDomainError(w, err)
		return
	}
	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writePatientDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, patienterrors.ErrInvalidPatientInput),
		errors.Is(err, patienterrors.ErrInvalidArtifactInput):
		writePatientError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, patienterrors.ErrConsentRequired):
		writePatientError(w, http.StatusForbidden, "consent_required", err.Error())
	case errors.Is(err, patienterrors.ErrPatientNotFound):
		writePatientError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, patienterrors.ErrArtifactNotFound):
		writePatientError(w, http.StatusNotFound, "artifact_not_found", err.Error())
	default:
		writePatientError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePatientError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, patienthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
