package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	vitalserrors "helix/contexts/realtime/streaming-service/domain/errors"
	"helix/contexts/realtime/streaming-service/ports"
	vitalshttp "helix/contexts/realtime/streaming-service/transport/http"
)

func (s *Server) registerVitalsRoutes() {
	s.mux.HandleFunc("POST /api/vitals/v1/events", s.handleIngestVitalEvent)
	s.mux.HandleFunc("GET /api/vitals/v1/patients/{patient_id}/events", s.handleListVitalEvents)
	s.mux.HandleFunc("GET /api/vitals/v1/alerts", s.handleListAlerts)
	s.mux.HandleFunc("POST /api/vitals/v1/alerts/{alert_id}/ack", s.handleAcknowledgeAlert)
	s.mux.HandleFunc("GET /ws/patients/{patient_id}", s.handlePatientStream)
}

func (s *Server) handleIngestVitalEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	var req vitalshttp.IngestEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.modules.Vitals.Handler.IngestEventHandler(r.Context(), req)
	if err != nil {
		writeVitalsDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListVitalEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Vitals.Handler.ListEventsByPatientHandler(r.Context(), r.PathValue("patient_id"), limit)
	if err != nil {
		writeVitalsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	filter := ports.AlertFilter{PatientID: r.URL.Query().Get("patient_id")}
	if raw := r.URL.Query().Get("acknowledged"); raw != "" {
		acked, err := strconv.ParseBool(raw)
		if err != nil {
			writeVitalsError(w, http.StatusBadRequest, "invalid_filter", "acknowledged must be a boolean")
			return
		}
		filter.Acknowledged = &acked
	}
	resp, err := s.modules.Vitals.Handler.ListAlertsHandler(r.Context(), filter, limit)
	if err != nil {
		writeVitalsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.modules.Vitals.Handler.AcknowledgeAlertHandler(r.Context(), r.PathValue("alert_id"), user.UserID)
	if err != nil {
		writeVitalsDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePatientStream upgrades to a WebSocket. Browsers cannot set an
// Authorization header on the upgrade request, so the token rides in a query
// parameter instead.
func (s *Server) handlePatientStream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeVitalsError(w, http.StatusUnauthorized, "missing_token", "token query parameter is required")
		return
	}
	if _, err := s.modules.Auth.Handler.AuthenticateHandler(r.Context(), token); err != nil {
		writeVitalsError(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired")
		return
	}
	if err := s.modules.Vitals.Hub.Subscribe(w, r, r.PathValue("patient_id")); err != nil {
		s.logger.Warn("websocket subscribe failed",
			"event", "ws_subscribe_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"patient_id", r.PathValue("patient_id"),
			"error", err.Error(),
		)
	}
}

func writeVitalsDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vitalserrors.ErrInvalidVitalEvent),
		errors.Is(err, vitalserrors.ErrUnknownMetric):
		writeVitalsError(w, http.StatusBadRequest, "invalid_event", err.Error())
	case errors.Is(err, vitalserrors.ErrAlertNotFound),
		errors.Is(err, vitalserrors.ErrEventNotFound):
		writeVitalsError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, vitalserrors.ErrAlertAcknowledged):
		writeVitalsError(w, http.StatusConflict, "alert_already_acknowledged", err.Error())
	default:
		writeVitalsError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVitalsError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, vitalshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
