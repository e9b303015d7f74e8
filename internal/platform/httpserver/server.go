package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	patientservice "helix/contexts/clinical-data/patient-service"
	authservice "helix/contexts/identity-access/auth-service"
	authhttp "helix/contexts/identity-access/auth-service/transport/http"
	analysisrouterservice "helix/contexts/modeling/analysis-router-service"
	ensembleservice "helix/contexts/modeling/ensemble-service"
	explainabilityservice "helix/contexts/modeling/explainability-service"
	grnservice "helix/contexts/modeling/grn-service"
	workflowservice "helix/contexts/orchestration/workflow-service"
	streamingservice "helix/contexts/realtime/streaming-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "helix/internal/platform/httpserver/docs"
)

type Modules struct {
	Auth      authservice.Module
	Patients  patientservice.Module
	GRN       grnservice.Module
	Analysis  analysisrouterservice.Module
	Ensemble  ensembleservice.Module
	Explain   explainabilityservice.Module
	Vitals    streamingservice.Module
	Workflows workflowservice.Module
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	modules Modules
}

func New(modules Modules, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		modules: modules,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.registerAuthRoutes()
	s.registerPatientRoutes()
	s.registerGRNRoutes()
	s.registerAnalysisRoutes()
	s.registerEnsembleRoutes()
	s.registerExplainRoutes()
	s.registerVitalsRoutes()
	s.registerWorkflowRoutes()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authenticate validates the bearer token on a protected route. It writes the
// 401 response itself; callers stop when ok is false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (authhttp.UserResponse, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing_token", "bearer token is required")
		return authhttp.UserResponse{}, false
	}
	user, err := s.modules.Auth.Handler.AuthenticateHandler(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "bearer token is invalid or expired")
		return authhttp.UserResponse{}, false
	}
	return user, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return 0, false
	}
	return limit, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
