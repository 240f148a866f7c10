package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/journal"
	"github.com/kailas-cloud/burner/internal/logger"
	"github.com/kailas-cloud/burner/internal/usecase/burn"
	healthuc "github.com/kailas-cloud/burner/internal/usecase/health"
	"github.com/kailas-cloud/burner/internal/usecase/settings"
	"github.com/kailas-cloud/burner/internal/usecase/status"
	"github.com/kailas-cloud/burner/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the burner host commands over HTTP.
type Server struct {
	engine        *burn.Engine
	settings      *settings.Service
	status        *status.Service
	journal       *journal.Journal
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler

	keepAlive    time.Duration
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewServer creates an HTTP API server.
func NewServer(
	engine *burn.Engine,
	settingsSvc *settings.Service,
	statusSvc *status.Service,
	j *journal.Journal,
	health *healthuc.Service,
	log *zap.Logger,
) *Server {
	s := &Server{
		engine:    engine,
		settings:  settingsSvc,
		status:    statusSvc,
		journal:   j,
		health:    health,
		logger:    log,
		keepAlive: defaultKeepAlive,
		shutdown:  make(chan struct{}),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInterval, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable),
		sentinelHandler(domain.ErrClosed, http.StatusServiceUnavailable, ErrorCodeShuttingDown),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/state", s.GetState)
	r.Get("/status", s.GetStatus)
	r.Get("/events", s.StreamEvents)
	r.Get("/ws", s.StreamWebSocket)
	r.Get("/menu", s.GetMenu)
	r.Post("/enable", s.Enable)
	r.Post("/disable", s.Disable)
	r.Post("/burn", s.BurnNow)
	r.Get("/models", s.ListModels)
	r.Put("/model", s.SetModel)
	r.Put("/interval", s.SetInterval)
	r.Get("/log", s.GetLog)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.View())
}

// GetMenu handles GET /menu.
func (s *Server) GetMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MenuResponse{Items: status.Menu(s.engine.State())})
}

// Enable handles POST /enable.
func (s *Server) Enable(w http.ResponseWriter, _ *http.Request) {
	s.engine.Enable()
	writeJSON(w, http.StatusOK, s.engine.State())
}

// Disable handles POST /disable.
func (s *Server) Disable(w http.ResponseWriter, _ *http.Request) {
	s.engine.Disable()
	writeJSON(w, http.StatusOK, s.engine.State())
}

// BurnNow handles POST /burn. By default the burn runs in the background and
// the call returns 202; ?wait=true blocks until the burn finishes.
func (s *Server) BurnNow(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		outcome := s.engine.BurnNow(r.Context())
		writeJSON(w, http.StatusOK, BurnResponse{Accepted: true, Outcome: outcome, State: s.engine.State()})
		return
	}

	if !s.engine.Trigger() {
		s.handleDomainError(w, r, domain.ErrClosed)
		return
	}
	writeJSON(w, http.StatusAccepted, BurnResponse{Accepted: true, State: s.engine.State()})
}

// ListModels handles GET /models. Returns the model picker items.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	models := s.engine.AvailableModels(r.Context())
	writeJSON(w, http.StatusOK, MenuResponse{Items: status.ModelPicker(models)})
}

// SetModel handles PUT /model.
func (s *Server) SetModel(w http.ResponseWriter, r *http.Request) {
	var req SetModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.engine.SetModel(domain.NormalizeModelID(req.Model))
	writeJSON(w, http.StatusOK, s.engine.State())
}

// SetInterval handles PUT /interval.
func (s *Server) SetInterval(w http.ResponseWriter, r *http.Request) {
	var req SetIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if _, err := s.settings.SetInterval(r.Context(), req.Value); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.State())
}

// GetLog handles GET /log. ?tail=N limits the response to the last N lines.
func (s *Server) GetLog(w http.ResponseWriter, r *http.Request) {
	lines := s.journal.Lines()
	if raw := r.URL.Query().Get("tail"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "tail must be a non-negative integer")
			return
		}
		if n < len(lines) {
			lines = lines[len(lines)-n:]
		}
	}
	writeJSON(w, http.StatusOK, LogResponse{Lines: lines})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Phase:   report.Phase,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInterval,
		domain.ErrStoreUnavailable,
		domain.ErrClosed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
