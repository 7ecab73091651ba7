package health

import (
	"net/http"

	"timesheet-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	monitor *Monitor
}

// NewHandler serves liveness and readiness probes. A nil monitor makes
// /ready always succeed.
func NewHandler(monitor *Monitor) *Handler {
	return &Handler{monitor: monitor}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
		return
	}

	failures := h.monitor.CheckAll(r.Context())
	if len(failures) == 0 {
		httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
		return
	}

	checks := make(map[string]string, len(failures))
	for name, err := range failures {
		checks[name] = err.Error()
	}
	httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
		Status: "unavailable",
		Checks: checks,
	})
}
