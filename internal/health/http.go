package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Handler exposes liveness and readiness endpoints backed by a Manager.
type Handler struct {
	manager *Manager
}

func NewHandler(m *Manager) *Handler { return &Handler{manager: m} }

// RegisterRoutes mounts the health endpoints on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/health/live", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]Result `json:"checks,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := h.manager.CheckAll(r.Context())
	status := "healthy"
	code := http.StatusOK
	for _, res := range results {
		if res.Status != StatusHealthy {
			status = "unhealthy"
			if res.Critical {
				code = http.StatusServiceUnavailable
			}
		}
	}
	writeJSON(w, code, healthResponse{Status: status, Timestamp: time.Now(), Checks: results})
}

// handleLiveness answers as long as the process is serving requests.
func (h *Handler) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "alive", Timestamp: time.Now()})
}

func (h *Handler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.manager.IsReady(r.Context()) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ready", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, healthResponse{
		Status:    "not ready",
		Timestamp: time.Now(),
		Checks:    h.manager.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
