package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/server"
)

// JourneyHandler exposes the journey lifecycle over HTTP: submission, the
// three resumption events, and state queries.
type JourneyHandler struct {
	svc    *server.JourneyService
	logger *zap.Logger
}

// NewJourneyHandler creates a new handler.
func NewJourneyHandler(svc *server.JourneyService, logger *zap.Logger) *JourneyHandler {
	return &JourneyHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the journey routes on the provided mux.
func (h *JourneyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/journeys", h.handleSubmit)
	mux.HandleFunc("/journeys/", h.handleJourney)
}

type submitRequest struct {
	Description   string   `json:"description"`
	Tier          string   `json:"tier,omitempty"`
	CustomModules []string `json:"custom_modules,omitempty"`
}

func (h *JourneyHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	id, err := h.svc.Submit(r.Context(), req.Description, journey.Tier(req.Tier), req.CustomModules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"journey_id": id})
}

// handleJourney routes /journeys/{id} and /journeys/{id}/{action}.
func (h *JourneyHandler) handleJourney(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/journeys/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "journey id is required")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleState(w, r, id)
	case action == "answer" && r.Method == http.MethodPost:
		h.handleAnswer(w, r, id)
	case action == "upgrade" && r.Method == http.MethodPost:
		h.handleUpgrade(w, r, id)
	case action == "approve" && r.Method == http.MethodPost:
		h.handleApprove(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *JourneyHandler) handleState(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.svc.GetState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "journey not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *JourneyHandler) handleAnswer(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h.finish(w, id, h.svc.SubmitAnswer(r.Context(), id, req.Answer))
}

func (h *JourneyHandler) handleUpgrade(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Tier          string   `json:"tier"`
		CustomModules []string `json:"custom_modules,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h.finish(w, id, h.svc.UpgradeTier(r.Context(), id, journey.Tier(req.Tier), req.CustomModules))
}

func (h *JourneyHandler) handleApprove(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Approved     bool           `json:"approved"`
		EditedReport map[string]any `json:"edited_report,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !req.Approved {
		writeError(w, http.StatusBadRequest, "approved must be true")
		return
	}
	h.finish(w, id, h.svc.Approve(r.Context(), id, req.EditedReport))
}

func (h *JourneyHandler) finish(w http.ResponseWriter, id string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"journey_id": id, "status": "accepted"})
	case errors.Is(err, server.ErrWrongGate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Warn("Journey resumption failed",
			zap.String("journey_id", id),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
