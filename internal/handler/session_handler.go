package handler

import (
	"net/http"

	"github.com/freeeve/stake-lattice/api/internal/model"
	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/internal/service"
	"github.com/freeeve/stake-lattice/api/internal/session"
)

// SessionHandler serves the presentation client's single session.
type SessionHandler struct {
	svc       *service.AnalysisService
	sessionID string
}

// NewSessionHandler creates a SessionHandler bound to one session id.
func NewSessionHandler(svc *service.AnalysisService, sessionID string) *SessionHandler {
	return &SessionHandler{svc: svc, sessionID: sessionID}
}

// GetSession handles GET /api/v1/session, creating it on first access.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Open(r.Context(), h.sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetScenario handles GET /api/v1/session/scenario and returns the
// confirmed inputs as YAML.
func (h *SessionHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.Scenario(r.Context(), h.sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data, err := scenario.Marshal(sc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UpdateSettings handles PATCH /api/v1/session/settings
func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w)(h.svc.UpdateSettings(r.Context(), h.sessionID, req))
}

// Initialize handles POST /api/v1/session/initialize
func (h *SessionHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Initialize(r.Context(), h.sessionID))
}

// EditVoter handles PATCH /api/v1/session/voter
func (h *SessionHandler) EditVoter(w http.ResponseWriter, r *http.Request) {
	var req session.VoterPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w)(h.svc.EditVoter(r.Context(), h.sessionID, req))
}

// EditEntity handles PATCH /api/v1/session/entity
func (h *SessionHandler) EditEntity(w http.ResponseWriter, r *http.Request) {
	var req session.EntityPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w)(h.svc.EditEntity(r.Context(), h.sessionID, req))
}

// Randomize handles POST /api/v1/session/randomize/{kind}
func (h *SessionHandler) Randomize(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Randomize(r.Context(), h.sessionID, r.PathValue("kind")))
}

// Confirm handles POST /api/v1/session/confirm
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Confirm(r.Context(), h.sessionID))
}

// Discard handles POST /api/v1/session/discard
func (h *SessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.svc.Discard(r.Context(), h.sessionID))
}

func (h *SessionHandler) respond(w http.ResponseWriter) func(*model.Session, error) {
	return func(view *model.Session, err error) {
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
