package handler

import (
	"net/http"
	"strconv"

	"github.com/freeeve/stake-lattice/api/internal/model"
	"github.com/freeeve/stake-lattice/api/internal/service"
)

// LatticeHandler serves stateless lattice queries.
type LatticeHandler struct {
	svc          *service.AnalysisService
	defaultLimit int
}

// NewLatticeHandler creates a LatticeHandler. defaultLimit applies when a
// request omits axis_limit.
func NewLatticeHandler(svc *service.AnalysisService, defaultLimit int) *LatticeHandler {
	return &LatticeHandler{svc: svc, defaultLimit: defaultLimit}
}

// GetLattice handles GET /api/v1/lattice?axis_limit=
func (h *LatticeHandler) GetLattice(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if s := r.URL.Query().Get("axis_limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "axis_limit must be an integer")
			return
		}
		limit = n
	}
	l, err := h.svc.Lattice(limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Evaluate handles POST /api/v1/evaluate
func (h *LatticeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AxisLimit == 0 {
		req.AxisLimit = h.defaultLimit
	}
	resp, err := h.svc.Evaluate(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
