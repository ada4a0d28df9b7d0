package api

import "net/http"

// RulesHandler exposes administrative operations on the rule cache.
type RulesHandler struct {
	deps Dependencies
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(deps Dependencies) *RulesHandler {
	return &RulesHandler{deps: deps}
}

// HandleInvalidate handles POST /quality-check/cache/invalidate requests.
func (h *RulesHandler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.InvalidateRules()
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}
