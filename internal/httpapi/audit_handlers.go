package httpapi

import (
	"net/http"
)

func (a *API) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if a.tasks == nil {
		writeError(w, r, http.StatusServiceUnavailable, "task service unavailable")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	p, ok := principal(w, r)
	if !ok {
		return
	}
	entries, err := a.tasks.AuditLog(r.Context(), p)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
