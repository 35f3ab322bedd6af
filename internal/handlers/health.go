package handlers

import (
	"net/http"

	"github.com/blue-code/FlexPlay/internal/startup"
)

// HealthCheck reports liveness plus build information.
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "ok",
		"version": startup.Version,
		"commit":  startup.Commit,
	})
}
