package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	version string
	started time.Time
}

// NewHealthHandler creates a health handler stamped with the build version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now()}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health reports process liveness. It deliberately does not touch the data
// directory; a missing directory is a degraded state, not a dead process.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
