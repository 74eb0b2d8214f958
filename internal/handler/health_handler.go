package handler

import (
	"net/http"

	"orgnotify/internal/service"
)

// HealthHandler exposes dependency health for load balancers and probes
type HealthHandler struct {
	health *service.HealthChecker
}

func NewHealthHandler(health *service.HealthChecker) *HealthHandler {
	return &HealthHandler{health: health}
}

// HandleHealth handles GET /health. Degraded and unhealthy both report 503
// so a probe pulls the instance; the body says which dependency is down.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.health.CheckHealth()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to perform health check")
		return
	}

	code := http.StatusOK
	if status.Status != service.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, status)
}
