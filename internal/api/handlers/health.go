package handlers

import (
	"net/http"
	"time"
)

const serviceName = "healthdeck"

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Home handles GET / with the service identity and route index.
func (h *HealthHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    serviceName,
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]string{
			"health":    "/health",
			"summary":   "/api/summary",
			"endpoints": "/api/endpoints",
			"events":    "/api/events",
			"errors":    "/api/errors",
			"customers": "/api/customers",
			"webhooks":  "/api/webhooks",
			"alerts":    "/api/alerts",
			"audit":     "/api/audit",
			"trends":    "/api/trends",
		},
	})
}

// Check handles GET /health. Liveness only: it deliberately does not
// probe the event store.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   serviceName,
		"status":    "healthy",
		"timestamp": time.Now().UTC().Unix(),
	})
}
