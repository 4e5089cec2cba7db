package handlers

import (
	"net/http"

	"healthdeck/internal/pkg/errors"
	"healthdeck/internal/platform/audit"
	"healthdeck/internal/platform/config"
)

type AuditHandler struct {
	trail *audit.Logger
	cfg   config.APIConfig
}

func NewAuditHandler(trail *audit.Logger, cfg config.APIConfig) *AuditHandler {
	return &AuditHandler{trail: trail, cfg: cfg}
}

// List handles GET /api/audit?limit=. The trail is how operators see what
// post-processing did to an event, including why it was dead-lettered.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.cfg.DefaultLimit, h.cfg.MaxLimit)

	entries, err := h.trail.List(limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list audit entries", nil)
		return
	}
	writeList(w, "data", len(entries), entries)
}
