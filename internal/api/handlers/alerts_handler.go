package handlers

import (
	"net/http"
	"sort"

	"github.com/julienschmidt/httprouter"
	apiContext "healthdeck/internal/api/context"
	"healthdeck/internal/engine/alerts"
	"healthdeck/internal/pkg/errors"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

type AlertsHandler struct {
	repo   *repositories.AlertRepository
	engine *alerts.Engine
	cfg    config.APIConfig
}

func NewAlertsHandler(repo *repositories.AlertRepository, engine *alerts.Engine, cfg config.APIConfig) *AlertsHandler {
	return &AlertsHandler{repo: repo, engine: engine, cfg: cfg}
}

// List handles GET /api/alerts?resolved=&limit=. Without the resolved
// parameter both open and resolved alerts are returned. Highest severity
// sorts first; within a severity alerts stay newest-first.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	var resolved *bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		b := v == "true"
		resolved = &b
	}
	limit := queryInt(r, "limit", 100, h.cfg.MaxLimit)

	alertList, err := h.repo.List(resolved, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list alerts", nil)
		return
	}

	sort.SliceStable(alertList, func(i, j int) bool {
		return models.SeverityRank(alertList[i].Severity) > models.SeverityRank(alertList[j].Severity)
	})
	writeList(w, "data", len(alertList), alertList)
}

// Resolve handles POST /api/alerts/:alert_id/resolve. Resolving an
// already resolved alert reports success without changing anything.
func (h *AlertsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("alert_id")

	alert, err := h.repo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch alert", nil)
		return
	}
	if alert == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Alert not found", nil)
		return
	}

	changed, err := h.engine.Resolve(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to resolve alert", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"alert_id": id,
		"resolved": true,
		"changed":  changed,
	})
}
