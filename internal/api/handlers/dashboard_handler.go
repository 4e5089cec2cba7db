package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	apiContext "healthdeck/internal/api/context"
	"healthdeck/internal/engine/health"
	"healthdeck/internal/pkg/errors"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/repositories"
)

// DashboardHandler serves the read contracts the dashboard consumes:
// endpoint summaries, recent errors, customer rollups, webhook source
// summaries, and hourly trends.
type DashboardHandler struct {
	aggregator *health.Aggregator
	endpoints  *repositories.EndpointRepository
	events     *repositories.EventRepository
	window     time.Duration
	cfg        config.APIConfig
}

func NewDashboardHandler(aggregator *health.Aggregator, endpoints *repositories.EndpointRepository, events *repositories.EventRepository, window time.Duration, cfg config.APIConfig) *DashboardHandler {
	return &DashboardHandler{
		aggregator: aggregator,
		endpoints:  endpoints,
		events:     events,
		window:     window,
		cfg:        cfg,
	}
}

// Summary handles GET /api/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.aggregator.Summarize(h.window)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute summary", nil)
		return
	}
	writeList(w, "data", len(summaries), summaries)
}

// Endpoints handles GET /api/endpoints.
func (h *DashboardHandler) Endpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.endpoints.ListActive()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list endpoints", nil)
		return
	}
	writeList(w, "data", len(endpoints), endpoints)
}

// Endpoint handles GET /api/endpoints/:endpoint_id.
func (h *DashboardHandler) Endpoint(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id, err := strconv.ParseInt(params.ByName("endpoint_id"), 10, 64)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Endpoint id must be an integer", nil)
		return
	}

	endpoint, err := h.endpoints.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch endpoint", nil)
		return
	}
	if endpoint == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}

	checks, err := h.aggregator.RecentChecks(id, h.cfg.DefaultLimit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch endpoint checks", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"data":          endpoint,
		"recent_checks": checks,
	})
}

// Errors handles GET /api/errors?limit=.
func (h *DashboardHandler) Errors(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.cfg.DefaultLimit, h.cfg.MaxLimit)

	checks, err := h.aggregator.RecentErrors(limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list errors", nil)
		return
	}
	writeList(w, "data", len(checks), checks)
}

// Customers handles GET /api/customers.
func (h *DashboardHandler) Customers(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.aggregator.CustomerHealth(h.window)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute customer health", nil)
		return
	}
	writeList(w, "data", len(rollups), rollups)
}

// Webhooks handles GET /api/webhooks.
func (h *DashboardHandler) Webhooks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.events.SourceSummary()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to summarize webhooks", nil)
		return
	}
	writeList(w, "webhooks", len(summaries), summaries)
}

// Trends handles GET /api/trends?hours=.
func (h *DashboardHandler) Trends(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 24*7)

	trends, err := h.aggregator.HourlyTrends(hours)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute trends", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(trends),
		"hours":   hours,
		"data":    trends,
	})
}
