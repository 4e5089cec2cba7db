package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "healthdeck/internal/api/context"
	"healthdeck/internal/pkg/errors"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/repositories"
)

type EventsHandler struct {
	events *repositories.EventRepository
	cfg    config.APIConfig
}

func NewEventsHandler(events *repositories.EventRepository, cfg config.APIConfig) *EventsHandler {
	return &EventsHandler{events: events, cfg: cfg}
}

// List handles GET /api/events?source=&limit=.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.EventFilter{
		Source: r.URL.Query().Get("source"),
		Limit:  queryInt(r, "limit", h.cfg.DefaultLimit, h.cfg.MaxLimit),
	}

	events, err := h.events.List(filter)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list events", nil)
		return
	}

	writeList(w, "data", len(events), events)
}

// Get handles GET /api/events/:event_id.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("event_id")

	event, err := h.events.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch event", nil)
		return
	}
	if event == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    event,
	})
}
