package handlers

import (
	goerrors "errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"healthdeck/internal/engine/ingest"
	apiContext "healthdeck/internal/api/context"
	"healthdeck/internal/pkg/errors"
)

// maxBodyBytes caps inbound webhook payload size.
const maxBodyBytes = 1 << 20

type WebhookHandler struct {
	pipeline *ingest.Pipeline
}

func NewWebhookHandler(pipeline *ingest.Pipeline) *WebhookHandler {
	return &WebhookHandler{pipeline: pipeline}
}

// Receive handles POST /webhook/:source. The durable append happens
// before the 200 is written; post-processing runs after the response and
// can never affect it.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	source := params.ByName("source")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Failed to read request body", nil)
		return
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	event, err := h.pipeline.Ingest(source, body, headers, r.RemoteAddr)
	if err != nil {
		if goerrors.Is(err, ingest.ErrInvalidPayload) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Request body must be valid JSON", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to record webhook event", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Webhook received",
		"event_id":    event.ID,
		"received_at": event.ReceivedAt,
	})
}
