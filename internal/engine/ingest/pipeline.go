package ingest

import (
	"encoding/json"
	"errors"
	"net"
	"net/textproto"

	"github.com/rs/zerolog/log"
	"healthdeck/internal/platform/models"
)

// ErrInvalidPayload is returned when the request body is not valid JSON.
// The handler maps it to a 400 before anything is persisted.
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// EventStore is the slice of the event repository the ingest engine uses.
type EventStore interface {
	Append(event *models.WebhookEvent) error
	GetByID(id string) (*models.WebhookEvent, error)
	MarkProcessed(id string, processedAt int64) error
	RecordAttempt(id string) error
	MarkDead(id string) error
	ClaimUnprocessed(limit int) ([]string, error)
}

// Pipeline accepts inbound webhooks: it classifies the event, verifies the
// signature when one is present, appends the event durably, and hands the
// id to the queue for asynchronous post-processing. The append must
// succeed before the caller sees a success response; queue hand-off and
// everything after it is invisible to the caller.
type Pipeline struct {
	store    EventStore
	verifier *Verifier
	queue    *Queue
}

func NewPipeline(store EventStore, verifier *Verifier, queue *Queue) *Pipeline {
	return &Pipeline{store: store, verifier: verifier, queue: queue}
}

func (p *Pipeline) Ingest(source string, payload []byte, headers map[string]string, remoteAddr string) (*models.WebhookEvent, error) {
	if !json.Valid(payload) {
		return nil, ErrInvalidPayload
	}

	event := &models.WebhookEvent{
		Source:    source,
		EventType: extractEventType(payload, headers),
		Payload:   json.RawMessage(payload),
		Headers:   headers,
		OriginIP:  originIP(remoteAddr),
	}

	if sig, ok := signatureHeader(headers); ok {
		valid := p.verifier.Verify(source, sig, payload)
		event.SignatureValid = &valid
	}

	if err := p.store.Append(event); err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", event.ID).
		Str("source", source).
		Str("event_type", event.EventType).
		Msg("webhook event accepted")

	p.queue.Enqueue(event.ID)
	return event, nil
}

// extractEventType resolves the event type in priority order: the
// X-Event-Type header, then an event_type payload field, then a generic
// type field, falling back to "unknown".
func extractEventType(payload []byte, headers map[string]string) string {
	if v, ok := headerValue(headers, "X-Event-Type"); ok && v != "" {
		return v
	}

	var fields struct {
		EventType string `json:"event_type"`
		Type      string `json:"type"`
	}
	if err := json.Unmarshal(payload, &fields); err == nil {
		if fields.EventType != "" {
			return fields.EventType
		}
		if fields.Type != "" {
			return fields.Type
		}
	}
	return "unknown"
}

// signatureHeader checks the two well-known header name variants.
func signatureHeader(headers map[string]string) (string, bool) {
	if v, ok := headerValue(headers, "X-Webhook-Signature"); ok {
		return v, true
	}
	if v, ok := headerValue(headers, "X-Hub-Signature"); ok {
		return v, true
	}
	return "", false
}

func headerValue(headers map[string]string, name string) (string, bool) {
	canonical := textproto.CanonicalMIMEHeaderKey(name)
	for k, v := range headers {
		if textproto.CanonicalMIMEHeaderKey(k) == canonical {
			return v, true
		}
	}
	return "", false
}

func originIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
