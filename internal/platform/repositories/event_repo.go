package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"healthdeck/internal/platform/models"
)

type EventRepository struct {
	db           *sql.DB
	defaultLimit int
	maxLimit     int
}

func NewEventRepository(db *sql.DB, defaultLimit, maxLimit int) *EventRepository {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &EventRepository{db: db, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// EventFilter narrows List results. A zero Limit falls back to the
// repository default; anything above the configured maximum is clamped.
type EventFilter struct {
	Source string
	Limit  int
}

// Append durably records an inbound webhook event. The id and receipt
// timestamp are assigned here and written back onto the event.
func (r *EventRepository) Append(event *models.WebhookEvent) error {
	event.ID = "evt_" + uuid.New().String()
	event.ReceivedAt = time.Now().UTC().Unix()

	headersJSON, err := json.Marshal(event.Headers)
	if err != nil {
		return err
	}

	var sigValid sql.NullBool
	if event.SignatureValid != nil {
		sigValid = sql.NullBool{Bool: *event.SignatureValid, Valid: true}
	}

	_, err = r.db.Exec(`
		INSERT INTO webhook_events (id, source, event_type, payload, headers, signature_valid, origin_ip, received_at, processed, attempts, dead)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)
	`, event.ID, event.Source, event.EventType, string(event.Payload), string(headersJSON), sigValid, event.OriginIP, event.ReceivedAt)
	return err
}

// MarkProcessed flips the processed flag exactly once. A second call for
// the same id is a no-op: the guard on processed = 0 keeps the earliest
// processed_at, so replayed post-processing can never move it backwards.
func (r *EventRepository) MarkProcessed(id string, processedAt int64) error {
	_, err := r.db.Exec(`
		UPDATE webhook_events SET processed = 1, processed_at = ?
		WHERE id = ? AND processed = 0
	`, processedAt, id)
	return err
}

// RecordAttempt bumps the post-processing attempt counter for an event.
func (r *EventRepository) RecordAttempt(id string) error {
	_, err := r.db.Exec(`UPDATE webhook_events SET attempts = attempts + 1 WHERE id = ?`, id)
	return err
}

// MarkDead moves an event to the dead-letter state after post-processing
// exhausted its retries. Dead events are excluded from reclaim scans.
func (r *EventRepository) MarkDead(id string) error {
	_, err := r.db.Exec(`UPDATE webhook_events SET dead = 1 WHERE id = ? AND processed = 0`, id)
	return err
}

func (r *EventRepository) GetByID(id string) (*models.WebhookEvent, error) {
	row := r.db.QueryRow(`
		SELECT id, source, event_type, payload, headers, signature_valid, origin_ip, received_at, processed, processed_at, attempts, dead
		FROM webhook_events WHERE id = ?
	`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// List returns events newest-first, optionally filtered by source.
func (r *EventRepository) List(filter EventFilter) ([]*models.WebhookEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if limit > r.maxLimit {
		limit = r.maxLimit
	}

	query := `
		SELECT id, source, event_type, payload, headers, signature_valid, origin_ip, received_at, processed, processed_at, attempts, dead
		FROM webhook_events
	`
	args := []interface{}{}
	if filter.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY received_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.WebhookEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ClaimUnprocessed returns ids of events that are neither processed nor
// dead-lettered, oldest first. Used by the ingest queue to pick up work
// left behind by a crash.
func (r *EventRepository) ClaimUnprocessed(limit int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT id FROM webhook_events
		WHERE processed = 0 AND dead = 0
		ORDER BY received_at ASC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SourceSummary aggregates per-source processing statistics.
func (r *EventRepository) SourceSummary() ([]*models.SourceSummary, error) {
	rows, err := r.db.Query(`
		SELECT source,
			COUNT(*) AS total,
			SUM(processed) AS processed,
			SUM(CASE WHEN processed = 0 AND dead = 0 THEN 1 ELSE 0 END) AS pending,
			SUM(dead) AS dead,
			SUM(CASE WHEN signature_valid = 0 THEN 1 ELSE 0 END) AS invalid_sigs,
			MAX(received_at) AS last_received
		FROM webhook_events
		GROUP BY source
		ORDER BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.SourceSummary
	for rows.Next() {
		var s models.SourceSummary
		var lastReceived sql.NullInt64
		if err := rows.Scan(&s.Source, &s.TotalEvents, &s.ProcessedEvents, &s.PendingEvents, &s.DeadEvents, &s.InvalidSignatures, &lastReceived); err != nil {
			return nil, err
		}
		if lastReceived.Valid {
			s.LastReceivedAt = &lastReceived.Int64
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.WebhookEvent, error) {
	var e models.WebhookEvent
	var payload, headers string
	var sigValid sql.NullBool
	var processedAt sql.NullInt64

	err := row.Scan(&e.ID, &e.Source, &e.EventType, &payload, &headers, &sigValid, &e.OriginIP, &e.ReceivedAt, &e.Processed, &processedAt, &e.Attempts, &e.Dead)
	if err != nil {
		return nil, err
	}

	e.Payload = json.RawMessage(payload)
	if headers != "" {
		json.Unmarshal([]byte(headers), &e.Headers)
	}
	if sigValid.Valid {
		e.SignatureValid = &sigValid.Bool
	}
	if processedAt.Valid {
		e.ProcessedAt = &processedAt.Int64
	}
	return &e, nil
}
