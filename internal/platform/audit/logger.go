package audit

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Entry is one audit trail record. Post-processing writes one per webhook
// event: either a completion entry with the payload size, or a failure
// entry carrying the error classification code.
type Entry struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Code         string                 `json:"code,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    int64                  `json:"created_at"`
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Record inserts the entry synchronously. Post-processing already runs off
// the request path, so there is nothing to gain from a second hand-off.
func (l *Logger) Record(action, resourceType, resourceID, code string, metadata map[string]interface{}) error {
	metaJSON, _ := json.Marshal(metadata)

	entry := &Entry{
		ID:           "audit_" + uuid.New().String(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Code:         code,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC().Unix(),
	}

	_, err := l.db.Exec(`
		INSERT INTO audit_logs (id, action, resource_type, resource_id, code, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Code, string(metaJSON), entry.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("resource_id", resourceID).Msg("failed to write audit entry")
	}
	return err
}

// List returns the most recent entries, newest first.
func (l *Logger) List(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, action, resource_type, resource_id, code, metadata, created_at
		FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var metaStr string
		if err := rows.Scan(&e.ID, &e.Action, &e.ResourceType, &e.ResourceID, &e.Code, &metaStr, &e.CreatedAt); err != nil {
			return nil, err
		}
		if metaStr != "" {
			json.Unmarshal([]byte(metaStr), &e.Metadata)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
