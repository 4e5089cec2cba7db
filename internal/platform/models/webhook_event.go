package models

import "encoding/json"

// WebhookEvent is one inbound notification from an external integration
// source. The row is written synchronously during ingestion and mutated
// exactly once when asynchronous post-processing marks it processed.
//
// SignatureValid is tri-state: nil means no signature header was present,
// which is distinct from a signature that failed verification.
type WebhookEvent struct {
	ID             string            `json:"id"`
	Source         string            `json:"source"`
	EventType      string            `json:"event_type"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers"`
	SignatureValid *bool             `json:"signature_valid"`
	OriginIP       string            `json:"origin_ip"`
	ReceivedAt     int64             `json:"received_at"`
	Processed      bool              `json:"processed"`
	ProcessedAt    *int64            `json:"processed_at,omitempty"`
	Attempts       int               `json:"attempts"`
	Dead           bool              `json:"dead"`
}

// SourceSummary is the per-source rollup consumed by the dashboard.
type SourceSummary struct {
	Source            string `json:"source"`
	TotalEvents       int    `json:"total_events"`
	ProcessedEvents   int    `json:"processed_events"`
	PendingEvents     int    `json:"pending_events"`
	DeadEvents        int    `json:"dead_events"`
	InvalidSignatures int    `json:"invalid_signatures"`
	LastReceivedAt    *int64 `json:"last_received_at,omitempty"`
}
