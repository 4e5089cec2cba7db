package models

import "encoding/json"

// CustomerIntegration statuses.
const (
	IntegrationStatusActive = "active"
	IntegrationStatusPaused = "paused"
	IntegrationStatusError  = "error"
	IntegrationStatusSetup  = "setup"
)

// CustomerIntegration is one customer's connection to a third-party
// integration. ErrorCount is incremented by external sync processes.
type CustomerIntegration struct {
	ID              int64           `json:"id"`
	CustomerName    string          `json:"customer_name"`
	IntegrationType string          `json:"integration_type"`
	Status          string          `json:"status"`
	Config          json.RawMessage `json:"config,omitempty"`
	LastSyncAt      *int64          `json:"last_sync_at,omitempty"`
	ErrorCount      int             `json:"error_count"`
	CreatedAt       int64           `json:"created_at"`
}

// CustomerHealth is the per-customer rollup row behind /api/customers.
type CustomerHealth struct {
	IntegrationID    int64  `json:"integration_id"`
	CustomerName     string `json:"customer_name"`
	IntegrationType  string `json:"integration_type"`
	Status           string `json:"status"`
	ErrorCount       int    `json:"error_count"`
	FailedChecks     int    `json:"failed_checks"`
	UnresolvedAlerts int    `json:"unresolved_alerts"`
	CriticalOpen     bool   `json:"critical_open"`
	HealthColor      string `json:"health_color"`
	LastSyncAt       *int64 `json:"last_sync_at,omitempty"`
}
