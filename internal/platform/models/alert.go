package models

// Alert severities, ordered LOW < MEDIUM < HIGH < CRITICAL.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

var severityRank = map[string]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// SeverityRank returns the ordering rank of a severity, -1 if unknown.
func SeverityRank(severity string) int {
	if rank, ok := severityRank[severity]; ok {
		return rank
	}
	return -1
}

const (
	AlertTypeEndpointFailure = "endpoint_failure"
)

// Alert is a system-raised issue record. Resolved is monotonic: it moves
// false -> true exactly once and is never reset.
type Alert struct {
	ID            string `json:"id"`
	EndpointID    *int64 `json:"endpoint_id,omitempty"`
	IntegrationID *int64 `json:"integration_id,omitempty"`
	AlertType     string `json:"alert_type"`
	Severity      string `json:"severity"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Resolved      bool   `json:"resolved"`
	CreatedAt     int64  `json:"created_at"`
	ResolvedAt    *int64 `json:"resolved_at,omitempty"`
}
