package models

// Error classifications recorded on a failed health check.
const (
	ErrorTypeTimeout         = "TIMEOUT"
	ErrorTypeConnectionError = "CONNECTION_ERROR"
	ErrorTypeInvalidResponse = "INVALID_RESPONSE"
	ErrorTypeAuthError       = "AUTH_ERROR"
	ErrorTypeRateLimit       = "RATE_LIMIT"
	ErrorTypeServerError     = "SERVER_ERROR"
	ErrorTypeOther           = "OTHER"
)

// HealthCheckResult is one probe result against an endpoint at a point in
// time. Immutable once written; retention is handled outside the service.
type HealthCheckResult struct {
	ID             int64    `json:"id"`
	EndpointID     int64    `json:"endpoint_id"`
	StatusCode     *int     `json:"status_code,omitempty"`
	ResponseTimeMS *float64 `json:"response_time_ms,omitempty"`
	Success        bool     `json:"success"`
	ErrorType      *string  `json:"error_type,omitempty"`
	ErrorMessage   *string  `json:"error_message,omitempty"`
	CheckedAt      int64    `json:"checked_at"`
}

// Endpoint is a monitored external API location.
type Endpoint struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	BaseURL            string `json:"base_url"`
	EndpointPath       string `json:"endpoint_path"`
	HTTPMethod         string `json:"http_method"`
	ExpectedStatusCode int    `json:"expected_status_code"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
	IntegrationID      *int64 `json:"integration_id,omitempty"`
	Active             bool   `json:"active"`
	CreatedAt          int64  `json:"created_at"`
}

// EndpointSummary is the rolling per-endpoint health view over a trailing
// window. UptimePercentage is defined as 0 when TotalChecks is 0.
type EndpointSummary struct {
	EndpointID        int64    `json:"endpoint_id"`
	Name              string   `json:"name"`
	TotalChecks       int      `json:"total_checks"`
	SuccessfulChecks  int      `json:"successful_checks"`
	FailedChecks      int      `json:"failed_checks"`
	AvgResponseTimeMS *float64 `json:"avg_response_time_ms,omitempty"`
	MinResponseTimeMS *float64 `json:"min_response_time_ms,omitempty"`
	MaxResponseTimeMS *float64 `json:"max_response_time_ms,omitempty"`
	LastCheckAt       *int64   `json:"last_check_at,omitempty"`
	UptimePercentage  float64  `json:"uptime_percentage"`
}

// HourlyTrend is one hour bucket of response-time and failure statistics
// for a single endpoint.
type HourlyTrend struct {
	Hour              string   `json:"hour"`
	EndpointID        int64    `json:"endpoint_id"`
	EndpointName      string   `json:"endpoint_name"`
	TotalChecks       int      `json:"total_checks"`
	FailedChecks      int      `json:"failed_checks"`
	AvgResponseTimeMS *float64 `json:"avg_response_time_ms,omitempty"`
}
