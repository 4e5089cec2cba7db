package repositories

import (
	"database/sql"

	"healthdeck/internal/platform/models"
)

type CheckRepository struct {
	db *sql.DB
}

func NewCheckRepository(db *sql.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

// Insert records one immutable health check result. The row id is
// assigned by the database and written back onto the result.
func (r *CheckRepository) Insert(check *models.HealthCheckResult) error {
	var statusCode sql.NullInt64
	if check.StatusCode != nil {
		statusCode = sql.NullInt64{Int64: int64(*check.StatusCode), Valid: true}
	}
	var responseTime sql.NullFloat64
	if check.ResponseTimeMS != nil {
		responseTime = sql.NullFloat64{Float64: *check.ResponseTimeMS, Valid: true}
	}
	var errorType, errorMessage sql.NullString
	if check.ErrorType != nil {
		errorType = sql.NullString{String: *check.ErrorType, Valid: true}
	}
	if check.ErrorMessage != nil {
		errorMessage = sql.NullString{String: *check.ErrorMessage, Valid: true}
	}

	result, err := r.db.Exec(`
		INSERT INTO health_checks (endpoint_id, status_code, response_time_ms, success, error_type, error_message, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, check.EndpointID, statusCode, responseTime, check.Success, errorType, errorMessage, check.CheckedAt)
	if err != nil {
		return err
	}

	check.ID, err = result.LastInsertId()
	return err
}

// EndpointSummaries aggregates checks newer than `since` per endpoint.
// Endpoints with no checks in the window still appear, with zero counts.
func (r *CheckRepository) EndpointSummaries(since int64) ([]*models.EndpointSummary, error) {
	rows, err := r.db.Query(`
		SELECT e.id, e.name,
			COUNT(hc.id) AS total,
			COALESCE(SUM(hc.success), 0) AS successful,
			COUNT(hc.id) - COALESCE(SUM(hc.success), 0) AS failed,
			AVG(hc.response_time_ms) AS avg_rt,
			MIN(hc.response_time_ms) AS min_rt,
			MAX(hc.response_time_ms) AS max_rt,
			MAX(hc.checked_at) AS last_check
		FROM api_endpoints e
		LEFT JOIN health_checks hc ON hc.endpoint_id = e.id AND hc.checked_at >= ?
		WHERE e.active = 1
		GROUP BY e.id, e.name
		ORDER BY e.name
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.EndpointSummary
	for rows.Next() {
		var s models.EndpointSummary
		var avgRT, minRT, maxRT sql.NullFloat64
		var lastCheck sql.NullInt64
		if err := rows.Scan(&s.EndpointID, &s.Name, &s.TotalChecks, &s.SuccessfulChecks, &s.FailedChecks, &avgRT, &minRT, &maxRT, &lastCheck); err != nil {
			return nil, err
		}
		if avgRT.Valid {
			s.AvgResponseTimeMS = &avgRT.Float64
		}
		if minRT.Valid {
			s.MinResponseTimeMS = &minRT.Float64
		}
		if maxRT.Valid {
			s.MaxResponseTimeMS = &maxRT.Float64
		}
		if lastCheck.Valid {
			s.LastCheckAt = &lastCheck.Int64
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// FailedCountByIntegration counts failed checks newer than `since`,
// grouped by the integration owning the checked endpoint.
func (r *CheckRepository) FailedCountByIntegration(since int64) (map[int64]int, error) {
	rows, err := r.db.Query(`
		SELECT e.integration_id, COUNT(*)
		FROM health_checks hc
		JOIN api_endpoints e ON e.id = hc.endpoint_id
		WHERE hc.success = 0 AND hc.checked_at >= ? AND e.integration_id IS NOT NULL
		GROUP BY e.integration_id
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var integrationID int64
		var count int
		if err := rows.Scan(&integrationID, &count); err != nil {
			return nil, err
		}
		counts[integrationID] = count
	}
	return counts, rows.Err()
}

// RecentErrors returns the most recent failed checks, newest first.
func (r *CheckRepository) RecentErrors(limit int) ([]*models.HealthCheckResult, error) {
	rows, err := r.db.Query(`
		SELECT id, endpoint_id, status_code, response_time_ms, success, error_type, error_message, checked_at
		FROM health_checks
		WHERE success = 0
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*models.HealthCheckResult
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

// RecentByEndpoint returns the newest checks for one endpoint, newest
// first. Backs the endpoint detail view.
func (r *CheckRepository) RecentByEndpoint(endpointID int64, limit int) ([]*models.HealthCheckResult, error) {
	rows, err := r.db.Query(`
		SELECT id, endpoint_id, status_code, response_time_ms, success, error_type, error_message, checked_at
		FROM health_checks
		WHERE endpoint_id = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, endpointID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []*models.HealthCheckResult
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

// HourlyTrends buckets checks newer than `since` into per-endpoint hour
// slots, newest hour first.
func (r *CheckRepository) HourlyTrends(since int64) ([]*models.HourlyTrend, error) {
	rows, err := r.db.Query(`
		SELECT strftime('%Y-%m-%dT%H:00:00Z', hc.checked_at, 'unixepoch') AS hour,
			e.id, e.name,
			COUNT(*) AS total,
			COUNT(*) - COALESCE(SUM(hc.success), 0) AS failed,
			AVG(hc.response_time_ms) AS avg_rt
		FROM health_checks hc
		JOIN api_endpoints e ON e.id = hc.endpoint_id
		WHERE hc.checked_at >= ?
		GROUP BY hour, e.id, e.name
		ORDER BY hour DESC, e.name
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []*models.HourlyTrend
	for rows.Next() {
		var t models.HourlyTrend
		var avgRT sql.NullFloat64
		if err := rows.Scan(&t.Hour, &t.EndpointID, &t.EndpointName, &t.TotalChecks, &t.FailedChecks, &avgRT); err != nil {
			return nil, err
		}
		if avgRT.Valid {
			t.AvgResponseTimeMS = &avgRT.Float64
		}
		trends = append(trends, &t)
	}
	return trends, rows.Err()
}

func scanCheck(row rowScanner) (*models.HealthCheckResult, error) {
	var c models.HealthCheckResult
	var statusCode sql.NullInt64
	var responseTime sql.NullFloat64
	var errorType, errorMessage sql.NullString

	err := row.Scan(&c.ID, &c.EndpointID, &statusCode, &responseTime, &c.Success, &errorType, &errorMessage, &c.CheckedAt)
	if err != nil {
		return nil, err
	}

	if statusCode.Valid {
		code := int(statusCode.Int64)
		c.StatusCode = &code
	}
	if responseTime.Valid {
		c.ResponseTimeMS = &responseTime.Float64
	}
	if errorType.Valid {
		c.ErrorType = &errorType.String
	}
	if errorMessage.Valid {
		c.ErrorMessage = &errorMessage.String
	}
	return &c, nil
}
