package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"healthdeck/internal/platform/models"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(alert *models.Alert) error {
	alert.ID = "alert_" + uuid.New().String()
	alert.CreatedAt = time.Now().UTC().Unix()

	var endpointID, integrationID sql.NullInt64
	if alert.EndpointID != nil {
		endpointID = sql.NullInt64{Int64: *alert.EndpointID, Valid: true}
	}
	if alert.IntegrationID != nil {
		integrationID = sql.NullInt64{Int64: *alert.IntegrationID, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO alerts (id, endpoint_id, integration_id, alert_type, severity, title, description, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, alert.ID, endpointID, integrationID, alert.AlertType, alert.Severity, alert.Title, alert.Description, alert.CreatedAt)
	return err
}

// List returns alerts newest-first. resolved = nil returns both states.
func (r *AlertRepository) List(resolved *bool, limit int) ([]*models.Alert, error) {
	query := `
		SELECT id, endpoint_id, integration_id, alert_type, severity, title, description, resolved, created_at, resolved_at
		FROM alerts
	`
	args := []interface{}{}
	if resolved != nil {
		query += ` WHERE resolved = ?`
		args = append(args, *resolved)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *AlertRepository) GetByID(id string) (*models.Alert, error) {
	row := r.db.QueryRow(`
		SELECT id, endpoint_id, integration_id, alert_type, severity, title, description, resolved, created_at, resolved_at
		FROM alerts WHERE id = ?
	`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return alert, err
}

// Resolve transitions an alert to resolved exactly once. The guard on
// resolved = 0 makes the transition monotonic: a second resolve is a
// no-op and resolved_at is never rewritten.
func (r *AlertRepository) Resolve(id string, resolvedAt int64) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE alerts SET resolved = 1, resolved_at = ?
		WHERE id = ? AND resolved = 0
	`, resolvedAt, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// OpenExists reports whether an unresolved alert of the given type is
// already open for the endpoint. Used to suppress duplicate alerts for
// repeated identical failures.
func (r *AlertRepository) OpenExists(endpointID int64, alertType string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM alerts
		WHERE endpoint_id = ? AND alert_type = ? AND resolved = 0
	`, endpointID, alertType).Scan(&count)
	return count > 0, err
}

// OpenStats returns, per integration, the unresolved alert count and
// whether any unresolved CRITICAL alert exists. An alert belongs to an
// integration either directly or through the endpoint it fired on, so
// endpoint-scoped alerts roll up to the endpoint's owning integration.
func (r *AlertRepository) OpenStats() (map[int64]*OpenAlertStats, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(a.integration_id, e.integration_id) AS integration_id,
			COUNT(*),
			SUM(CASE WHEN a.severity = ? THEN 1 ELSE 0 END)
		FROM alerts a
		LEFT JOIN api_endpoints e ON e.id = a.endpoint_id
		WHERE a.resolved = 0 AND COALESCE(a.integration_id, e.integration_id) IS NOT NULL
		GROUP BY COALESCE(a.integration_id, e.integration_id)
	`, models.SeverityCritical)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[int64]*OpenAlertStats)
	for rows.Next() {
		var integrationID int64
		var open, critical int
		if err := rows.Scan(&integrationID, &open, &critical); err != nil {
			return nil, err
		}
		stats[integrationID] = &OpenAlertStats{Open: open, CriticalOpen: critical > 0}
	}
	return stats, rows.Err()
}

type OpenAlertStats struct {
	Open         int
	CriticalOpen bool
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var endpointID, integrationID, resolvedAt sql.NullInt64

	err := row.Scan(&a.ID, &endpointID, &integrationID, &a.AlertType, &a.Severity, &a.Title, &a.Description, &a.Resolved, &a.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	if endpointID.Valid {
		a.EndpointID = &endpointID.Int64
	}
	if integrationID.Valid {
		a.IntegrationID = &integrationID.Int64
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Int64
	}
	return &a, nil
}
