package repositories

import (
	"database/sql"
	"encoding/json"

	"healthdeck/internal/platform/models"
)

type IntegrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

func (r *IntegrationRepository) List() ([]*models.CustomerIntegration, error) {
	rows, err := r.db.Query(`
		SELECT id, customer_name, integration_type, status, config, last_sync_at, error_count, created_at
		FROM customer_integrations
		ORDER BY customer_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []*models.CustomerIntegration
	for rows.Next() {
		var i models.CustomerIntegration
		var configStr sql.NullString
		var lastSync sql.NullInt64
		if err := rows.Scan(&i.ID, &i.CustomerName, &i.IntegrationType, &i.Status, &configStr, &lastSync, &i.ErrorCount, &i.CreatedAt); err != nil {
			return nil, err
		}
		if configStr.Valid {
			i.Config = json.RawMessage(configStr.String)
		}
		if lastSync.Valid {
			i.LastSyncAt = &lastSync.Int64
		}
		integrations = append(integrations, &i)
	}
	return integrations, rows.Err()
}

func (r *IntegrationRepository) GetByID(id int64) (*models.CustomerIntegration, error) {
	var i models.CustomerIntegration
	var configStr sql.NullString
	var lastSync sql.NullInt64

	err := r.db.QueryRow(`
		SELECT id, customer_name, integration_type, status, config, last_sync_at, error_count, created_at
		FROM customer_integrations WHERE id = ?
	`, id).Scan(&i.ID, &i.CustomerName, &i.IntegrationType, &i.Status, &configStr, &lastSync, &i.ErrorCount, &i.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if configStr.Valid {
		i.Config = json.RawMessage(configStr.String)
	}
	if lastSync.Valid {
		i.LastSyncAt = &lastSync.Int64
	}
	return &i, nil
}
