package repositories

import (
	"database/sql"

	"healthdeck/internal/platform/models"
)

type EndpointRepository struct {
	db *sql.DB
}

func NewEndpointRepository(db *sql.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

const endpointColumns = `id, name, base_url, endpoint_path, http_method, expected_status_code, timeout_seconds, integration_id, active, created_at`

func (r *EndpointRepository) ListActive() ([]*models.Endpoint, error) {
	rows, err := r.db.Query(`
		SELECT ` + endpointColumns + ` FROM api_endpoints WHERE active = 1 ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.Endpoint
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints, rows.Err()
}

func (r *EndpointRepository) GetByID(id int64) (*models.Endpoint, error) {
	row := r.db.QueryRow(`SELECT `+endpointColumns+` FROM api_endpoints WHERE id = ?`, id)

	endpoint, err := scanEndpoint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return endpoint, err
}

func scanEndpoint(row rowScanner) (*models.Endpoint, error) {
	var e models.Endpoint
	var integrationID sql.NullInt64

	err := row.Scan(&e.ID, &e.Name, &e.BaseURL, &e.EndpointPath, &e.HTTPMethod, &e.ExpectedStatusCode, &e.TimeoutSeconds, &integrationID, &e.Active, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	if integrationID.Valid {
		e.IntegrationID = &integrationID.Int64
	}
	return &e, nil
}
