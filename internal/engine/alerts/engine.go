package alerts

import (
	"time"

	"github.com/rs/zerolog/log"
	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

const failureTitle = "Endpoint health check failed"

// Engine opens alerts in reaction to failed health checks. It runs
// synchronously on each inserted check result; resolution is a manual
// action exposed through the API.
type Engine struct {
	repo *repositories.AlertRepository
}

func NewEngine(repo *repositories.AlertRepository) *Engine {
	return &Engine{repo: repo}
}

// OnCheckResult opens an alert for a qualifying failure: error types
// TIMEOUT and CONNECTION_ERROR trigger alerts at HIGH and CRITICAL
// severity respectively. While an unresolved alert of the same type is
// already open for the endpoint, repeated identical failures are
// suppressed instead of stacking duplicates.
func (e *Engine) OnCheckResult(res *models.HealthCheckResult) (*models.Alert, error) {
	if res.Success || res.ErrorType == nil {
		return nil, nil
	}

	var severity string
	switch *res.ErrorType {
	case models.ErrorTypeTimeout:
		severity = models.SeverityHigh
	case models.ErrorTypeConnectionError:
		severity = models.SeverityCritical
	default:
		return nil, nil
	}

	open, err := e.repo.OpenExists(res.EndpointID, models.AlertTypeEndpointFailure)
	if err != nil {
		return nil, err
	}
	if open {
		log.Debug().Int64("endpoint_id", res.EndpointID).Msg("open alert exists, suppressing duplicate")
		return nil, nil
	}

	alert := &models.Alert{
		EndpointID:  &res.EndpointID,
		AlertType:   models.AlertTypeEndpointFailure,
		Severity:    severity,
		Title:       failureTitle,
		Description: description(res),
	}
	if err := e.repo.Create(alert); err != nil {
		return nil, err
	}

	log.Warn().
		Str("alert_id", alert.ID).
		Int64("endpoint_id", res.EndpointID).
		Str("severity", severity).
		Str("error_type", *res.ErrorType).
		Msg("alert opened")
	return alert, nil
}

// Resolve closes an alert. The transition is monotonic: resolving an
// already resolved alert is a no-op and returns false.
func (e *Engine) Resolve(id string) (bool, error) {
	return e.repo.Resolve(id, time.Now().UTC().Unix())
}

func description(res *models.HealthCheckResult) string {
	if res.ErrorMessage != nil {
		return *res.ErrorMessage
	}
	return *res.ErrorType
}
