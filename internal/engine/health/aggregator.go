package health

import (
	"time"

	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

// Aggregator computes rolling health statistics over raw check records
// and derives per-customer status colors. It only ever reads alert state.
type Aggregator struct {
	checks       *repositories.CheckRepository
	alerts       *repositories.AlertRepository
	integrations *repositories.IntegrationRepository
	cfg          config.HealthConfig

	now func() time.Time
}

func NewAggregator(checks *repositories.CheckRepository, alerts *repositories.AlertRepository, integrations *repositories.IntegrationRepository, cfg config.HealthConfig) *Aggregator {
	return &Aggregator{
		checks:       checks,
		alerts:       alerts,
		integrations: integrations,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Summarize returns per-endpoint statistics over the trailing window.
// uptime_percentage = 100 * successful / total, and 0 when the endpoint
// has no checks in the window (documented choice, avoids division by zero).
func (a *Aggregator) Summarize(window time.Duration) ([]*models.EndpointSummary, error) {
	since := a.now().UTC().Add(-window).Unix()
	summaries, err := a.checks.EndpointSummaries(since)
	if err != nil {
		return nil, err
	}

	for _, s := range summaries {
		if s.TotalChecks > 0 {
			s.UptimePercentage = 100 * float64(s.SuccessfulChecks) / float64(s.TotalChecks)
		}
	}
	return summaries, nil
}

// CustomerHealth builds the per-customer rollup with the derived tri-state
// color.
func (a *Aggregator) CustomerHealth(window time.Duration) ([]*models.CustomerHealth, error) {
	integrations, err := a.integrations.List()
	if err != nil {
		return nil, err
	}

	since := a.now().UTC().Add(-window).Unix()
	failedCounts, err := a.checks.FailedCountByIntegration(since)
	if err != nil {
		return nil, err
	}
	alertStats, err := a.alerts.OpenStats()
	if err != nil {
		return nil, err
	}

	rollups := make([]*models.CustomerHealth, 0, len(integrations))
	for _, integration := range integrations {
		rollup := &models.CustomerHealth{
			IntegrationID:   integration.ID,
			CustomerName:    integration.CustomerName,
			IntegrationType: integration.IntegrationType,
			Status:          integration.Status,
			ErrorCount:      integration.ErrorCount,
			FailedChecks:    failedCounts[integration.ID],
			LastSyncAt:      integration.LastSyncAt,
		}
		if stats, ok := alertStats[integration.ID]; ok {
			rollup.UnresolvedAlerts = stats.Open
			rollup.CriticalOpen = stats.CriticalOpen
		}
		rollup.HealthColor = a.DeriveColor(rollup.Status, rollup.CriticalOpen, rollup.ErrorCount, rollup.FailedChecks, rollup.UnresolvedAlerts)
		rollups = append(rollups, rollup)
	}
	return rollups, nil
}

// Health colors.
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// DeriveColor maps raw signals to the tri-state health color. Red
// conditions are checked before yellow; the first match wins.
func (a *Aggregator) DeriveColor(status string, criticalOpen bool, errorCount, failedChecks, openAlerts int) string {
	if status == models.IntegrationStatusError || criticalOpen {
		return ColorRed
	}
	if errorCount > a.cfg.ErrorCountMax || failedChecks > a.cfg.FailedChecksMax || openAlerts > a.cfg.OpenAlertsMax {
		return ColorYellow
	}
	return ColorGreen
}

// RecentChecks returns the newest checks for one endpoint. Backs the
// endpoint detail view.
func (a *Aggregator) RecentChecks(endpointID int64, limit int) ([]*models.HealthCheckResult, error) {
	return a.checks.RecentByEndpoint(endpointID, limit)
}

// RecentErrors returns the newest failed checks, capped at limit.
func (a *Aggregator) RecentErrors(limit int) ([]*models.HealthCheckResult, error) {
	return a.checks.RecentErrors(limit)
}

// HourlyTrends buckets checks from the last `hours` hours per endpoint.
func (a *Aggregator) HourlyTrends(hours int) ([]*models.HourlyTrend, error) {
	since := a.now().UTC().Add(-time.Duration(hours) * time.Hour).Unix()
	return a.checks.HourlyTrends(since)
}
