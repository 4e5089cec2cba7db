package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"healthdeck/internal/engine/alerts"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

// Prober probes active endpoints over HTTP, records the raw check
// results, and forwards each result to the alert engine.
type Prober struct {
	endpoints *repositories.EndpointRepository
	checks    *repositories.CheckRepository
	alerts    *alerts.Engine
	client    *http.Client
	cfg       config.MonitorConfig
}

func NewProber(endpoints *repositories.EndpointRepository, checks *repositories.CheckRepository, alertEngine *alerts.Engine, cfg config.MonitorConfig) *Prober {
	return &Prober{
		endpoints: endpoints,
		checks:    checks,
		alerts:    alertEngine,
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
	}
}

// RunCycle checks every active endpoint once.
func (p *Prober) RunCycle(ctx context.Context) error {
	endpoints, err := p.endpoints.ListActive()
	if err != nil {
		return err
	}

	log.Info().Int("endpoints", len(endpoints)).Msg("starting check cycle")

	successful := 0
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result := p.Check(ctx, endpoint)
		if err := p.checks.Insert(result); err != nil {
			log.Error().Err(err).Str("endpoint", endpoint.Name).Msg("failed to record check")
			continue
		}
		if _, err := p.alerts.OnCheckResult(result); err != nil {
			log.Error().Err(err).Str("endpoint", endpoint.Name).Msg("alert evaluation failed")
		}
		if result.Success {
			successful++
		}
	}

	log.Info().
		Int("successful", successful).
		Int("failed", len(endpoints)-successful).
		Msg("check cycle complete")
	return nil
}

// RunContinuous runs check cycles on the configured interval until ctx is
// cancelled.
func (p *Prober) RunContinuous(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("check cycle failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Check probes one endpoint and classifies the outcome. It never returns
// an error: transport failures become failed check results.
func (p *Prober) Check(ctx context.Context, endpoint *models.Endpoint) *models.HealthCheckResult {
	result := &models.HealthCheckResult{
		EndpointID: endpoint.ID,
		CheckedAt:  time.Now().UTC().Unix(),
	}

	url := endpoint.BaseURL + endpoint.EndpointPath
	method := endpoint.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	timeout := p.client.Timeout
	if endpoint.TimeoutSeconds > 0 {
		timeout = time.Duration(endpoint.TimeoutSeconds) * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		fail(result, models.ErrorTypeOther, err.Error())
		return result
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		errType := classifyTransportError(err)
		if errType == models.ErrorTypeTimeout {
			result.ResponseTimeMS = &elapsed
		}
		fail(result, errType, err.Error())
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = &resp.StatusCode
	result.ResponseTimeMS = &elapsed
	result.Success = resp.StatusCode == endpoint.ExpectedStatusCode

	if !result.Success {
		errType := classifyStatus(resp.StatusCode)
		msg := fmt.Sprintf("expected %d, got %d", endpoint.ExpectedStatusCode, resp.StatusCode)
		fail(result, errType, msg)
	}

	return result
}

func fail(result *models.HealthCheckResult, errType, message string) {
	result.Success = false
	result.ErrorType = &errType
	result.ErrorMessage = &message
}

func classifyTransportError(err error) string {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return models.ErrorTypeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.ErrorTypeTimeout
	default:
		return models.ErrorTypeConnectionError
	}
}

func classifyStatus(status int) string {
	switch {
	case status >= 500:
		return models.ErrorTypeServerError
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.ErrorTypeAuthError
	case status == http.StatusTooManyRequests:
		return models.ErrorTypeRateLimit
	default:
		return models.ErrorTypeInvalidResponse
	}
}
