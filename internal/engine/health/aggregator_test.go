package health

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"healthdeck/internal/engine/alerts"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/models"
	"healthdeck/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE customer_integrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name TEXT NOT NULL,
		integration_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'setup',
		config TEXT,
		last_sync_at INTEGER,
		error_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE api_endpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		base_url TEXT NOT NULL,
		endpoint_path TEXT NOT NULL DEFAULT '/',
		http_method TEXT NOT NULL DEFAULT 'GET',
		expected_status_code INTEGER NOT NULL DEFAULT 200,
		timeout_seconds INTEGER NOT NULL DEFAULT 30,
		integration_id INTEGER,
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE health_checks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint_id INTEGER NOT NULL,
		status_code INTEGER,
		response_time_ms REAL,
		success INTEGER NOT NULL,
		error_type TEXT,
		error_message TEXT,
		checked_at INTEGER NOT NULL
	);
	CREATE TABLE alerts (
		id TEXT PRIMARY KEY,
		endpoint_id INTEGER,
		integration_id INTEGER,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		resolved INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		resolved_at INTEGER
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func testHealthConfig() config.HealthConfig {
	return config.HealthConfig{
		Window:          24 * time.Hour,
		ErrorCountMax:   3,
		FailedChecksMax: 5,
		OpenAlertsMax:   3,
	}
}

func newTestAggregator(db *sql.DB) *Aggregator {
	return NewAggregator(
		repositories.NewCheckRepository(db),
		repositories.NewAlertRepository(db),
		repositories.NewIntegrationRepository(db),
		testHealthConfig(),
	)
}

func insertEndpoint(t *testing.T, db *sql.DB, name string, integrationID interface{}) int64 {
	t.Helper()
	res, err := db.Exec(`
		INSERT INTO api_endpoints (name, base_url, integration_id, active) VALUES (?, 'https://example.com', ?, 1)
	`, name, integrationID)
	if err != nil {
		t.Fatalf("insert endpoint: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func insertCheck(t *testing.T, db *sql.DB, endpointID int64, success bool, responseTime float64, checkedAt int64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO health_checks (endpoint_id, status_code, response_time_ms, success, checked_at)
		VALUES (?, 200, ?, ?, ?)
	`, endpointID, responseTime, success, checkedAt)
	if err != nil {
		t.Fatalf("insert check: %v", err)
	}
}

func TestAggregator_Summarize(t *testing.T) {
	db := setupTestDB(t)
	agg := newTestAggregator(db)

	now := time.Now().UTC().Unix()
	apiID := insertEndpoint(t, db, "API", nil)
	emptyID := insertEndpoint(t, db, "Empty", nil)

	insertCheck(t, db, apiID, true, 100, now-60)
	insertCheck(t, db, apiID, true, 300, now-120)
	insertCheck(t, db, apiID, false, 500, now-180)
	// Outside the window, must be ignored.
	insertCheck(t, db, apiID, false, 900, now-48*3600)

	summaries, err := agg.Summarize(24 * time.Hour)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}

	byID := map[int64]*models.EndpointSummary{}
	for _, s := range summaries {
		byID[s.EndpointID] = s
	}

	api := byID[apiID]
	if api.TotalChecks != 3 || api.SuccessfulChecks != 2 || api.FailedChecks != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", api.TotalChecks, api.SuccessfulChecks, api.FailedChecks)
	}
	if want := 100 * 2.0 / 3.0; api.UptimePercentage < want-0.01 || api.UptimePercentage > want+0.01 {
		t.Errorf("uptime = %f, want %f", api.UptimePercentage, want)
	}
	if api.UptimePercentage < 0 || api.UptimePercentage > 100 {
		t.Errorf("uptime %f out of [0,100]", api.UptimePercentage)
	}
	if api.MinResponseTimeMS == nil || *api.MinResponseTimeMS != 100 {
		t.Error("min response time wrong")
	}
	if api.MaxResponseTimeMS == nil || *api.MaxResponseTimeMS != 500 {
		t.Error("max response time wrong")
	}
	if api.LastCheckAt == nil || *api.LastCheckAt != now-60 {
		t.Error("last check time wrong")
	}

	// Endpoint with no checks in the window: uptime defined as 0.
	empty := byID[emptyID]
	if empty.TotalChecks != 0 {
		t.Errorf("empty endpoint total = %d, want 0", empty.TotalChecks)
	}
	if empty.UptimePercentage != 0 {
		t.Errorf("empty endpoint uptime = %f, want 0", empty.UptimePercentage)
	}
}

func TestAggregator_DeriveColor(t *testing.T) {
	agg := newTestAggregator(setupTestDB(t))

	tests := []struct {
		name         string
		status       string
		criticalOpen bool
		errorCount   int
		failedChecks int
		openAlerts   int
		want         string
	}{
		{"all clear", "active", false, 0, 0, 0, ColorGreen},
		{"status error", "error", false, 0, 0, 0, ColorRed},
		{"critical alert open", "active", true, 0, 0, 0, ColorRed},
		{"error count over threshold", "active", false, 4, 0, 0, ColorYellow},
		{"failed checks over threshold", "active", false, 0, 6, 0, ColorYellow},
		{"open alerts over threshold", "active", false, 0, 0, 4, ColorYellow},
		{"at thresholds stays green", "active", false, 3, 5, 3, ColorGreen},
		{"red beats yellow", "error", false, 10, 10, 10, ColorRed},
		{"critical beats yellow", "active", true, 10, 10, 10, ColorRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.DeriveColor(tt.status, tt.criticalOpen, tt.errorCount, tt.failedChecks, tt.openAlerts)
			if got != tt.want {
				t.Errorf("DeriveColor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregator_CustomerHealth(t *testing.T) {
	db := setupTestDB(t)
	agg := newTestAggregator(db)

	// Customer with status "error" and zero checks must still be red.
	db.Exec(`INSERT INTO customer_integrations (customer_name, integration_type, status) VALUES ('Initech', 'shopify', 'error')`)
	// Healthy customer.
	db.Exec(`INSERT INTO customer_integrations (customer_name, integration_type, status) VALUES ('Acme', 'salesforce', 'active')`)
	// Customer pushed to yellow by failed checks.
	db.Exec(`INSERT INTO customer_integrations (customer_name, integration_type, status) VALUES ('Globex', 'stripe', 'active')`)

	now := time.Now().UTC().Unix()
	globexEndpoint := insertEndpoint(t, db, "Globex API", 3)
	for i := 0; i < 6; i++ {
		insertCheck(t, db, globexEndpoint, false, 100, now-int64(i*60))
	}

	rollups, err := agg.CustomerHealth(24 * time.Hour)
	if err != nil {
		t.Fatalf("CustomerHealth failed: %v", err)
	}

	byName := map[string]*models.CustomerHealth{}
	for _, r := range rollups {
		byName[r.CustomerName] = r
	}

	if got := byName["Initech"].HealthColor; got != ColorRed {
		t.Errorf("Initech color = %q, want red", got)
	}
	if got := byName["Acme"].HealthColor; got != ColorGreen {
		t.Errorf("Acme color = %q, want green", got)
	}
	globex := byName["Globex"]
	if globex.FailedChecks != 6 {
		t.Errorf("Globex failed checks = %d, want 6", globex.FailedChecks)
	}
	if globex.HealthColor != ColorYellow {
		t.Errorf("Globex color = %q, want yellow", globex.HealthColor)
	}
}

func TestAggregator_CustomerHealth_CriticalAlert(t *testing.T) {
	db := setupTestDB(t)
	agg := newTestAggregator(db)

	db.Exec(`INSERT INTO customer_integrations (customer_name, integration_type, status) VALUES ('Acme', 'salesforce', 'active')`)
	db.Exec(`
		INSERT INTO alerts (id, integration_id, alert_type, severity, title, resolved, created_at)
		VALUES ('alert_1', 1, 'endpoint_failure', 'CRITICAL', 'down', 0, 1)
	`)

	rollups, err := agg.CustomerHealth(24 * time.Hour)
	if err != nil {
		t.Fatalf("CustomerHealth failed: %v", err)
	}
	if rollups[0].HealthColor != ColorRed {
		t.Errorf("color = %q, want red with unresolved CRITICAL alert", rollups[0].HealthColor)
	}

	// Resolving the alert clears the red condition.
	db.Exec(`UPDATE alerts SET resolved = 1, resolved_at = 2 WHERE id = 'alert_1'`)
	rollups, _ = agg.CustomerHealth(24 * time.Hour)
	if rollups[0].HealthColor != ColorGreen {
		t.Errorf("color = %q, want green after alert resolved", rollups[0].HealthColor)
	}
}

func TestAggregator_CustomerHealth_AlertOpenedByEngine(t *testing.T) {
	db := setupTestDB(t)
	agg := newTestAggregator(db)

	db.Exec(`INSERT INTO customer_integrations (customer_name, integration_type, status) VALUES ('Acme', 'salesforce', 'active')`)
	endpointID := insertEndpoint(t, db, "Acme API", 1)

	// The rule engine scopes alerts to the endpoint; the rollup must
	// still attribute them to the endpoint's owning integration.
	engine := alerts.NewEngine(repositories.NewAlertRepository(db))
	errType := models.ErrorTypeConnectionError
	msg := "connection refused"
	alert, err := engine.OnCheckResult(&models.HealthCheckResult{
		EndpointID:   endpointID,
		Success:      false,
		ErrorType:    &errType,
		ErrorMessage: &msg,
	})
	if err != nil || alert == nil {
		t.Fatalf("expected a CRITICAL alert, got %v, %v", alert, err)
	}

	rollups, err := agg.CustomerHealth(24 * time.Hour)
	if err != nil {
		t.Fatalf("CustomerHealth failed: %v", err)
	}
	acme := rollups[0]
	if acme.UnresolvedAlerts != 1 || !acme.CriticalOpen {
		t.Errorf("rollup = %d open, critical=%v, want 1 open critical", acme.UnresolvedAlerts, acme.CriticalOpen)
	}
	if acme.HealthColor != ColorRed {
		t.Errorf("color = %q, want red while the engine's CRITICAL alert is open", acme.HealthColor)
	}

	// Resolving through the engine clears the red condition.
	if _, err := engine.Resolve(alert.ID); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	rollups, _ = agg.CustomerHealth(24 * time.Hour)
	if rollups[0].HealthColor != ColorGreen {
		t.Errorf("color = %q, want green after resolving", rollups[0].HealthColor)
	}
}

func TestAggregator_HourlyTrends(t *testing.T) {
	db := setupTestDB(t)
	agg := newTestAggregator(db)

	endpointID := insertEndpoint(t, db, "API", nil)
	now := time.Now().UTC()
	insertCheck(t, db, endpointID, true, 100, now.Add(-30*time.Minute).Unix())
	insertCheck(t, db, endpointID, false, 200, now.Add(-90*time.Minute).Unix())

	trends, err := agg.HourlyTrends(24)
	if err != nil {
		t.Fatalf("HourlyTrends failed: %v", err)
	}
	if len(trends) < 1 || len(trends) > 2 {
		t.Fatalf("trends = %d buckets, want 1 or 2", len(trends))
	}

	total, failed := 0, 0
	for _, tr := range trends {
		total += tr.TotalChecks
		failed += tr.FailedChecks
		if tr.EndpointID != endpointID {
			t.Errorf("trend endpoint = %d, want %d", tr.EndpointID, endpointID)
		}
	}
	if total != 2 || failed != 1 {
		t.Errorf("totals = %d/%d, want 2/1", total, failed)
	}
}
