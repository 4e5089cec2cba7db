package main

import (
	"fmt"
	"log"
	"net/http"

	"healthdeck/internal/api"
	"healthdeck/internal/api/handlers"
	"healthdeck/internal/engine/alerts"
	"healthdeck/internal/engine/health"
	"healthdeck/internal/engine/ingest"
	"healthdeck/internal/pkg/logger"
	"healthdeck/internal/platform/audit"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/database"
	"healthdeck/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	eventRepo := repositories.NewEventRepository(db, cfg.API.DefaultLimit, cfg.API.MaxLimit)
	checkRepo := repositories.NewCheckRepository(db)
	endpointRepo := repositories.NewEndpointRepository(db)
	alertRepo := repositories.NewAlertRepository(db)
	integrationRepo := repositories.NewIntegrationRepository(db)
	auditLog := audit.NewLogger(db)

	// Engines
	verifier := ingest.NewVerifier(cfg.Sources.Secrets)
	queue := ingest.NewQueue(eventRepo, auditLog, cfg.Ingest)
	queue.Start()
	defer queue.Close()

	pipeline := ingest.NewPipeline(eventRepo, verifier, queue)
	aggregator := health.NewAggregator(checkRepo, alertRepo, integrationRepo, cfg.Health)
	alertEngine := alerts.NewEngine(alertRepo)

	// Handlers
	deps := &api.Dependencies{
		WebhookHandler:   handlers.NewWebhookHandler(pipeline),
		EventsHandler:    handlers.NewEventsHandler(eventRepo, cfg.API),
		DashboardHandler: handlers.NewDashboardHandler(aggregator, endpointRepo, eventRepo, cfg.Health.Window, cfg.API),
		AlertsHandler:    handlers.NewAlertsHandler(alertRepo, alertEngine, cfg.API),
		AuditHandler:     handlers.NewAuditHandler(auditLog, cfg.API),
		HealthHandler:    handlers.NewHealthHandler(),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
