package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"healthdeck/internal/engine/alerts"
	"healthdeck/internal/engine/monitor"
	"healthdeck/internal/pkg/logger"
	"healthdeck/internal/platform/config"
	"healthdeck/internal/platform/database"
	"healthdeck/internal/platform/repositories"
)

func main() {
	once := flag.Bool("once", false, "Run a single check cycle and exit")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	endpointRepo := repositories.NewEndpointRepository(db)
	checkRepo := repositories.NewCheckRepository(db)
	alertEngine := alerts.NewEngine(repositories.NewAlertRepository(db))

	prober := monitor.NewProber(endpointRepo, checkRepo, alertEngine, cfg.Monitor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := prober.RunCycle(ctx); err != nil {
			log.Fatalf("Check cycle failed: %v", err)
		}
		return
	}

	log.Printf("Starting continuous monitoring every %s", cfg.Monitor.Interval)
	if err := prober.RunContinuous(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Monitoring stopped: %v", err)
	}
}
