// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"prepwise_backend/internal/audit"
	"prepwise_backend/internal/config"
	"prepwise_backend/internal/platform/database"
	platformElasticsearch "prepwise_backend/internal/platform/elasticsearch"
	"prepwise_backend/internal/platform/logger"
)

func main() {
	pruneCmd := flag.NewFlagSet("prune-audit", flag.ExitOnError)
	retentionDays := pruneCmd.Int("retention-days", 0, "Override AUDIT_RETENTION_DAYS for this run")

	if len(os.Args) > 1 && os.Args[1] == "prune-audit" {
		pruneCmd.Parse(os.Args[2:])
		runAuditPrune(*retentionDays)
		return
	}

	// Default: Start server
	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// runAuditPrune removes auth events past the retention window once, outside
// the scheduled job. Useful after lowering AUDIT_RETENTION_DAYS.
func runAuditPrune(retentionDays int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for prune: %v", err)
	}
	if retentionDays > 0 {
		cfg.AuditRetentionDays = retentionDays
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for prune: %v", err)
	}
	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize database for prune", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Elasticsearch client unavailable for prune, continuing without it", zap.Error(err))
		esClient = nil
	}

	auditRepo, err := audit.NewGORMRepository(db)
	if err != nil {
		appLogger.Fatal("FATAL: Failed to initialize audit repository for prune", zap.Error(err))
	}
	recorder := audit.NewRecorder(auditRepo, esClient, appLogger)

	pruned, err := recorder.Prune(context.Background(), cfg.AuditRetentionDays)
	if err != nil {
		appLogger.Fatal("FATAL: Audit prune failed", zap.Error(err))
	}
	appLogger.Info("Audit prune completed",
		zap.Int64("events_pruned", pruned),
		zap.Int("retention_days", cfg.AuditRetentionDays),
	)
}
