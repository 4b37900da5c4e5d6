package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"site-analytics-service/internal/events/adapters/memory"
	"site-analytics-service/internal/events/adapters/sqlstore"
	eventsPorts "site-analytics-service/internal/events/core/ports"

	"site-analytics-service/internal/platform/config"
	"site-analytics-service/internal/platform/database"
	"site-analytics-service/internal/platform/logger"
	"site-analytics-service/internal/platform/observability"

	"github.com/sirupsen/logrus"

	_ "site-analytics-service/docs"
)

// @title Site Analytics API
// @version 1.0
// @description Event ingestion and owner analytics for the marketing site.
// @BasePath /
// @securityDefinitions.basic BasicAuth
func main() {
	// Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("CONFIG: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	store, ping, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open event store")
	}
	defer closeStore()

	app := newApp(appDeps{
		cfg:     cfg,
		log:     log,
		store:   store,
		metrics: observability.NewMetrics(),
		ping:    ping,
	})

	// Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber stopped")
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.Port, "driver": cfg.DBDriver}).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Error("fiber shutdown error")
	}

	log.Info("server exiting")
}

func openStore(cfg *config.Config, log *logrus.Logger) (eventsPorts.EventStorePort, func(context.Context) error, func(), error) {
	if cfg.DBDriver == database.DriverMemory {
		log.Warn("using the in-memory event store, events are lost on restart")
		return memory.NewEventRepository(), nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, nil, err
	}

	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("MIGRATIONS: database is up to date")

	closeFn := func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
	return sqlstore.NewEventRepository(sqlstore.NewSQLDB(db)), db.PingContext, closeFn, nil
}
