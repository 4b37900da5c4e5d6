package main

import (
	"context"
	"net/http"
	"time"

	eventsHttp "site-analytics-service/internal/events/adapters/http/fiber"
	eventsPorts "site-analytics-service/internal/events/core/ports"
	eventsUsecase "site-analytics-service/internal/events/core/usecase"

	metricsHttp "site-analytics-service/internal/metrics/adapters/http/fiber"
	metricsUsecase "site-analytics-service/internal/metrics/core/usecase"

	"site-analytics-service/internal/platform/config"
	"site-analytics-service/internal/platform/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

type appDeps struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   eventsPorts.EventStorePort
	metrics *observability.Metrics
	// ping reports store reachability for /health; nil means always healthy.
	ping func(ctx context.Context) error
}

func newApp(d appDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "site-analytics-service",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberLogger.New(fiberLogger.Config{
		Output: d.log.Writer(),
		Format: "${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(d.metrics.Middleware())

	// Usecases
	storeEventUC := eventsUsecase.NewStoreEventUseCase(d.store)
	analyticsUC := metricsUsecase.NewAnalyticsUseCase(d.store, d.log, d.metrics, metricsUsecase.Options{
		RecencyWindow:   d.cfg.RecencyWindow,
		ScrollSampleCap: d.cfg.ScrollSampleCap,
		TopN:            d.cfg.TopN,
		Location:        d.cfg.Location(),
		RefreshInterval: d.cfg.RefreshInterval,
		QueryTimeout:    d.cfg.DBQueryTimeout,
	})

	// events endpoints
	eventsHandler := eventsHttp.NewEventHandler(storeEventUC, d.log, d.metrics)
	app.Post("/api/track", eventsHandler.TrackEvent)
	app.Post("/api/track/bulk", eventsHandler.BulkTrackEvents)

	// owner analytics endpoints
	analyticsHandler := metricsHttp.NewAnalyticsHandler(analyticsUC, metricsHttp.QueryDefaults{
		TopN:            d.cfg.TopN,
		ScrollSampleCap: d.cfg.ScrollSampleCap,
	})
	owner := app.Group("/owner/analytics", basicauth.New(basicauth.Config{
		Users: map[string]string{d.cfg.OwnerUsername: d.cfg.OwnerPassword},
		Realm: "Owner Analytics",
	}))
	owner.Get("/", analyticsHandler.GetDashboard)
	owner.Get("/count", analyticsHandler.GetCount)
	owner.Get("/top", analyticsHandler.GetTop)
	owner.Get("/timeline", analyticsHandler.GetTimeline)
	owner.Get("/average", analyticsHandler.GetAverage)
	owner.Get("/unique", analyticsHandler.GetUnique)

	app.Get("/health", healthHandler(d.ping))
	app.Get("/internal/metrics", d.metrics.Handler())

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	return app
}

func healthHandler(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
				})
			}
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}
