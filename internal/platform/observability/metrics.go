// Package observability exposes prometheus metrics for ingestion, degraded
// aggregations and HTTP latency. A nil *Metrics is valid and records nothing.
package observability

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	events "site-analytics-service/internal/events/core/domain"
)

const namespace = "site_analytics"

// Event types are client supplied; only these get their own label value.
var knownEventTypes = []string{
	events.EventTypePageView,
	events.EventTypeCTAClick,
	events.EventTypeScrollDepth,
	events.EventTypeContactSubmit,
	events.EventTypeContactFormSubmit,
}

type Metrics struct {
	registry *prometheus.Registry

	ingested    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	degraded    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.ingested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_ingested_total",
		Help:      "Events stored, by event type",
	}, []string{"event_type"})
	m.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_rejected_total",
		Help:      "Ingestion requests rejected, by reason",
	}, []string{"reason"})
	m.degraded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregations_degraded_total",
		Help:      "Aggregations answered with zero data because the store was unavailable",
	}, []string{"operation"})
	m.reqDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	reg.MustRegister(
		m.ingested, m.rejected, m.degraded, m.reqDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) EventIngested(eventType string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(eventTypeLabel(eventType)).Inc()
}

func (m *Metrics) EventRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) AggregationDegraded(operation string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(operation).Inc()
}

// Middleware records request latency labelled by the matched route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.reqDuration.
			WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
}

func eventTypeLabel(eventType string) string {
	eventType = strings.TrimSpace(eventType)
	if slices.Contains(knownEventTypes, eventType) {
		return eventType
	}
	return "other"
}
