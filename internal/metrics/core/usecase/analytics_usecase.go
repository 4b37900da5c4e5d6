package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	events "site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/metrics/core/aggregate"
	"site-analytics-service/internal/metrics/core/domain"
	"site-analytics-service/internal/metrics/core/ports"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidLimit = errors.New("invalid limit")
	ErrInvalidQuery = errors.New("invalid analytics query")
)

const (
	DefaultRecencyWindow   = 5000
	DefaultScrollSampleCap = 300
	DefaultTopN            = 10
	DefaultRefreshInterval = 60 * time.Second
	DefaultTimeZone        = "Europe/Bucharest"
)

type Options struct {
	// RecencyWindow caps how many of the newest events every aggregate reads.
	RecencyWindow   int
	ScrollSampleCap int
	TopN            int
	Location        *time.Location
	RefreshInterval time.Duration
	// QueryTimeout bounds each store read; zero leaves it to the caller's context.
	QueryTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.RecencyWindow <= 0 {
		o.RecencyWindow = DefaultRecencyWindow
	}
	if o.ScrollSampleCap <= 0 {
		o.ScrollSampleCap = DefaultScrollSampleCap
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	return o
}

// Result carries an aggregate and whether it was substituted because the
// store could not be read.
type Result[T any] struct {
	Value    T
	Degraded bool
}

type noopObserver struct{}

func (noopObserver) AggregationDegraded(string) {}

// AnalyticsUseCase recomputes every aggregate from the store on each call.
// Storage failures never surface as errors: they are logged and turned into
// zero results flagged as degraded.
type AnalyticsUseCase struct {
	source   ports.EventSourcePort
	opts     Options
	log      logrus.FieldLogger
	observer ports.DegradationObserver
	now      func() time.Time
}

func NewAnalyticsUseCase(source ports.EventSourcePort, log logrus.FieldLogger, observer ports.DegradationObserver, opts Options) *AnalyticsUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &AnalyticsUseCase{
		source:   source,
		opts:     opts.withDefaults(),
		log:      log,
		observer: observer,
		now:      time.Now,
	}
}

func (uc *AnalyticsUseCase) Options() Options {
	return uc.opts
}

func (uc *AnalyticsUseCase) TotalCount(ctx context.Context, filter events.EventFilter) Result[int64] {
	evs, degraded := uc.window(ctx, "total_count")
	return Result[int64]{Value: aggregate.Count(evs, filter), Degraded: degraded}
}

func (uc *AnalyticsUseCase) TopNBy(ctx context.Context, field domain.Field, n int, excludeEmpty bool) (Result[[]domain.ValueCount], error) {
	if !field.Valid() {
		return Result[[]domain.ValueCount]{}, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	if n <= 0 {
		return Result[[]domain.ValueCount]{}, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidLimit, n)
	}

	evs, degraded := uc.window(ctx, "top_n_by")
	return Result[[]domain.ValueCount]{
		Value:    aggregate.TopN(evs, field, n, excludeEmpty),
		Degraded: degraded,
	}, nil
}

func (uc *AnalyticsUseCase) DailyTimeline(ctx context.Context) Result[[]domain.DayCount] {
	evs, degraded := uc.window(ctx, "daily_timeline")
	return Result[[]domain.DayCount]{Value: aggregate.DailyTimeline(evs, uc.opts.Location), Degraded: degraded}
}

// AverageNumericField reads its own sample of the newest sampleCap events of
// eventType, independent of the recency window.
func (uc *AnalyticsUseCase) AverageNumericField(ctx context.Context, eventType, key string, sampleCap int) (Result[float64], error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" || key == "" {
		return Result[float64]{}, fmt.Errorf("%w: event_type and key are required", ErrInvalidQuery)
	}
	if sampleCap <= 0 {
		return Result[float64]{}, fmt.Errorf("%w: sample must be positive, got %d", ErrInvalidLimit, sampleCap)
	}

	sample, err := uc.load(ctx, events.EventQuery{
		Filter: events.EventFilter{EventTypes: []string{eventType}},
		Limit:  sampleCap,
	})
	if err != nil {
		uc.degrade("average_numeric_field", err)
		return Result[float64]{Degraded: true}, nil
	}
	return Result[float64]{Value: aggregate.AverageNumeric(sample, key)}, nil
}

func (uc *AnalyticsUseCase) UniqueValueCount(ctx context.Context, field domain.Field, excludeEmpty bool) (Result[int64], error) {
	if !field.Valid() {
		return Result[int64]{}, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	evs, degraded := uc.window(ctx, "unique_value_count")
	return Result[int64]{Value: aggregate.UniqueCount(evs, field, excludeEmpty), Degraded: degraded}, nil
}

// Dashboard computes every owner metric from one window read and one scroll
// sample read.
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context) *domain.Dashboard {
	evs, degraded := uc.window(ctx, "dashboard")

	d := &domain.Dashboard{
		TotalEvents:     int64(len(evs)),
		PageViews:       aggregate.Count(evs, events.EventFilter{EventTypes: []string{events.EventTypePageView}}),
		ContactSubmits:  aggregate.Count(evs, events.EventFilter{EventTypes: events.ContactSubmitEventTypes}),
		UniquePages:     aggregate.UniqueCount(evs, domain.FieldPage, true),
		UniqueElements:  aggregate.UniqueCount(evs, domain.FieldElement, true),
		Timeline:        aggregate.DailyTimeline(evs, uc.opts.Location),
		TopEventTypes:   aggregate.TopN(evs, domain.FieldEventType, uc.opts.TopN, true),
		TopElements:     aggregate.TopN(evs, domain.FieldElement, uc.opts.TopN, true),
		TopPages:        aggregate.TopN(evs, domain.FieldPage, uc.opts.TopN, true),
		GeneratedAt:     uc.now().UTC(),
		RefreshInterval: uc.opts.RefreshInterval,
		Degraded:        degraded,
	}

	scroll, _ := uc.AverageNumericField(ctx, events.EventTypeScrollDepth, events.ScrollDepthKey, uc.opts.ScrollSampleCap)
	d.AvgScrollDepth = scroll.Value
	d.Degraded = d.Degraded || scroll.Degraded

	return d
}

func (uc *AnalyticsUseCase) window(ctx context.Context, op string) ([]events.Event, bool) {
	evs, err := uc.load(ctx, events.EventQuery{Limit: uc.opts.RecencyWindow})
	if err != nil {
		uc.degrade(op, err)
		return nil, true
	}
	return evs, false
}

func (uc *AnalyticsUseCase) load(ctx context.Context, q events.EventQuery) ([]events.Event, error) {
	if uc.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.QueryTimeout)
		defer cancel()
	}

	out := make([]events.Event, 0)
	for e, err := range uc.source.QueryEvents(ctx, q) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (uc *AnalyticsUseCase) degrade(op string, err error) {
	uc.log.WithError(err).WithField("operation", op).Warn("event store unavailable, serving zero data")
	uc.observer.AggregationDegraded(op)
}
