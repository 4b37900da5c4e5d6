package usecase_test

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"
	_ "time/tzdata"

	"site-analytics-service/internal/events/adapters/memory"
	events "site-analytics-service/internal/events/core/domain"
	eventsusecase "site-analytics-service/internal/events/core/usecase"
	"site-analytics-service/internal/metrics/core/domain"
	"site-analytics-service/internal/metrics/core/usecase"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingSource simulates an unreachable store.
type failingSource struct {
	err   error
	calls int
}

func (f *failingSource) QueryEvents(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error] {
	f.calls++
	return func(yield func(events.Event, error) bool) {
		yield(events.Event{}, f.err)
	}
}

// recordingSource wraps a store and remembers every query it served.
type recordingSource struct {
	inner   *memory.EventRepository
	queries []events.EventQuery
}

func (r *recordingSource) QueryEvents(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error] {
	r.queries = append(r.queries, q)
	return r.inner.QueryEvents(ctx, q)
}

type fakeObserver struct {
	ops []string
}

func (f *fakeObserver) AggregationDegraded(op string) { f.ops = append(f.ops, op) }

type fixture struct {
	store  *memory.EventRepository
	ingest *eventsusecase.StoreEventUseCase
	uc     *usecase.AnalyticsUseCase
	hook   *logtest.Hook
	clock  time.Time
}

func newFixture(t *testing.T, opts usecase.Options) *fixture {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	f := &fixture{
		store: memory.NewEventRepository(),
		hook:  hook,
		clock: time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC),
	}
	f.ingest = eventsusecase.NewStoreEventUseCase(f.store).WithClock(func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	})
	f.uc = usecase.NewAnalyticsUseCase(f.store, logger, nil, opts)
	return f
}

func (f *fixture) track(t *testing.T, in eventsusecase.StoreEventInput) {
	t.Helper()
	_, err := f.ingest.Execute(context.Background(), in)
	require.NoError(t, err)
}

func TestAnalytics_EmptyStore(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	assert.Equal(t, usecase.Result[int64]{}, f.uc.TotalCount(ctx, events.EventFilter{}))

	top, err := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	require.NoError(t, err)
	assert.Empty(t, top.Value)
	assert.False(t, top.Degraded)

	assert.Empty(t, f.uc.DailyTimeline(ctx).Value)

	avg, err := f.uc.AverageNumericField(ctx, "scroll_depth", "depth", 300)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg.Value)

	d := f.uc.Dashboard(ctx)
	assert.Equal(t, int64(0), d.TotalEvents)
	assert.False(t, d.Degraded)
	assert.Empty(t, f.hook.AllEntries())
}

func TestAnalytics_PageViewAndCTAScenario(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.track(t, eventsusecase.StoreEventInput{EventType: "page_view", Page: "/"})
	}
	f.track(t, eventsusecase.StoreEventInput{EventType: "cta_click", Element: "hero_contact"})

	assert.Equal(t, int64(4), f.uc.TotalCount(ctx, events.EventFilter{}).Value)
	assert.Equal(t, int64(3), f.uc.TotalCount(ctx, events.EventFilter{EventTypes: []string{"page_view"}}).Value)

	top, err := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	require.NoError(t, err)
	assert.Equal(t, []domain.ValueCount{{Value: "hero_contact", Count: 1}}, top.Value)
}

func TestAnalytics_CountAfterNEventsOfOneType(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	const n = 7
	for i := 0; i < n; i++ {
		f.track(t, eventsusecase.StoreEventInput{EventType: "cta_click"})
	}

	assert.Equal(t, int64(n), f.uc.TotalCount(context.Background(), events.EventFilter{EventTypes: []string{"cta_click"}}).Value)
}

func TestAnalytics_RejectedPayloadLeavesCountUnchanged(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	f.track(t, eventsusecase.StoreEventInput{EventType: "page_view"})

	before := f.uc.TotalCount(ctx, events.EventFilter{}).Value

	_, err := f.ingest.Execute(ctx, eventsusecase.StoreEventInput{EventType: "x"})
	require.ErrorIs(t, err, eventsusecase.ErrInvalidEvent)

	assert.Equal(t, before, f.uc.TotalCount(ctx, events.EventFilter{}).Value)
	assert.Equal(t, 1, f.store.Len())
}

func TestAnalytics_TopNByArguments(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	_, err := f.uc.TopNBy(ctx, domain.Field("user_agent"), 10, true)
	assert.ErrorIs(t, err, usecase.ErrInvalidField)

	_, err = f.uc.TopNBy(ctx, domain.FieldPage, 0, true)
	assert.ErrorIs(t, err, usecase.ErrInvalidLimit)

	_, err = f.uc.UniqueValueCount(ctx, domain.Field("nope"), true)
	assert.ErrorIs(t, err, usecase.ErrInvalidField)

	_, err = f.uc.AverageNumericField(ctx, "scroll_depth", "depth", 0)
	assert.ErrorIs(t, err, usecase.ErrInvalidLimit)

	_, err = f.uc.AverageNumericField(ctx, " ", "depth", 10)
	assert.ErrorIs(t, err, usecase.ErrInvalidQuery)
}

func TestAnalytics_TopNByPagesSortedAndExcludesEmpty(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	for _, p := range []string{"/", "/blog", "", "/", "/contact", "/blog", "/", ""} {
		f.track(t, eventsusecase.StoreEventInput{EventType: "page_view", Page: p})
	}

	top, err := f.uc.TopNBy(ctx, domain.FieldPage, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []domain.ValueCount{{Value: "/", Count: 3}, {Value: "/blog", Count: 2}}, top.Value)

	unique, err := f.uc.UniqueValueCount(ctx, domain.FieldPage, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unique.Value)

	withEmpty, err := f.uc.UniqueValueCount(ctx, domain.FieldPage, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), withEmpty.Value)
}

func TestAnalytics_BlankAndPaddedValuesGroupTogether(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	for _, el := range []string{"   ", " hero_contact ", "hero_contact"} {
		f.track(t, eventsusecase.StoreEventInput{EventType: "cta_click", Element: el, Page: "  "})
	}

	top, err := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	require.NoError(t, err)
	assert.Equal(t, []domain.ValueCount{{Value: "hero_contact", Count: 2}}, top.Value)

	pages, err := f.uc.UniqueValueCount(ctx, domain.FieldPage, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pages.Value)

	assert.Equal(t, int64(2), f.uc.TotalCount(ctx, events.EventFilter{NonEmptyElement: true}).Value)
}

func TestAnalytics_AverageScrollDepth(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	for _, d := range []any{0.2, 0.4, 0.6} {
		f.track(t, eventsusecase.StoreEventInput{EventType: "scroll_depth", AdditionalData: map[string]any{"depth": d}})
	}
	f.track(t, eventsusecase.StoreEventInput{EventType: "scroll_depth", AdditionalData: map[string]any{"depth": "n/a"}})
	f.track(t, eventsusecase.StoreEventInput{EventType: "scroll_depth"})
	f.track(t, eventsusecase.StoreEventInput{EventType: "page_view", AdditionalData: map[string]any{"depth": 99.0}})

	avg, err := f.uc.AverageNumericField(ctx, "scroll_depth", "depth", 300)
	require.NoError(t, err)
	assert.InDelta(t, 0.40, avg.Value, 1e-9)
}

func TestAnalytics_AverageUsesNewestSample(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	for _, d := range []float64{100, 10, 20} {
		f.track(t, eventsusecase.StoreEventInput{EventType: "scroll_depth", AdditionalData: map[string]any{"depth": d}})
	}

	avg, err := f.uc.AverageNumericField(ctx, "scroll_depth", "depth", 2)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, avg.Value, 1e-9)
}

func TestAnalytics_RecencyWindowAppliesBeforeAggregation(t *testing.T) {
	f := newFixture(t, usecase.Options{RecencyWindow: 3})
	ctx := context.Background()

	f.track(t, eventsusecase.StoreEventInput{EventType: "cta_click", Element: "old"})
	f.track(t, eventsusecase.StoreEventInput{EventType: "cta_click", Element: "old"})
	for i := 0; i < 3; i++ {
		f.track(t, eventsusecase.StoreEventInput{EventType: "page_view", Page: "/"})
	}

	assert.Equal(t, int64(3), f.uc.TotalCount(ctx, events.EventFilter{}).Value)
	assert.Equal(t, int64(0), f.uc.TotalCount(ctx, events.EventFilter{EventTypes: []string{"cta_click"}}).Value)

	top, err := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	require.NoError(t, err)
	assert.Empty(t, top.Value)
}

func TestAnalytics_ScrollSampleIgnoresRecencyWindow(t *testing.T) {
	src := &recordingSource{inner: memory.NewEventRepository()}
	logger, _ := logtest.NewNullLogger()
	uc := usecase.NewAnalyticsUseCase(src, logger, nil, usecase.Options{RecencyWindow: 1, ScrollSampleCap: 50})

	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, src.inner.InsertEvent(ctx, &events.Event{
		ID: "s", EventType: "scroll_depth", Timestamp: base, AdditionalData: events.Attributes{"depth": 80.0},
	}))
	require.NoError(t, src.inner.InsertEvent(ctx, &events.Event{
		ID: "p", EventType: "page_view", Timestamp: base.Add(time.Second),
	}))

	d := uc.Dashboard(ctx)
	assert.Equal(t, int64(1), d.TotalEvents)
	assert.Equal(t, 80.0, d.AvgScrollDepth)

	require.Len(t, src.queries, 2)
	assert.Equal(t, events.EventQuery{Limit: 1}, src.queries[0])
	assert.Equal(t, events.EventQuery{
		Filter: events.EventFilter{EventTypes: []string{"scroll_depth"}},
		Limit:  50,
	}, src.queries[1])
}

// Dates without events are not zero-filled.
func TestAnalytics_DailyTimelineHasNoGaps(t *testing.T) {
	bucharest, err := time.LoadLocation("Europe/Bucharest")
	require.NoError(t, err)
	f := newFixture(t, usecase.Options{Location: bucharest})
	ctx := context.Background()

	f.clock = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	f.track(t, eventsusecase.StoreEventInput{EventType: "page_view"})
	f.track(t, eventsusecase.StoreEventInput{EventType: "page_view"})
	f.clock = time.Date(2025, 4, 4, 21, 30, 0, 0, time.UTC)
	f.track(t, eventsusecase.StoreEventInput{EventType: "page_view"})

	assert.Equal(t, []domain.DayCount{
		{Date: "2025-04-01", Count: 2},
		{Date: "2025-04-05", Count: 1},
	}, f.uc.DailyTimeline(ctx).Value)
}

func TestAnalytics_ReadsAreIdempotent(t *testing.T) {
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	for i, et := range []string{"page_view", "cta_click", "contact_submit", "contact_form_submit", "scroll_depth"} {
		f.track(t, eventsusecase.StoreEventInput{
			EventType:      et,
			Element:        []string{"", "hero_contact", "form", "form", "window"}[i],
			Page:           "/",
			AdditionalData: map[string]any{"depth": float64(i * 10)},
		})
	}

	first := f.uc.Dashboard(ctx)
	second := f.uc.Dashboard(ctx)
	first.GeneratedAt, second.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)

	top1, _ := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	top2, _ := f.uc.TopNBy(ctx, domain.FieldElement, 10, true)
	assert.Equal(t, top1, top2)
	assert.Equal(t, 5, f.store.Len())
}

func TestAnalytics_Dashboard(t *testing.T) {
	f := newFixture(t, usecase.Options{TopN: 2, RefreshInterval: 30 * time.Second})
	ctx := context.Background()

	seed := []eventsusecase.StoreEventInput{
		{EventType: "page_view", Page: "/"},
		{EventType: "page_view", Page: "/servicii"},
		{EventType: "page_view", Page: "/"},
		{EventType: "cta_click", Element: "hero_contact", Page: "/"},
		{EventType: "contact_submit", Element: "contact_form", Page: "/contact"},
		{EventType: "contact_form_submit", Element: "contact_form", Page: "/contact"},
		{EventType: "scroll_depth", Element: "window", Page: "/", AdditionalData: map[string]any{"depth": 50.0}},
		{EventType: "scroll_depth", Element: "window", Page: "/", AdditionalData: map[string]any{"depth": 100.0}},
	}
	for _, in := range seed {
		f.track(t, in)
	}

	d := f.uc.Dashboard(ctx)
	assert.Equal(t, int64(8), d.TotalEvents)
	assert.Equal(t, int64(3), d.PageViews)
	assert.Equal(t, int64(2), d.ContactSubmits)
	assert.Equal(t, int64(3), d.UniquePages)
	assert.Equal(t, int64(3), d.UniqueElements)
	assert.Equal(t, 75.0, d.AvgScrollDepth)
	assert.Equal(t, []domain.ValueCount{{Value: "/", Count: 5}, {Value: "/contact", Count: 2}}, d.TopPages)
	assert.Equal(t, []domain.ValueCount{{Value: "page_view", Count: 3}, {Value: "scroll_depth", Count: 2}}, d.TopEventTypes)
	assert.Equal(t, []domain.ValueCount{{Value: "window", Count: 2}, {Value: "contact_form", Count: 2}}, d.TopElements)
	assert.Equal(t, []domain.DayCount{{Date: "2025-04-10", Count: 8}}, d.Timeline)
	assert.Equal(t, 30*time.Second, d.RefreshInterval)
	assert.False(t, d.Degraded)
}

func TestAnalytics_StorageFailureDegrades(t *testing.T) {
	src := &failingSource{err: errors.New("connection refused")}
	logger, hook := logtest.NewNullLogger()
	obs := &fakeObserver{}
	uc := usecase.NewAnalyticsUseCase(src, logger, obs, usecase.Options{})
	ctx := context.Background()

	count := uc.TotalCount(ctx, events.EventFilter{})
	assert.Equal(t, usecase.Result[int64]{Degraded: true}, count)

	top, err := uc.TopNBy(ctx, domain.FieldPage, 10, true)
	require.NoError(t, err)
	assert.True(t, top.Degraded)
	assert.Empty(t, top.Value)

	avg, err := uc.AverageNumericField(ctx, "scroll_depth", "depth", 300)
	require.NoError(t, err)
	assert.Equal(t, usecase.Result[float64]{Degraded: true}, avg)

	d := uc.Dashboard(ctx)
	require.NotNil(t, d)
	assert.True(t, d.Degraded)
	assert.Equal(t, int64(0), d.TotalEvents)
	assert.Empty(t, d.Timeline)

	assert.Equal(t, []string{"total_count", "top_n_by", "average_numeric_field", "dashboard", "average_numeric_field"}, obs.ops)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "average_numeric_field", entry.Data["operation"])
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "connection refused")
}

func TestAnalytics_QueryTimeoutIsApplied(t *testing.T) {
	var deadlineSet bool
	src := sourceFunc(func(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error] {
		_, deadlineSet = ctx.Deadline()
		return func(yield func(events.Event, error) bool) {}
	})
	logger, _ := logtest.NewNullLogger()
	uc := usecase.NewAnalyticsUseCase(src, logger, nil, usecase.Options{QueryTimeout: time.Second})

	uc.TotalCount(context.Background(), events.EventFilter{})
	assert.True(t, deadlineSet)
}

type sourceFunc func(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error]

func (f sourceFunc) QueryEvents(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error] {
	return f(ctx, q)
}

func TestAnalytics_OptionsDefaults(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	opts := usecase.NewAnalyticsUseCase(memory.NewEventRepository(), logger, nil, usecase.Options{}).Options()

	assert.Equal(t, usecase.DefaultRecencyWindow, opts.RecencyWindow)
	assert.Equal(t, usecase.DefaultScrollSampleCap, opts.ScrollSampleCap)
	assert.Equal(t, usecase.DefaultTopN, opts.TopN)
	assert.Equal(t, usecase.DefaultRefreshInterval, opts.RefreshInterval)
	assert.Equal(t, time.UTC, opts.Location)
}
