package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	events "site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/metrics/core/domain"
	"site-analytics-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsUseCase interface {
	TotalCount(ctx context.Context, filter events.EventFilter) usecase.Result[int64]
	TopNBy(ctx context.Context, field domain.Field, n int, excludeEmpty bool) (usecase.Result[[]domain.ValueCount], error)
	DailyTimeline(ctx context.Context) usecase.Result[[]domain.DayCount]
	AverageNumericField(ctx context.Context, eventType, key string, sampleCap int) (usecase.Result[float64], error)
	UniqueValueCount(ctx context.Context, field domain.Field, excludeEmpty bool) (usecase.Result[int64], error)
	Dashboard(ctx context.Context) *domain.Dashboard
}

// Defaults for query parameters that the caller may omit.
type QueryDefaults struct {
	TopN            int
	ScrollSampleCap int
}

type AnalyticsHandler struct {
	uc       AnalyticsUseCase
	defaults QueryDefaults
}

func NewAnalyticsHandler(uc AnalyticsUseCase, defaults QueryDefaults) *AnalyticsHandler {
	if defaults.TopN <= 0 {
		defaults.TopN = usecase.DefaultTopN
	}
	if defaults.ScrollSampleCap <= 0 {
		defaults.ScrollSampleCap = usecase.DefaultScrollSampleCap
	}
	return &AnalyticsHandler{uc: uc, defaults: defaults}
}

// GetDashboard godoc
// @Summary Owner analytics dashboard
// @Description Recomputes every dashboard metric from the store. Clients should poll
// @Description again after refresh_interval_seconds; the Refresh header carries the same value.
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {string} string "Unauthorized"
// @Router /owner/analytics [get]
func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	d := h.uc.Dashboard(c.UserContext())

	resp := toDashboardResponse(d)
	c.Set("Refresh", strconv.FormatInt(resp.RefreshIntervalSeconds, 10))
	return c.Status(http.StatusOK).JSON(resp)
}

// GetCount godoc
// @Summary Count events
// @Description Counts events in the recency window matching the filter
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Param event_type query []string false "Event type, repeatable for set membership" collectionFormat(multi)
// @Param non_empty_element query bool false "Only events with an element"
// @Param non_empty_page query bool false "Only events with a page"
// @Success 200 {object} CountResponse
// @Failure 400 {object} ErrorResponse
// @Router /owner/analytics/count [get]
func (h *AnalyticsHandler) GetCount(c *fiber.Ctx) error {
	var filter events.EventFilter
	for _, v := range c.Context().QueryArgs().PeekMulti("event_type") {
		if s := string(v); s != "" {
			filter.EventTypes = append(filter.EventTypes, s)
		}
	}

	var err error
	if filter.NonEmptyElement, err = queryBool(c, "non_empty_element", false); err != nil {
		return badRequest(c, err)
	}
	if filter.NonEmptyPage, err = queryBool(c, "non_empty_page", false); err != nil {
		return badRequest(c, err)
	}

	res := h.uc.TotalCount(c.UserContext(), filter)
	return c.Status(http.StatusOK).JSON(CountResponse{Count: res.Value, Degraded: res.Degraded})
}

// GetTop godoc
// @Summary Top values of a field
// @Description Most frequent values of element, page, event_type or session_id
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Param field query string true "element | page | event_type | session_id"
// @Param n query int false "Number of entries (default 10)"
// @Param include_empty query bool false "Count empty values as a group"
// @Success 200 {object} TopResponse
// @Failure 400 {object} ErrorResponse
// @Router /owner/analytics/top [get]
func (h *AnalyticsHandler) GetTop(c *fiber.Ctx) error {
	field := domain.Field(c.Query("field", ""))

	n, err := queryInt(c, "n", h.defaults.TopN)
	if err != nil {
		return badRequest(c, err)
	}
	includeEmpty, err := queryBool(c, "include_empty", false)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := h.uc.TopNBy(c.UserContext(), field, n, !includeEmpty)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(TopResponse{
		Field:    string(field),
		Items:    toValueCounts(res.Value),
		Degraded: res.Degraded,
	})
}

// GetTimeline godoc
// @Summary Events per day
// @Description Event counts per calendar date, oldest first. Days without events are omitted.
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Success 200 {object} TimelineResponse
// @Router /owner/analytics/timeline [get]
func (h *AnalyticsHandler) GetTimeline(c *fiber.Ctx) error {
	res := h.uc.DailyTimeline(c.UserContext())
	return c.Status(http.StatusOK).JSON(TimelineResponse{Items: toDayCounts(res.Value), Degraded: res.Degraded})
}

// GetAverage godoc
// @Summary Average of a numeric additional_data key
// @Description Mean over the newest sample events of a type, rounded to 2 decimals
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Param event_type query string false "Event type (default scroll_depth)"
// @Param key query string false "additional_data key (default depth)"
// @Param sample query int false "Sample size (default 300)"
// @Success 200 {object} AverageResponse
// @Failure 400 {object} ErrorResponse
// @Router /owner/analytics/average [get]
func (h *AnalyticsHandler) GetAverage(c *fiber.Ctx) error {
	eventType := c.Query("event_type", events.EventTypeScrollDepth)
	key := c.Query("key", events.ScrollDepthKey)

	sample, err := queryInt(c, "sample", h.defaults.ScrollSampleCap)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := h.uc.AverageNumericField(c.UserContext(), eventType, key, sample)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(AverageResponse{
		EventType: eventType,
		Key:       key,
		Sample:    sample,
		Average:   res.Value,
		Degraded:  res.Degraded,
	})
}

// GetUnique godoc
// @Summary Distinct values of a field
// @Tags Analytics
// @Produce json
// @Security BasicAuth
// @Param field query string true "element | page | event_type | session_id"
// @Param include_empty query bool false "Count the empty value as distinct"
// @Success 200 {object} UniqueResponse
// @Failure 400 {object} ErrorResponse
// @Router /owner/analytics/unique [get]
func (h *AnalyticsHandler) GetUnique(c *fiber.Ctx) error {
	field := domain.Field(c.Query("field", ""))

	includeEmpty, err := queryBool(c, "include_empty", false)
	if err != nil {
		return badRequest(c, err)
	}

	res, err := h.uc.UniqueValueCount(c.UserContext(), field, !includeEmpty)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(http.StatusOK).JSON(UniqueResponse{Field: string(field), Count: res.Value, Degraded: res.Degraded})
}

func (h *AnalyticsHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidField),
		errors.Is(err, usecase.ErrInvalidLimit),
		errors.Is(err, usecase.ErrInvalidQuery):
		return badRequest(c, err)
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_query",
		Message: err.Error(),
	})
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid '" + key + "' parameter")
	}
	return v, nil
}

func queryBool(c *fiber.Ctx, key string, def bool) (bool, error) {
	raw := c.Query(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid '" + key + "' parameter")
	}
	return v, nil
}
