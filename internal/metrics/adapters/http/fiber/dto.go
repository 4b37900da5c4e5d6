package fiber

import (
	"time"

	"site-analytics-service/internal/metrics/core/domain"
)

type ValueCountResponse struct {
	Value string `json:"value" example:"hero_contact"`
	Count int64  `json:"count" example:"12"`
}

type DayCountResponse struct {
	Date  string `json:"date" example:"2025-04-10"`
	Count int64  `json:"count" example:"42"`
}

// DashboardResponse is the owner dashboard snapshot
// @Description All dashboard metrics computed from one read of the event store
type DashboardResponse struct {
	TotalEvents    int64                `json:"total_events"`
	PageViews      int64                `json:"page_views"`
	ContactSubmits int64                `json:"contact_submits"`
	UniquePages    int64                `json:"unique_pages"`
	UniqueElements int64                `json:"unique_elements"`
	AvgScrollDepth float64              `json:"avg_scroll_depth"`
	Timeline       []DayCountResponse   `json:"timeline"`
	TopEventTypes  []ValueCountResponse `json:"top_event_types"`
	TopElements    []ValueCountResponse `json:"top_elements"`
	TopPages       []ValueCountResponse `json:"top_pages"`

	GeneratedAt            time.Time `json:"generated_at"`
	RefreshIntervalSeconds int64     `json:"refresh_interval_seconds" example:"60"`
	Degraded               bool      `json:"degraded"`
}

type CountResponse struct {
	Count    int64 `json:"count"`
	Degraded bool  `json:"degraded"`
}

type TopResponse struct {
	Field    string               `json:"field" example:"element"`
	Items    []ValueCountResponse `json:"items"`
	Degraded bool                 `json:"degraded"`
}

type TimelineResponse struct {
	Items    []DayCountResponse `json:"items"`
	Degraded bool               `json:"degraded"`
}

type AverageResponse struct {
	EventType string  `json:"event_type" example:"scroll_depth"`
	Key       string  `json:"key" example:"depth"`
	Sample    int     `json:"sample" example:"300"`
	Average   float64 `json:"average" example:"0.4"`
	Degraded  bool    `json:"degraded"`
}

type UniqueResponse struct {
	Field    string `json:"field" example:"page"`
	Count    int64  `json:"count"`
	Degraded bool   `json:"degraded"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message,omitempty" example:"invalid field: \"user_agent\""`
}

func toValueCounts(in []domain.ValueCount) []ValueCountResponse {
	out := make([]ValueCountResponse, 0, len(in))
	for _, v := range in {
		out = append(out, ValueCountResponse{Value: v.Value, Count: v.Count})
	}
	return out
}

func toDayCounts(in []domain.DayCount) []DayCountResponse {
	out := make([]DayCountResponse, 0, len(in))
	for _, d := range in {
		out = append(out, DayCountResponse{Date: d.Date, Count: d.Count})
	}
	return out
}

func toDashboardResponse(d *domain.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalEvents:            d.TotalEvents,
		PageViews:              d.PageViews,
		ContactSubmits:         d.ContactSubmits,
		UniquePages:            d.UniquePages,
		UniqueElements:         d.UniqueElements,
		AvgScrollDepth:         d.AvgScrollDepth,
		Timeline:               toDayCounts(d.Timeline),
		TopEventTypes:          toValueCounts(d.TopEventTypes),
		TopElements:            toValueCounts(d.TopElements),
		TopPages:               toValueCounts(d.TopPages),
		GeneratedAt:            d.GeneratedAt,
		RefreshIntervalSeconds: int64(d.RefreshInterval / time.Second),
		Degraded:               d.Degraded,
	}
}
