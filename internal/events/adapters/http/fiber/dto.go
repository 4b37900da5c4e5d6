package fiber

import (
	"bytes"
	"encoding/json"

	"site-analytics-service/internal/events/core/usecase"
)

// TrackEventRequest represents a tracked interaction
// @Description Event tracking payload. Timestamp is always assigned by the server.
type TrackEventRequest struct {
	EventType string `json:"event_type" example:"cta_click"`
	Element   string `json:"element" example:"hero_contact"`
	Page      string `json:"page" example:"/"`
	SessionID string `json:"session_id" example:"1712345678-k2j4h5"`
	// UserAgent overrides the request header when present, even if empty.
	UserAgent      *string         `json:"user_agent,omitempty"`
	AdditionalData json.RawMessage `json:"additional_data,omitempty" swaggertype:"object"`
}

func (r TrackEventRequest) toInput(requestUserAgent string) (usecase.StoreEventInput, error) {
	data, err := decodeAdditionalData(r.AdditionalData)
	if err != nil {
		return usecase.StoreEventInput{}, err
	}

	return usecase.StoreEventInput{
		EventType:        r.EventType,
		Element:          r.Element,
		Page:             r.Page,
		SessionID:        r.SessionID,
		UserAgent:        r.UserAgent,
		AdditionalData:   data,
		RequestUserAgent: requestUserAgent,
	}, nil
}

// decodeAdditionalData accepts a JSON object or null/absent.
func decodeAdditionalData(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var data map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &data) != nil {
		return nil, &usecase.ValidationError{
			Field:   "additional_data",
			Message: "additional_data must be a JSON object",
		}
	}
	return data, nil
}

type TrackEventResponse struct {
	Status string `json:"status" example:"tracked"`
}

type BulkTrackEventsRequest struct {
	Events []TrackEventRequest `json:"events"`
}

type BulkTrackEventsResponse struct {
	Created int `json:"created" example:"3"`
}

type ErrorResponse struct {
	Error   string            `json:"error" example:"invalid_event"`
	Message string            `json:"message,omitempty" example:"event_type: event_type must contain at least 2 characters"`
	Fields  map[string]string `json:"fields,omitempty"`
}
