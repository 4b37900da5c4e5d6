package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/events/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type StoreEventUseCase interface {
	Execute(ctx context.Context, in usecase.StoreEventInput) (*domain.Event, error)
	BulkCreateEvents(ctx context.Context, in usecase.BulkCreateEventsInput) (usecase.BulkCreateEventsResult, error)
}

// IngestRecorder receives ingestion outcomes, e.g. for prometheus counters.
type IngestRecorder interface {
	EventIngested(eventType string)
	EventRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) EventIngested(string) {}
func (noopRecorder) EventRejected(string) {}

type EventHandler struct {
	storeUC  StoreEventUseCase
	log      logrus.FieldLogger
	recorder IngestRecorder
}

func NewEventHandler(storeUC StoreEventUseCase, log logrus.FieldLogger, recorder IngestRecorder) *EventHandler {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &EventHandler{storeUC: storeUC, log: log, recorder: recorder}
}

// TrackEvent godoc
// @Summary Track an interaction event
// @Description Stores a single event. The timestamp is assigned by the server and the
// @Description User-Agent header is used when the payload has no user_agent key.
// @Tags Events
// @Accept json
// @Produce json
// @Param request body TrackEventRequest true "Event payload"
// @Success 201 {object} TrackEventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/track [post]
func (h *EventHandler) TrackEvent(c *fiber.Ctx) error {
	var req TrackEventRequest
	if err := decodeBody(c, &req); err != nil {
		return h.writeDecodeError(c, err)
	}

	input, err := req.toInput(c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return h.writeError(c, err)
	}

	e, err := h.storeUC.Execute(c.UserContext(), input)
	if err != nil {
		return h.writeError(c, err)
	}

	h.recorder.EventIngested(e.EventType)
	return c.Status(http.StatusCreated).JSON(TrackEventResponse{Status: "tracked"})
}

// BulkTrackEvents godoc
// @Summary Bulk track events
// @Description Validates every event first, then stores them individually
// @Tags Events
// @Accept json
// @Produce json
// @Param request body BulkTrackEventsRequest true "Bulk event payload"
// @Success 201 {object} BulkTrackEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/track/bulk [post]
func (h *EventHandler) BulkTrackEvents(c *fiber.Ctx) error {
	var req BulkTrackEventsRequest
	if err := decodeBody(c, &req); err != nil {
		return h.writeDecodeError(c, err)
	}

	if len(req.Events) == 0 {
		h.recorder.EventRejected("events_list_required")
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "events_list_required"})
	}

	requestUA := c.Get(fiber.HeaderUserAgent)
	inputs := make([]usecase.StoreEventInput, len(req.Events))
	for i, e := range req.Events {
		in, err := e.toInput(requestUA)
		if err != nil {
			var ve *usecase.ValidationError
			if errors.As(err, &ve) {
				err = &usecase.ValidationError{Field: fmt.Sprintf("events[%d].%s", i, ve.Field), Message: ve.Message}
			}
			return h.writeError(c, err)
		}
		inputs[i] = in
	}

	result, err := h.storeUC.BulkCreateEvents(c.UserContext(), usecase.BulkCreateEventsInput{Events: inputs})
	if err != nil {
		return h.writeError(c, err)
	}

	for _, in := range inputs[:result.Created] {
		h.recorder.EventIngested(in.EventType)
	}
	return c.Status(http.StatusCreated).JSON(BulkTrackEventsResponse{Created: result.Created})
}

func (h *EventHandler) writeError(c *fiber.Ctx, err error) error {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		h.recorder.EventRejected("invalid_event")
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_event",
			Message: ve.Error(),
			Fields:  map[string]string{ve.Field: ve.Message},
		})
	case errors.Is(err, usecase.ErrInvalidEvent):
		h.recorder.EventRejected("invalid_event")
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_event",
			Message: err.Error(),
		})
	default:
		h.recorder.EventRejected("storage")
		h.log.WithError(err).Error("failed to store event")
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func (h *EventHandler) writeDecodeError(c *fiber.Ctx, err error) error {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return h.writeError(c, err)
	}
	h.recorder.EventRejected("invalid_json")
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
}

// decodeBody ignores Content-Type: beacons are often sent as text/plain.
// A well-formed body with a wrongly typed field yields a *usecase.ValidationError
// naming that field.
func decodeBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return errors.New("empty body")
	}

	err := c.App().Config().JSONDecoder(body, out)
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return &usecase.ValidationError{
			Field:   ute.Field,
			Message: fmt.Sprintf("%s must be %s", ute.Field, jsonKind(ute.Type)),
		}
	}
	return err
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	default:
		return "a " + t.String()
	}
}
