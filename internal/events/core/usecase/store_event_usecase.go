package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/events/core/ports"

	"github.com/google/uuid"
)

var ErrInvalidEvent = errors.New("invalid event")

// Column limits of the events table.
const (
	MinEventTypeLength = 2
	MaxEventTypeLength = 100
	MaxElementLength   = 255
	MaxPageLength      = 255
	MaxSessionIDLength = 128
)

// ValidationError names the payload field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEvent
}

type StoreEventUseCase struct {
	repo  ports.EventRepositoryPort
	now   func() time.Time
	newID func() string
}

func NewStoreEventUseCase(repo ports.EventRepositoryPort) *StoreEventUseCase {
	return &StoreEventUseCase{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock replaces the ingestion clock. Used by tests.
func (uc *StoreEventUseCase) WithClock(now func() time.Time) *StoreEventUseCase {
	uc.now = now
	return uc
}

type StoreEventInput struct {
	EventType string
	Element   string
	Page      string
	SessionID string
	// UserAgent is nil when the payload did not carry the key.
	UserAgent      *string
	AdditionalData map[string]any

	// RequestUserAgent is the User-Agent header of the ingesting request.
	RequestUserAgent string
}

// Execute validates and persists one event. The stored timestamp is always
// the ingestion time. Text fields are stored trimmed; a blank element or page
// is stored as "".
func (uc *StoreEventUseCase) Execute(ctx context.Context, in StoreEventInput) (*domain.Event, error) {
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	e := uc.buildEvent(in)

	if err := uc.repo.InsertEvent(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (uc *StoreEventUseCase) buildEvent(in StoreEventInput) *domain.Event {
	userAgent := in.RequestUserAgent
	if in.UserAgent != nil {
		userAgent = *in.UserAgent
	}

	return &domain.Event{
		ID:             uc.newID(),
		EventType:      strings.TrimSpace(in.EventType),
		Element:        strings.TrimSpace(in.Element),
		Page:           strings.TrimSpace(in.Page),
		Timestamp:      uc.now().UTC().Truncate(time.Microsecond),
		UserAgent:      strings.TrimSpace(userAgent),
		SessionID:      strings.TrimSpace(in.SessionID),
		AdditionalData: domain.Attributes(in.AdditionalData).OrEmpty(),
	}
}

type BulkCreateEventsInput struct {
	Events []StoreEventInput
}

type BulkCreateEventsResult struct {
	Created int
}

// BulkCreateEvents validates every item before storing any of them.
func (uc *StoreEventUseCase) BulkCreateEvents(ctx context.Context, in BulkCreateEventsInput) (BulkCreateEventsResult, error) {
	var res BulkCreateEventsResult

	for i, ev := range in.Events {
		if err := uc.validateInput(ev); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return res, &ValidationError{
					Field:   fmt.Sprintf("events[%d].%s", i, ve.Field),
					Message: ve.Message,
				}
			}
			return res, err
		}
	}

	for _, ev := range in.Events {
		if _, err := uc.Execute(ctx, ev); err != nil {
			return res, err
		}
		res.Created++
	}

	return res, nil
}

func (uc *StoreEventUseCase) validateInput(in StoreEventInput) error {
	eventType := strings.TrimSpace(in.EventType)

	switch n := utf8.RuneCountInString(eventType); {
	case n < MinEventTypeLength:
		return &ValidationError{Field: "event_type", Message: "event_type must contain at least 2 characters"}
	case n > MaxEventTypeLength:
		return &ValidationError{Field: "event_type", Message: fmt.Sprintf("event_type must be at most %d characters", MaxEventTypeLength)}
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"element", in.Element, MaxElementLength},
		{"page", in.Page, MaxPageLength},
		{"session_id", in.SessionID, MaxSessionIDLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(strings.TrimSpace(l.value)) > l.max {
			return &ValidationError{Field: l.field, Message: fmt.Sprintf("%s must be at most %d characters", l.field, l.max)}
		}
	}

	return nil
}
