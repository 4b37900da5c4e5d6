package domain

import (
	"slices"
	"time"

	events "site-analytics-service/internal/events/core/domain"
)

// Field is an event attribute that can be grouped or counted by value.
type Field string

const (
	FieldElement   Field = "element"
	FieldPage      Field = "page"
	FieldEventType Field = "event_type"
	FieldSessionID Field = "session_id"
)

var Fields = []Field{FieldElement, FieldPage, FieldEventType, FieldSessionID}

func (f Field) Valid() bool {
	return slices.Contains(Fields, f)
}

// Value returns the attribute of e named by f, or "" for unknown fields.
func (f Field) Value(e events.Event) string {
	switch f {
	case FieldElement:
		return e.Element
	case FieldPage:
		return e.Page
	case FieldEventType:
		return e.EventType
	case FieldSessionID:
		return e.SessionID
	}
	return ""
}

type ValueCount struct {
	Value string
	Count int64
}

type DayCount struct {
	Date  string // YYYY-MM-DD in the configured location
	Count int64
}

// Dashboard is every owner-facing metric computed from a single snapshot.
type Dashboard struct {
	TotalEvents    int64
	PageViews      int64
	ContactSubmits int64
	UniquePages    int64
	UniqueElements int64

	Timeline       []DayCount
	TopEventTypes  []ValueCount
	TopElements    []ValueCount
	TopPages       []ValueCount
	AvgScrollDepth float64

	GeneratedAt     time.Time
	RefreshInterval time.Duration
	// Degraded is set when the store could not be read and zeros were substituted.
	Degraded bool
}
