package ports

import (
	"context"
	"iter"

	events "site-analytics-service/internal/events/core/domain"
)

// EventSourcePort is the read side of the event store. Both the SQL and the
// in-memory repositories satisfy it.
type EventSourcePort interface {
	QueryEvents(ctx context.Context, q events.EventQuery) iter.Seq2[events.Event, error]
}

// DegradationObserver is told whenever an aggregation fell back to zero data.
type DegradationObserver interface {
	AggregationDegraded(operation string)
}
