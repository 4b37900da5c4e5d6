package ports

import (
	"context"
	"iter"

	"site-analytics-service/internal/events/core/domain"
)

type EventRepositoryPort interface {
	// InsertEvent appends one event. Events are never updated or deleted.
	InsertEvent(ctx context.Context, e *domain.Event) error
}

type EventReaderPort interface {
	// QueryEvents returns a lazy sequence. Every range over it runs the query
	// again against the current state; nothing is held between loops.
	// A storage failure is yielded once as (zero Event, err) and ends the sequence.
	QueryEvents(ctx context.Context, q domain.EventQuery) iter.Seq2[domain.Event, error]
}

type EventStorePort interface {
	EventRepositoryPort
	EventReaderPort
}
