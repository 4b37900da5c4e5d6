// Package memory is an in-process event store used by the memory driver
// and by tests that do not need SQL.
package memory

import (
	"context"
	"iter"
	"slices"
	"sync"

	"site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/events/core/ports"
)

type EventRepository struct {
	mu     sync.RWMutex
	events []domain.Event
}

var _ ports.EventStorePort = (*EventRepository)(nil)

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) InsertEvent(ctx context.Context, e *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := *e
	stored.AdditionalData = cloneAttributes(e.AdditionalData)

	r.mu.Lock()
	r.events = append(r.events, stored)
	r.mu.Unlock()
	return nil
}

// QueryEvents takes a snapshot of matching events when iteration starts.
// Ties on timestamp keep insertion order, matching the SQL store's seq column.
func (r *EventRepository) QueryEvents(ctx context.Context, q domain.EventQuery) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.Event{}, err)
			return
		}

		r.mu.RLock()
		matched := make([]domain.Event, 0, len(r.events))
		for _, e := range r.events {
			if q.Filter.Matches(e) {
				matched = append(matched, e)
			}
		}
		r.mu.RUnlock()

		slices.SortStableFunc(matched, func(a, b domain.Event) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
		if q.Order == domain.OrderNewestFirst {
			slices.Reverse(matched)
		}
		if q.Limit > 0 && len(matched) > q.Limit {
			matched = matched[:q.Limit]
		}

		for _, e := range matched {
			e.AdditionalData = cloneAttributes(e.AdditionalData)
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Len reports how many events are stored.
func (r *EventRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

func cloneAttributes(in domain.Attributes) domain.Attributes {
	out := make(domain.Attributes, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
