package domain

import "slices"

type Order int

const (
	OrderNewestFirst Order = iota
	OrderOldestFirst
)

// EventFilter narrows a read. The zero value matches every event.
type EventFilter struct {
	EventTypes      []string // equality when len==1, set membership otherwise
	NonEmptyElement bool
	NonEmptyPage    bool
}

func (f EventFilter) Matches(e Event) bool {
	if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, e.EventType) {
		return false
	}
	if f.NonEmptyElement && e.Element == "" {
		return false
	}
	if f.NonEmptyPage && e.Page == "" {
		return false
	}
	return true
}

type EventQuery struct {
	Filter EventFilter
	Order  Order
	Limit  int // <= 0: no limit
}
