package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/events/core/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type EventRepository struct {
	db       DB
	bindType int
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{
		db:       db,
		bindType: sqlx.BindType(db.DriverName()),
	}
}

var _ ports.EventStorePort = (*EventRepository)(nil)

// SQL templates use '?' placeholders and are rebound per driver.
const insertEventSQL = `
INSERT INTO events (
    id,
    event_type,
    element,
    page,
    timestamp,
    user_agent,
    session_id,
    additional_data
) VALUES (
    ?, ?, ?, ?,
    ?, ?, ?, ?
)`

const selectEventsSQL = `
SELECT
    id,
    event_type,
    element,
    page,
    timestamp,
    user_agent,
    session_id,
    additional_data
FROM events`

func (r *EventRepository) InsertEvent(ctx context.Context, e *domain.Event) error {
	additionalJSON, err := json.Marshal(e.AdditionalData.OrEmpty())
	if err != nil {
		return fmt.Errorf("marshal additional_data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, sqlx.Rebind(r.bindType, insertEventSQL),
		e.ID,
		e.EventType,
		e.Element,
		e.Page,
		e.Timestamp.UTC(),
		e.UserAgent,
		e.SessionID,
		string(additionalJSON),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

func (r *EventRepository) QueryEvents(ctx context.Context, q domain.EventQuery) iter.Seq2[domain.Event, error] {
	return func(yield func(domain.Event, error) bool) {
		query, args, err := r.buildSelect(q)
		if err != nil {
			yield(domain.Event{}, err)
			return
		}

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(domain.Event{}, fmt.Errorf("query events: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				yield(domain.Event{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(domain.Event{}, fmt.Errorf("iterate events: %w", err))
		}
	}
}

func (r *EventRepository) buildSelect(q domain.EventQuery) (string, []any, error) {
	var (
		where     []string
		args      []any
		expandIns bool
	)

	switch types := q.Filter.EventTypes; {
	case len(types) == 1:
		where = append(where, "event_type = ?")
		args = append(args, types[0])
	case len(types) > 1 && r.bindType == sqlx.DOLLAR:
		where = append(where, "event_type = ANY(?)")
		args = append(args, pq.Array(types))
	case len(types) > 1:
		where = append(where, "event_type IN (?)")
		args = append(args, types)
		expandIns = true
	}

	if q.Filter.NonEmptyElement {
		where = append(where, "element <> ''")
	}
	if q.Filter.NonEmptyPage {
		where = append(where, "page <> ''")
	}

	var b strings.Builder
	b.WriteString(selectEventsSQL)
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	switch q.Order {
	case domain.OrderOldestFirst:
		b.WriteString("\nORDER BY timestamp ASC, seq ASC")
	default:
		b.WriteString("\nORDER BY timestamp DESC, seq DESC")
	}

	if q.Limit > 0 {
		b.WriteString("\nLIMIT ?")
		args = append(args, q.Limit)
	}

	query := b.String()
	if expandIns {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return "", nil, fmt.Errorf("expand event_type set: %w", err)
		}
	}

	return sqlx.Rebind(r.bindType, query), args, nil
}

func scanEvent(rows RowScanner) (domain.Event, error) {
	var (
		e              domain.Event
		ts             time.Time
		additionalJSON []byte
	)

	if err := rows.Scan(
		&e.ID,
		&e.EventType,
		&e.Element,
		&e.Page,
		&ts,
		&e.UserAgent,
		&e.SessionID,
		&additionalJSON,
	); err != nil {
		return domain.Event{}, fmt.Errorf("scan event: %w", err)
	}

	e.Timestamp = ts.UTC()
	e.AdditionalData = domain.Attributes{}
	if len(additionalJSON) > 0 {
		if err := json.Unmarshal(additionalJSON, &e.AdditionalData); err != nil {
			return domain.Event{}, fmt.Errorf("decode additional_data of event %s: %w", e.ID, err)
		}
		e.AdditionalData = e.AdditionalData.OrEmpty()
	}

	return e, nil
}
