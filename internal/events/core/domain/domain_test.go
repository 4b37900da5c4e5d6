package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributes_Float(t *testing.T) {
	attrs := Attributes{
		"float":  0.75,
		"int":    3,
		"int64":  int64(4),
		"number": json.Number("0.5"),
		"bad":    json.Number("abc"),
		"string": "0.9",
		"bool":   true,
		"nil":    nil,
		"nan":    math.NaN(),
	}

	tests := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"float", 0.75, true},
		{"int", 3, true},
		{"int64", 4, true},
		{"number", 0.5, true},
		{"bad", 0, false},
		{"string", 0, false},
		{"bool", 0, false},
		{"nil", 0, false},
		{"nan", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := attrs.Float(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttributes_OrEmpty(t *testing.T) {
	attrs := Attributes{"variant": "b", "n": 1.0}

	var nilAttrs Attributes
	assert.NotNil(t, nilAttrs.OrEmpty())
	assert.Empty(t, nilAttrs.OrEmpty())
	assert.Equal(t, attrs, attrs.OrEmpty())
}

func TestEventFilter_Matches(t *testing.T) {
	click := Event{EventType: EventTypeCTAClick, Element: "hero_contact", Page: "/"}
	view := Event{EventType: EventTypePageView, Page: "/services"}
	contact := Event{EventType: EventTypeContactFormSubmit}

	tests := []struct {
		name   string
		filter EventFilter
		event  Event
		want   bool
	}{
		{"zero filter matches all", EventFilter{}, contact, true},
		{"type equality", EventFilter{EventTypes: []string{EventTypePageView}}, view, true},
		{"type mismatch", EventFilter{EventTypes: []string{EventTypePageView}}, click, false},
		{"alias set membership", EventFilter{EventTypes: ContactSubmitEventTypes}, contact, true},
		{"non-empty element", EventFilter{NonEmptyElement: true}, view, false},
		{"non-empty element ok", EventFilter{NonEmptyElement: true}, click, true},
		{"non-empty page", EventFilter{NonEmptyPage: true}, contact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.event))
		})
	}
}
