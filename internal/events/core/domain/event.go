package domain

import "time"

// Event types emitted by the site instrumentation.
const (
	EventTypePageView          = "page_view"
	EventTypeCTAClick          = "cta_click"
	EventTypeScrollDepth       = "scroll_depth"
	EventTypeContactSubmit     = "contact_submit"
	EventTypeContactFormSubmit = "contact_form_submit"
)

// ContactSubmitEventTypes lists both spellings clients have used for a
// contact form submission. Counting contacts must use the whole set.
// TODO: drop contact_form_submit once the site script only emits contact_submit.
var ContactSubmitEventTypes = []string{EventTypeContactSubmit, EventTypeContactFormSubmit}

// ScrollDepthKey is the additional_data key of scroll_depth events.
const ScrollDepthKey = "depth"

type Event struct {
	ID             string
	EventType      string
	Element        string
	Page           string
	Timestamp      time.Time
	UserAgent      string
	SessionID      string
	AdditionalData Attributes
}
