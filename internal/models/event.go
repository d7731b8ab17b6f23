package models

// IntentRecord is the structured output of the upstream language-understanding
// step. Field names match the JSON the extraction service emits.
type IntentRecord struct {
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Start           string   `json:"start"`
	End             string   `json:"end,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Attendees       []string `json:"attendees,omitempty"`
	Timezone        string   `json:"timezone,omitempty"`
}

// EventRequest is a fully-resolved event payload, ready for submission to a
// calendar backend. It is constructed once per booking and not modified after
// validation.
type EventRequest struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Start       Instant  `json:"start"`
	End         Instant  `json:"end"`
	Attendees   []string `json:"attendees,omitempty"`
}

// Event represents a calendar event as returned by a calendar backend.
// This is an internal representation, independent of any specific provider.
// Events are owned by the remote service and never cached locally.
type Event struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Start       Instant  `json:"start"`
	End         Instant  `json:"end"`
	Status      string   `json:"status,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

// Window is a time range checked for overlapping events before booking.
type Window struct {
	Start Instant
	End   Instant
}

// Confirmation is the record returned after a cancellation. The calendar
// service returns no body on deletion, so this is synthesized locally from
// the located event.
type Confirmation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
