package booking

import (
	"context"

	"voicecal/internal/models"
)

// ListQuery narrows a calendar listing. A zero TimeMin/TimeMax leaves the
// range unbounded; Text requests a broad free-text search on the service
// side. Recurring events are always expanded into individual occurrences.
type ListQuery struct {
	TimeMin models.Instant
	TimeMax models.Instant
	Text    string
}

// Service is the remote calendar boundary. Implementations perform
// authenticated calls against a single calendar provider and hold no state
// beyond their client handle, so one instance may serve concurrent requests.
type Service interface {
	// Insert creates a new event and returns it as stored by the service,
	// notifying attendees.
	Insert(ctx context.Context, calendarID string, req *models.EventRequest) (*models.Event, error)
	// List returns events matching the query.
	List(ctx context.Context, calendarID string, q ListQuery) ([]*models.Event, error)
	// Patch updates only the start and end of an existing event, notifying
	// attendees.
	Patch(ctx context.Context, calendarID, eventID string, start, end models.Instant) (*models.Event, error)
	// Delete removes an event, notifying attendees. The service returns no
	// body on deletion.
	Delete(ctx context.Context, calendarID, eventID string) error
}
