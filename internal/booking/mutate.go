package booking

import (
	"context"
	"fmt"

	"voicecal/internal/models"
)

// Move reschedules the event matching title to the new start and end,
// issuing a partial update limited to those two fields and notifying
// attendees. Returns ErrNotFound before any mutation call when no event
// matches.
func (b *Booker) Move(ctx context.Context, title, newStart, newEnd string) (*models.Event, error) {
	ev, err := b.Locate(ctx, title)
	if err != nil {
		return nil, err
	}

	start := b.Normalize(newStart)
	end := b.Normalize(newEnd)

	updated, err := b.service.Patch(ctx, b.calendarID, ev.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to move event %q: %w", title, err)
	}
	b.logger.Info("Event moved.", "id", updated.ID, "summary", updated.Summary, "start", start, "end", end)
	return updated, nil
}

// Cancel deletes the event matching title, notifying attendees, and returns
// a confirmation synthesized from the located event's id. Returns
// ErrNotFound before any deletion call when no event matches.
func (b *Booker) Cancel(ctx context.Context, title string) (*models.Confirmation, error) {
	ev, err := b.Locate(ctx, title)
	if err != nil {
		return nil, err
	}

	if err := b.service.Delete(ctx, b.calendarID, ev.ID); err != nil {
		return nil, fmt.Errorf("failed to cancel event %q: %w", title, err)
	}
	b.logger.Info("Event cancelled.", "id", ev.ID, "summary", ev.Summary)
	return &models.Confirmation{ID: ev.ID, Status: "cancelled"}, nil
}
