package booking

import (
	"context"
	"fmt"
	"sort"

	"voicecal/internal/models"
)

// FindConflicts returns the events overlapping window, ordered by start time
// ascending, with recurring events expanded into individual occurrences.
// Conflict detection is advisory: on a remote failure the returned slice is
// empty and the error describes the failed check, letting callers distinguish
// "no conflicts" from "check failed" without ever blocking a booking.
func (b *Booker) FindConflicts(ctx context.Context, window models.Window) ([]*models.Event, error) {
	events, err := b.service.List(ctx, b.calendarID, ListQuery{
		TimeMin: window.Start,
		TimeMax: window.End,
	})
	if err != nil {
		b.logger.Warn("Conflict check failed.", "error", err)
		return nil, fmt.Errorf("conflict query failed: %w", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}
