package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"voicecal/internal/models"
)

// Locate resolves a human-readable title to a concrete existing event. A
// broad free-text search widens recall; candidates are then filtered to an
// exact case-insensitive summary match, so "Team Sync" never matches
// "Team Sync Weekly". Returns ErrNotFound when nothing matches.
//
// When several events share the title, the soonest upcoming occurrence wins;
// if every match is in the past, the most recent one wins. Service result
// order is never relied on.
func (b *Booker) Locate(ctx context.Context, title string) (*models.Event, error) {
	events, err := b.service.List(ctx, b.calendarID, ListQuery{Text: title})
	if err != nil {
		return nil, fmt.Errorf("event search failed: %w", err)
	}

	var matches []*models.Event
	for _, ev := range events {
		if strings.EqualFold(ev.Summary, title) {
			matches = append(matches, ev)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start.Before(matches[j].Start)
	})
	now := time.Now()
	for _, ev := range matches {
		if !ev.Start.Anchor().Before(now) {
			return ev, nil
		}
	}
	return matches[len(matches)-1], nil
}
