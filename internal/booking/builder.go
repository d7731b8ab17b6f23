package booking

import (
	"log/slog"
	"strings"
	"time"

	"voicecal/internal/models"
)

// defaultSummary is used when the intent carries no title.
const defaultSummary = "Untitled Event"

// Builder assembles complete event payloads from partial intent records.
// It is pure data transformation; no network call occurs here.
type Builder struct {
	logger      *slog.Logger
	normalizer  *Normalizer
	defaultZone *time.Location
}

// NewBuilder creates a Builder that resolves naive timestamps in defaultZone
// unless the intent names its own zone.
func NewBuilder(logger *slog.Logger, defaultZone *time.Location) *Builder {
	return &Builder{
		logger:      logger,
		normalizer:  NewNormalizer(logger),
		defaultZone: defaultZone,
	}
}

// Build derives a validated EventRequest from intent. It fails with a
// ValidationError when start is absent, when both end and duration are
// absent, or when a duration is given for an all-day start.
func (b *Builder) Build(intent *models.IntentRecord) (*models.EventRequest, error) {
	if intent.Start == "" {
		return nil, &ValidationError{Reason: "missing start time"}
	}

	zone := b.defaultZone
	if intent.Timezone != "" {
		loc, err := time.LoadLocation(intent.Timezone)
		if err != nil {
			b.logger.Warn("Unknown timezone in intent, using default.", "timezone", intent.Timezone, "default", b.defaultZone)
		} else {
			zone = loc
		}
	}

	summary := intent.Title
	if summary == "" {
		summary = defaultSummary
	}

	start := b.normalizer.Normalize(intent.Start, zone)

	var end models.Instant
	switch {
	case intent.End != "":
		end = b.normalizer.Normalize(intent.End, zone)
	case intent.DurationMinutes > 0:
		t, ok := start.Time()
		if !ok {
			// An all-day marker has no time of day to add minutes to.
			return nil, &ValidationError{Reason: "duration requires a timed start, not an all-day date"}
		}
		end = models.Zoned(t.Add(time.Duration(intent.DurationMinutes)*time.Minute), start.Zone())
	default:
		return nil, &ValidationError{Reason: "missing end time or duration"}
	}

	// The wire format never mixes the all-day and timed forms in one event.
	if (start.IsAllDay() && end.IsZoned()) || (start.IsZoned() && end.IsAllDay()) {
		return nil, &ValidationError{Reason: "start and end must both be all-day dates or both be timed"}
	}
	// Raw passthroughs have no position on the timeline; they are forwarded
	// for the remote service to validate rather than failing here.
	if comparableKinds(start, end) && end.Before(start) {
		return nil, &ValidationError{Reason: "end time precedes start time"}
	}

	return &models.EventRequest{
		Summary:     summary,
		Description: intent.Description,
		Start:       start,
		End:         end,
		Attendees:   cleanAttendees(intent.Attendees),
	}, nil
}

// comparableKinds reports whether two instants share a timeline.
func comparableKinds(a, b models.Instant) bool {
	return (a.IsZoned() && b.IsZoned()) || (a.IsAllDay() && b.IsAllDay())
}

// cleanAttendees deduplicates attendees and drops entries that do not look
// like email addresses. Malformed entries are never fatal.
func cleanAttendees(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, a := range in {
		if !strings.Contains(a, "@") {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
