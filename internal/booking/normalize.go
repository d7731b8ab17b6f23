package booking

import (
	"log/slog"
	"strings"
	"time"

	"voicecal/internal/models"
)

// Layouts tried, in order, when a value matches none of the recognized
// shapes. All are interpreted in the supplied default zone.
var recoveryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalizer converts heterogeneous date/time strings into Instants.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer that logs parse warnings to logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts a loosely formatted date/time string into an Instant,
// attaching zone to naive timestamps. It prefers best-effort recovery over
// hard failure: a value that defies parsing degrades to a raw passthrough
// (logged at warn) so the remote service's own validation can surface the
// error. An empty value returns an empty Instant; the caller validates
// presence separately.
func (n *Normalizer) Normalize(raw string, zone *time.Location) models.Instant {
	if raw == "" {
		return models.RawInstant("")
	}

	tIdx := strings.IndexByte(raw, 'T')
	if tIdx < 0 {
		// No time component at all: an all-day marker, passed through
		// unchanged. All-day events carry no timezone.
		if _, err := time.Parse("2006-01-02", raw); err == nil {
			return models.DateOnly(raw)
		}
		return n.recover(raw, zone)
	}

	clock := raw[tIdx+1:]
	if strings.HasSuffix(raw, "Z") || strings.ContainsAny(clock, "+-") {
		// Already carries an explicit offset or UTC marker: unambiguous,
		// never re-interpreted.
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return models.Zoned(t, zone.String())
		}
		return n.recover(raw, zone)
	}

	// A naive local timestamp: attach the default zone to make it
	// unambiguous.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, zone); err == nil {
		return models.Zoned(t, zone.String())
	}
	return n.recover(raw, zone)
}

// recover makes a last best-effort pass over known layouts before degrading
// to passthrough.
func (n *Normalizer) recover(raw string, zone *time.Location) models.Instant {
	for _, layout := range recoveryLayouts {
		if t, err := time.ParseInLocation(layout, raw, zone); err == nil {
			return models.Zoned(t, zone.String())
		}
	}
	n.logger.Warn("Could not parse date value, passing through unchanged.", "value", raw)
	return models.RawInstant(raw)
}
