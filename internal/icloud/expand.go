package icloud

import (
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"voicecal/internal/models"
)

// Cap on occurrences generated for a single recurring event, so a
// rule without COUNT or UNTIL cannot blow up a query.
const maxOccurrencesPerEvent = 1000

// expandOccurrences turns a recurring VEVENT into concrete single events
// within [rangeStart, rangeEnd], mirroring the singleEvents expansion other
// providers perform server-side. EXDATE exceptions are honored. An event
// without an RRULE, or one whose rule cannot be parsed, is returned as its
// single master occurrence.
func (c *CalDAVClient) expandOccurrences(base *models.Event, comp *ical.Component, rangeStart, rangeEnd time.Time) []*models.Event {
	prop := comp.Props.Get(ical.PropRecurrenceRule)
	if prop == nil {
		return []*models.Event{base}
	}

	r, err := rrule.StrToRRule(prop.Value)
	if err != nil {
		c.logger.Warn("Failed to parse RRULE, keeping master occurrence.", "rrule", prop.Value, "error", err)
		return []*models.Event{base}
	}

	start := base.Start.Anchor()
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range comp.Props.Values(ical.PropExceptionDates) {
		if t, err := ex.DateTime(start.Location()); err == nil {
			set.ExDate(t.In(start.Location()))
		}
	}

	duration := base.End.Anchor().Sub(start)
	occTimes := set.Between(rangeStart.In(start.Location()), rangeEnd.In(start.Location()), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		occTimes = occTimes[:maxOccurrencesPerEvent]
	}

	out := make([]*models.Event, 0, len(occTimes))
	for _, occStart := range occTimes {
		occ := *base
		if base.Start.IsAllDay() {
			occ.Start = models.DateOnly(occStart.Format("2006-01-02"))
			occ.End = models.DateOnly(occStart.Add(duration).Format("2006-01-02"))
		} else {
			occ.Start = models.Zoned(occStart, base.Start.Zone())
			occ.End = models.Zoned(occStart.Add(duration), base.End.Zone())
		}
		out = append(out, &occ)
	}
	return out
}
