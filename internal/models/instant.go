package models

import (
	"encoding/json"
	"time"
)

// InstantKind discriminates the variants of an Instant.
type InstantKind int

const (
	// KindRaw marks an opaque passthrough value that could not be parsed.
	// The remote service's own validation surfaces the error.
	KindRaw InstantKind = iota
	// KindDateOnly marks a calendar day with no time component (all-day).
	KindDateOnly
	// KindZoned marks a timezone-qualified point in time.
	KindZoned
)

const dateLayout = "2006-01-02"

// Instant is a normalized point on the calendar: a date-only marker for
// all-day events, a timezone-qualified point in time, or a raw passthrough.
// A zoned instant always carries explicit timezone information; no naive
// timestamp is ever sent downstream.
type Instant struct {
	kind InstantKind
	date string    // KindDateOnly, YYYY-MM-DD
	t    time.Time // KindZoned
	zone string    // KindZoned, IANA zone name sent alongside the timestamp
	raw  string    // KindRaw
}

// DateOnly returns an all-day Instant for a YYYY-MM-DD value.
func DateOnly(date string) Instant {
	return Instant{kind: KindDateOnly, date: date}
}

// Zoned returns a timed Instant carrying the given IANA zone name.
func Zoned(t time.Time, zone string) Instant {
	return Instant{kind: KindZoned, t: t, zone: zone}
}

// RawInstant returns a passthrough Instant for a value that defied parsing.
func RawInstant(raw string) Instant {
	return Instant{kind: KindRaw, raw: raw}
}

// Kind reports which variant this Instant holds.
func (in Instant) Kind() InstantKind { return in.kind }

// IsZero reports whether the Instant holds no value at all.
func (in Instant) IsZero() bool {
	return in.kind == KindRaw && in.raw == ""
}

// IsAllDay reports whether the Instant is a date-only marker.
func (in Instant) IsAllDay() bool { return in.kind == KindDateOnly }

// IsZoned reports whether the Instant is a timezone-qualified timestamp.
func (in Instant) IsZoned() bool { return in.kind == KindZoned }

// Date returns the calendar day of an all-day Instant, or "" for other kinds.
func (in Instant) Date() string { return in.date }

// Time returns the timestamp of a zoned Instant. The second return value is
// false for date-only and raw Instants.
func (in Instant) Time() (time.Time, bool) {
	return in.t, in.kind == KindZoned
}

// Zone returns the IANA zone name accompanying a zoned Instant.
func (in Instant) Zone() string { return in.zone }

// String renders the Instant in its wire form: RFC 3339 for timed instants,
// YYYY-MM-DD for all-day markers, and the original input for passthroughs.
func (in Instant) String() string {
	switch in.kind {
	case KindZoned:
		return in.t.Format(time.RFC3339)
	case KindDateOnly:
		return in.date
	default:
		return in.raw
	}
}

// Anchor places the Instant on a single timeline for comparisons. All-day
// markers anchor at midnight UTC of their date; raw passthroughs anchor at
// the zero time.
func (in Instant) Anchor() time.Time {
	switch in.kind {
	case KindZoned:
		return in.t
	case KindDateOnly:
		t, err := time.Parse(dateLayout, in.date)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// Before reports whether in is strictly earlier than other on the shared
// timeline.
func (in Instant) Before(other Instant) bool {
	return in.Anchor().Before(other.Anchor())
}

// MarshalJSON renders the two wire shapes the calendar service accepts:
// {"date": ...} for all-day markers and {"dateTime": ..., "timeZone": ...}
// for timed instants. The two forms are never mixed. Raw passthroughs render
// as a dateTime and are left for the service to reject.
func (in Instant) MarshalJSON() ([]byte, error) {
	switch in.kind {
	case KindDateOnly:
		return json.Marshal(struct {
			Date string `json:"date"`
		}{in.date})
	case KindZoned:
		return json.Marshal(struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone,omitempty"`
		}{in.t.Format(time.RFC3339), in.zone})
	default:
		return json.Marshal(struct {
			DateTime string `json:"dateTime,omitempty"`
		}{in.raw})
	}
}
