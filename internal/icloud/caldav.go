package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"voicecal/internal/booking"
	"voicecal/internal/models"
)

const (
	iCloudCalDAVEndpoint = "https://caldav.icloud.com/"
)

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "voicecal/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVClient implements booking.Service against an iCloud calendar over
// CalDAV. The target calendar is chosen by name at construction time, so the
// calendarID argument of the Service methods is ignored here.
//
// CalDAV servers return recurring events as a master VEVENT; time-bounded
// listings expand those into individual occurrences locally to match the
// expansion other providers perform server-side.
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	calendarPath string
	username     string
}

var _ booking.Service = (*CalDAVClient)(nil)

// NewClient creates and initializes a new CalDAVClient for iCloud.
func NewClient(logger *slog.Logger, username, password, calendarName string) (*CalDAVClient, error) {
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, iCloudCalDAVEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, iCloudCalDAVEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		username:     username,
	}

	logger.Info("Finding iCloud calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(context.Background(), calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Successfully found iCloud calendar", "path", calendarPath)

	return c, nil
}

// Insert creates a new event object on the CalDAV server.
func (c *CalDAVClient) Insert(ctx context.Context, _ string, req *models.EventRequest) (*models.Event, error) {
	uid := uuid.New().String()
	c.logger.Debug("Creating event on iCloud", "summary", req.Summary, "uid", uid)

	cal := newCalendar(newVEvent(uid, req.Summary, req.Description, req.Start, req.End, req.Attendees))
	eventPath := path.Join(c.calendarPath, fmt.Sprintf("%s.ics", uid))

	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	defer writer.Close()

	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}

	c.logger.Info("Successfully created event on iCloud", "summary", req.Summary)
	return &models.Event{
		ID:          eventPath,
		Summary:     req.Summary,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		Status:      "confirmed",
		Attendees:   req.Attendees,
	}, nil
}

// List queries the calendar for VEVENTs, optionally limited to a time range.
// A free-text query is matched locally against event summaries, mirroring
// the broad substring search other providers offer server-side.
func (c *CalDAVClient) List(ctx context.Context, _ string, q booking.ListQuery) ([]*models.Event, error) {
	eventFilter := caldav.CompFilter{Name: ical.CompEvent}
	if !q.TimeMin.IsZero() {
		eventFilter.Start = q.TimeMin.Anchor()
	}
	if !q.TimeMax.IsZero() {
		eventFilter.End = q.TimeMax.Anchor()
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{Name: ical.CompEvent, AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{eventFilter},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("caldav query failed: %w", err)
	}

	var events []*models.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, child := range obj.Data.Children {
			if child.Name != ical.CompEvent {
				continue
			}
			ev := fromVEvent(obj.Path, child)
			if q.Text != "" && !strings.Contains(strings.ToLower(ev.Summary), strings.ToLower(q.Text)) {
				continue
			}
			if !q.TimeMin.IsZero() && !q.TimeMax.IsZero() {
				events = append(events, c.expandOccurrences(ev, child, q.TimeMin.Anchor(), q.TimeMax.Anchor())...)
			} else {
				events = append(events, ev)
			}
		}
	}
	c.logger.Debug("Fetched events from iCloud", "count", len(events))
	return events, nil
}

// Patch rewrites only the start and end of an existing event object and
// uploads it back. CalDAV has no partial update, so the stored object is
// fetched, modified and re-put under the same path.
func (c *CalDAVClient) Patch(ctx context.Context, _ string, eventID string, start, end models.Instant) (*models.Event, error) {
	obj, err := c.caldavClient.GetCalendarObject(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event for update: %w", err)
	}
	if obj.Data == nil {
		return nil, fmt.Errorf("event object %s has no calendar data", eventID)
	}

	var target *ical.Component
	for _, child := range obj.Data.Children {
		if child.Name == ical.CompEvent {
			target = child
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("event object %s contains no VEVENT", eventID)
	}

	setInstantProp(target.Props, ical.PropDateTimeStart, start)
	setInstantProp(target.Props, ical.PropDateTimeEnd, end)
	target.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	if _, err := c.caldavClient.PutCalendarObject(ctx, eventID, obj.Data); err != nil {
		return nil, fmt.Errorf("failed to upload updated event: %w", err)
	}

	c.logger.Info("Successfully rescheduled event on iCloud", "path", eventID)
	return fromVEvent(eventID, target), nil
}

// Delete removes an event object from the server.
func (c *CalDAVClient) Delete(ctx context.Context, _ string, eventID string) error {
	if err := c.webdavClient.RemoveAll(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event on CalDAV server: %w", err)
	}
	c.logger.Info("Successfully deleted event on iCloud", "path", eventID)
	return nil
}

// newCalendar wraps a VEVENT in a VCALENDAR envelope.
func newCalendar(vevent *ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//voicecal//EN")
	cal.Children = append(cal.Children, vevent)
	return cal
}

// newVEvent builds a VEVENT component from a resolved event request.
func newVEvent(uid, summary, description string, start, end models.Instant, attendees []string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	setInstantProp(ve.Props, ical.PropDateTimeStart, start)
	setInstantProp(ve.Props, ical.PropDateTimeEnd, end)

	if description != "" {
		ve.Props.SetText(ical.PropDescription, description)
	}
	for _, attendee := range attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee))
		ve.Props.Add(p)
	}
	return ve
}

// setInstantProp writes an Instant as a DATE or DATE-TIME property. The two
// forms are never mixed within one event by the booking core, which always
// produces matching start/end kinds. A raw passthrough is written verbatim
// for the server to validate.
func setInstantProp(props ical.Props, name string, in models.Instant) {
	switch {
	case in.IsAllDay():
		p := ical.NewProp(name)
		p.Params.Set(ical.ParamValue, "DATE")
		p.Value = strings.ReplaceAll(in.Date(), "-", "")
		props.Set(p)
	case in.IsZoned():
		t, _ := in.Time()
		props.SetDateTime(name, t)
	default:
		p := ical.NewProp(name)
		p.Value = in.String()
		props.Set(p)
	}
}

// instantFromProp reads a DATE or DATE-TIME property back into an Instant.
func instantFromProp(prop *ical.Prop) models.Instant {
	if prop == nil {
		return models.Instant{}
	}
	if prop.Params.Get(ical.ParamValue) == "DATE" {
		if t, err := time.Parse("20060102", prop.Value); err == nil {
			return models.DateOnly(t.Format("2006-01-02"))
		}
		return models.RawInstant(prop.Value)
	}
	if t, err := prop.DateTime(time.UTC); err == nil {
		zone := prop.Params.Get("TZID")
		if zone == "" {
			zone = "UTC"
		}
		return models.Zoned(t, zone)
	}
	return models.RawInstant(prop.Value)
}

// fromVEvent converts a VEVENT component to the internal model. The object
// path doubles as the event identifier for later patch/delete calls.
func fromVEvent(objPath string, comp *ical.Component) *models.Event {
	ev := &models.Event{
		ID:     objPath,
		Status: "confirmed",
		Start:  instantFromProp(comp.Props.Get(ical.PropDateTimeStart)),
		End:    instantFromProp(comp.Props.Get(ical.PropDateTimeEnd)),
	}
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		ev.Summary = p.Value
	}
	if p := comp.Props.Get(ical.PropDescription); p != nil {
		ev.Description = p.Value
	}
	if p := comp.Props.Get(ical.PropStatus); p != nil {
		ev.Status = strings.ToLower(p.Value)
	}
	for _, p := range comp.Props.Values(ical.PropAttendee) {
		ev.Attendees = append(ev.Attendees, strings.TrimPrefix(p.Value, "mailto:"))
	}
	return ev
}

// findCalendar discovers the user's calendars and returns the path for the
// one with the matching name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
