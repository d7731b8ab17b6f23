package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"voicecal/internal/booking"
	"voicecal/internal/models"
)

const (
	credentialsFile = "credentials.json"
	// All attendee-affecting calls notify everyone invited.
	sendUpdates = "all"
)

// CalendarClient implements booking.Service against the Google Calendar API.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
}

var _ booking.Service = (*CalendarClient)(nil)

// NewClient creates a new Google Calendar client. It handles loading
// credentials and setting up an authenticated HTTP client. The accountName
// selects a token file saved by the 'auth' command (token-<name>.json).
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	tokenFile := fmt.Sprintf("token-%s.json", accountName)
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &CalendarClient{service: service, logger: logger}, nil
}

// Insert creates a new event on the given calendar.
func (c *CalendarClient) Insert(ctx context.Context, calendarID string, req *models.EventRequest) (*models.Event, error) {
	body := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       toEventDateTime(req.Start),
		End:         toEventDateTime(req.End),
	}
	for _, email := range req.Attendees {
		body.Attendees = append(body.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.service.Events.Insert(calendarID, body).
		SendUpdates(sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("insert event", err)
	}

	c.logger.Debug("Inserted event into Google Calendar.", "id", created.Id, "link", created.HtmlLink)
	return fromGoogleEvent(created), nil
}

// List returns events matching the query, with recurring events expanded
// into single occurrences. Time-bounded queries are ordered by start time.
func (c *CalendarClient) List(ctx context.Context, calendarID string, q booking.ListQuery) ([]*models.Event, error) {
	call := c.service.Events.List(calendarID).
		SingleEvents(true).
		ShowDeleted(false).
		Context(ctx)

	if !q.TimeMin.IsZero() {
		call = call.TimeMin(q.TimeMin.String()).OrderBy("startTime")
	}
	if !q.TimeMax.IsZero() {
		call = call.TimeMax(q.TimeMax.String())
	}
	if q.Text != "" {
		call = call.Q(q.Text)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, wrapAPIError("list events", err)
	}

	events := make([]*models.Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, fromGoogleEvent(item))
	}
	c.logger.Debug("Fetched events from Google Calendar.", "count", len(events), "calendarID", calendarID)
	return events, nil
}

// Patch updates only the start and end of an existing event.
func (c *CalendarClient) Patch(ctx context.Context, calendarID, eventID string, start, end models.Instant) (*models.Event, error) {
	body := &calendar.Event{
		Start: toEventDateTime(start),
		End:   toEventDateTime(end),
	}

	updated, err := c.service.Events.Patch(calendarID, eventID, body).
		SendUpdates(sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("patch event", err)
	}
	return fromGoogleEvent(updated), nil
}

// Delete removes an event. The API returns no body on deletion.
func (c *CalendarClient) Delete(ctx context.Context, calendarID, eventID string) error {
	err := c.service.Events.Delete(calendarID, eventID).
		SendUpdates(sendUpdates).
		Context(ctx).
		Do()
	if err != nil {
		return wrapAPIError("delete event", err)
	}
	return nil
}

// toEventDateTime renders an Instant in the API's wire shape: {date} for
// all-day markers, {dateTime, timeZone} for timed instants. A raw
// passthrough goes out as a bare dateTime for the API to validate.
func toEventDateTime(in models.Instant) *calendar.EventDateTime {
	switch {
	case in.IsAllDay():
		return &calendar.EventDateTime{Date: in.Date()}
	case in.IsZoned():
		t, _ := in.Time()
		return &calendar.EventDateTime{
			DateTime: t.Format(time.RFC3339),
			TimeZone: in.Zone(),
		}
	default:
		return &calendar.EventDateTime{DateTime: in.String()}
	}
}

// fromEventDateTime converts an API time back into an Instant.
func fromEventDateTime(edt *calendar.EventDateTime) models.Instant {
	if edt == nil {
		return models.Instant{}
	}
	if edt.Date != "" {
		return models.DateOnly(edt.Date)
	}
	if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
		return models.Zoned(t, edt.TimeZone)
	}
	return models.RawInstant(edt.DateTime)
}

// fromGoogleEvent converts a Google Calendar event to the internal model.
func fromGoogleEvent(item *calendar.Event) *models.Event {
	var attendees []string
	for _, a := range item.Attendees {
		attendees = append(attendees, a.Email)
	}

	return &models.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       fromEventDateTime(item.Start),
		End:         fromEventDateTime(item.End),
		Status:      item.Status,
		HTMLLink:    item.HtmlLink,
		Attendees:   attendees,
	}
}

// wrapAPIError surfaces the HTTP status of typed API errors.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: calendar API returned %d: %w", op, apiErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config
// for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config. It
// prioritizes environment variables over a local credentials.json file.
// Booking needs write access, so the events scope is requested.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the root directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(context.Background(), authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}
