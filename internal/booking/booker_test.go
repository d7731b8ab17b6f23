package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecal/internal/models"
)

type patchCall struct {
	eventID string
	start   models.Instant
	end     models.Instant
}

// fakeService is an in-memory booking.Service. Its List applies the same
// broad substring search real providers offer, so exact-match filtering in
// Locate is exercised realistically.
type fakeService struct {
	events    []*models.Event
	listErr   error
	insertErr error

	inserted []*models.EventRequest
	patches  []patchCall
	deleted  []string
	queries  []ListQuery
}

func (f *fakeService) Insert(_ context.Context, _ string, req *models.EventRequest) (*models.Event, error) {
	f.inserted = append(f.inserted, req)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &models.Event{
		ID:        fmt.Sprintf("ev-%d", len(f.inserted)),
		Summary:   req.Summary,
		Start:     req.Start,
		End:       req.End,
		Status:    "confirmed",
		HTMLLink:  "https://calendar.example/ev",
		Attendees: req.Attendees,
	}, nil
}

func (f *fakeService) List(_ context.Context, _ string, q ListQuery) ([]*models.Event, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Event
	for _, ev := range f.events {
		if q.Text != "" && !strings.Contains(strings.ToLower(ev.Summary), strings.ToLower(q.Text)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeService) Patch(_ context.Context, _ string, eventID string, start, end models.Instant) (*models.Event, error) {
	f.patches = append(f.patches, patchCall{eventID: eventID, start: start, end: end})
	for _, ev := range f.events {
		if ev.ID == eventID {
			updated := *ev
			updated.Start = start
			updated.End = end
			return &updated, nil
		}
	}
	return nil, errors.New("no such event")
}

func (f *fakeService) Delete(_ context.Context, _ string, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

func newTestBooker(svc Service) *Booker {
	return NewBooker(discardLogger(), svc, "primary", time.UTC)
}

func zonedAt(t *testing.T, value string) models.Instant {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return models.Zoned(ts, "UTC")
}

func TestBookCreatesEvent(t *testing.T) {
	svc := &fakeService{}
	b := newTestBooker(svc)

	ev, err := b.Book(context.Background(), &models.IntentRecord{
		Title:           "Lunch",
		Start:           "2024-09-01T12:00:00",
		DurationMinutes: 45,
	})
	require.NoError(t, err)
	require.Len(t, svc.inserted, 1)
	assert.Equal(t, "Lunch", ev.Summary)
	assert.Equal(t, "confirmed", ev.Status)
}

func TestBookValidationFailureSkipsNetwork(t *testing.T) {
	svc := &fakeService{}
	b := newTestBooker(svc)

	_, err := b.Book(context.Background(), &models.IntentRecord{Start: "2024-09-01T12:00:00"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, svc.inserted, "no insert call on validation failure")
}

func TestLocateMatchesCaseInsensitively(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "1", Summary: "team sync", Start: zonedAt(t, "2124-03-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	ev, err := b.Locate(context.Background(), "Team Sync")
	require.NoError(t, err)
	assert.Equal(t, "1", ev.ID)
}

func TestLocateRejectsSubstringMatches(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "1", Summary: "Team Sync Weekly", Start: zonedAt(t, "2124-03-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	_, err := b.Locate(context.Background(), "Team Sync")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocatePrefersSoonestUpcoming(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "later", Summary: "Review", Start: zonedAt(t, "2125-01-01T09:00:00Z")},
		{ID: "past", Summary: "Review", Start: zonedAt(t, "2020-01-01T09:00:00Z")},
		{ID: "next", Summary: "Review", Start: zonedAt(t, "2124-01-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	ev, err := b.Locate(context.Background(), "review")
	require.NoError(t, err)
	assert.Equal(t, "next", ev.ID)
}

func TestLocateFallsBackToMostRecentPast(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "older", Summary: "Retro", Start: zonedAt(t, "2020-01-01T09:00:00Z")},
		{ID: "newer", Summary: "Retro", Start: zonedAt(t, "2023-01-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	ev, err := b.Locate(context.Background(), "Retro")
	require.NoError(t, err)
	assert.Equal(t, "newer", ev.ID)
}

func TestFindConflictsReturnsEmptyOnRemoteFailure(t *testing.T) {
	svc := &fakeService{listErr: errors.New("quota exceeded")}
	b := newTestBooker(svc)

	conflicts, err := b.FindConflicts(context.Background(), models.Window{
		Start: zonedAt(t, "2024-09-01T12:00:00Z"),
		End:   zonedAt(t, "2024-09-01T13:00:00Z"),
	})
	assert.Empty(t, conflicts)
	assert.Error(t, err, "the failed check is reported, not silently dropped")
}

func TestFindConflictsOrdersByStart(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "b", Summary: "Second", Start: zonedAt(t, "2024-09-01T13:00:00Z")},
		{ID: "a", Summary: "First", Start: zonedAt(t, "2024-09-01T12:15:00Z")},
	}}
	b := newTestBooker(svc)

	conflicts, err := b.FindConflicts(context.Background(), models.Window{
		Start: zonedAt(t, "2024-09-01T12:00:00Z"),
		End:   zonedAt(t, "2024-09-01T14:00:00Z"),
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "a", conflicts[0].ID)
	assert.Equal(t, "b", conflicts[1].ID)
}

func TestMovePatchesOnlyStartAndEnd(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "1", Summary: "Planning", Start: zonedAt(t, "2124-03-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	ev, err := b.Move(context.Background(), "planning", "2124-03-02T09:00:00", "2124-03-02T10:00:00")
	require.NoError(t, err)
	require.Len(t, svc.patches, 1)
	assert.Equal(t, "1", svc.patches[0].eventID)
	assert.Equal(t, "2124-03-02T09:00:00Z", svc.patches[0].start.String())
	assert.Equal(t, "2124-03-02T10:00:00Z", svc.patches[0].end.String())
	assert.Equal(t, "2124-03-02T09:00:00Z", ev.Start.String())
}

func TestMoveNotFound(t *testing.T) {
	svc := &fakeService{}
	b := newTestBooker(svc)

	_, err := b.Move(context.Background(), "Missing", "2124-03-02T09:00:00", "2124-03-02T10:00:00")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, svc.patches)
}

func TestCancelReturnsConfirmation(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "42", Summary: "Dentist", Start: zonedAt(t, "2124-03-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	conf, err := b.Cancel(context.Background(), "dentist")
	require.NoError(t, err)
	assert.Equal(t, &models.Confirmation{ID: "42", Status: "cancelled"}, conf)
	assert.Equal(t, []string{"42"}, svc.deleted)
}

func TestCancelNotFoundIssuesNoDeletion(t *testing.T) {
	svc := &fakeService{events: []*models.Event{
		{ID: "1", Summary: "Team Sync Weekly", Start: zonedAt(t, "2124-03-01T09:00:00Z")},
	}}
	b := newTestBooker(svc)

	_, err := b.Cancel(context.Background(), "Team Sync")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, svc.deleted, "no deletion call for an unmatched title")
}
