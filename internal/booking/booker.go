package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"voicecal/internal/models"
)

// Booker drives event creation and mutation against one calendar. It holds
// only read-only configuration, so a single instance is safe for concurrent
// use; concurrent requests interact solely through the remote service.
type Booker struct {
	logger     *slog.Logger
	service    Service
	builder    *Builder
	normalizer *Normalizer
	calendarID string
	zone       *time.Location
}

// NewBooker creates a Booker targeting calendarID on the given service.
// Naive timestamps are resolved in zone unless an intent overrides it.
func NewBooker(logger *slog.Logger, service Service, calendarID string, zone *time.Location) *Booker {
	return &Booker{
		logger:     logger,
		service:    service,
		builder:    NewBuilder(logger, zone),
		normalizer: NewNormalizer(logger),
		calendarID: calendarID,
		zone:       zone,
	}
}

// Normalize converts a raw date/time string to an Instant using the booker's
// default zone.
func (b *Booker) Normalize(raw string) models.Instant {
	return b.normalizer.Normalize(raw, b.zone)
}

// Prepare builds a validated EventRequest from an intent without touching
// the remote service.
func (b *Booker) Prepare(intent *models.IntentRecord) (*models.EventRequest, error) {
	return b.builder.Build(intent)
}

// Create submits a prepared request and returns the created event.
func (b *Booker) Create(ctx context.Context, req *models.EventRequest) (*models.Event, error) {
	ev, err := b.service.Insert(ctx, b.calendarID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	b.logger.Info("Event created.", "id", ev.ID, "summary", ev.Summary, "link", ev.HTMLLink)
	return ev, nil
}

// Book builds an event request from intent and submits it in one step.
func (b *Booker) Book(ctx context.Context, intent *models.IntentRecord) (*models.Event, error) {
	req, err := b.Prepare(intent)
	if err != nil {
		return nil, err
	}
	return b.Create(ctx, req)
}
