package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/evently-hq/evently/internal/clock"
	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/repository"
)

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	Update(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter) ([]model.Event, error)
}

// BookingReader exposes the booking queries the event side needs.
type BookingReader interface {
	CountConfirmedByEvent(ctx context.Context, eventID string) (int, error)
	CountAll(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]model.RecentBooking, error)
	ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error)
}

// EventService orchestrates event management and catalog queries.
type EventService struct {
	events   EventStore
	bookings BookingReader
	clock    clock.Clock
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore, bookings BookingReader, clk clock.Clock) *EventService {
	return &EventService{events: events, bookings: bookings, clock: clk}
}

const recentBookingsLimit = 10

// CreateEvent validates the request and persists a new event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	if err := validateEventRequest(&req); err != nil {
		return nil, err
	}
	event, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, storageErr(fmt.Errorf("create event: %w", err))
	}
	log.Info().Str("event_id", event.EventID).Str("title", event.Title).Msg("event created")
	event.Derive(s.clock.Now())
	return event, nil
}

// UpdateEvent rewrites an event's editable fields. Existing bookings
// keep the total amount frozen at their booking time; a price edit
// affects future bookings only.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error) {
	if err := validateEventRequest(&req); err != nil {
		return nil, err
	}
	event, err := s.events.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, storageErr(fmt.Errorf("update event: %w", err))
	}
	log.Info().Str("event_id", event.EventID).Msg("event updated")
	event.Derive(s.clock.Now())
	return event, nil
}

// DeleteEvent removes an event. Deletion is rejected while confirmed
// bookings still reference it so bookings are never silently orphaned;
// cancelled bookings keep their audit rows and survive the deletion.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	live, err := s.bookings.CountConfirmedByEvent(ctx, id)
	if err != nil {
		return storageErr(fmt.Errorf("count live bookings: %w", err))
	}
	if live > 0 {
		return ErrEventHasBookings
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return storageErr(fmt.Errorf("delete event: %w", err))
	}
	log.Info().Str("id", id).Msg("event deleted")
	return nil
}

// GetEvent returns an event with its derived fields populated.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, ErrEventNotFound
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, storageErr(fmt.Errorf("get event: %w", err))
	}
	event.Derive(s.clock.Now())
	return event, nil
}

// ListEvents returns events matching the filter with derived fields.
// Status is computed per record at query time, so the status filter is
// applied here rather than in SQL.
func (s *EventService) ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, storageErr(fmt.Errorf("list events: %w", err))
	}
	now := s.clock.Now()
	result := make([]model.Event, 0, len(events))
	for i := range events {
		events[i].Derive(now)
		if filter.Status != "" && events[i].Status != filter.Status {
			continue
		}
		result = append(result, events[i])
	}
	return result, nil
}

// DashboardStats aggregates platform counters and the latest bookings.
func (s *EventService) DashboardStats(ctx context.Context) (*model.DashboardStats, []model.RecentBooking, error) {
	events, err := s.events.List(ctx, model.EventFilter{})
	if err != nil {
		return nil, nil, storageErr(fmt.Errorf("list events: %w", err))
	}

	stats := &model.DashboardStats{TotalEvents: len(events)}
	now := s.clock.Now()
	for i := range events {
		switch events[i].StatusAt(now) {
		case model.StatusUpcoming:
			stats.UpcomingEvents++
		case model.StatusOngoing:
			stats.OngoingEvents++
		case model.StatusCompleted:
			stats.CompletedEvents++
		}
	}

	stats.TotalBookings, err = s.bookings.CountAll(ctx)
	if err != nil {
		return nil, nil, storageErr(fmt.Errorf("count bookings: %w", err))
	}

	recent, err := s.bookings.Recent(ctx, recentBookingsLimit)
	if err != nil {
		return nil, nil, storageErr(fmt.Errorf("recent bookings: %w", err))
	}
	return stats, recent, nil
}

// ListAttendees returns the confirmed bookings for an event together
// with the booking owners.
func (s *EventService) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	attendees, err := s.bookings.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, storageErr(fmt.Errorf("list attendees: %w", err))
	}
	return attendees, nil
}

func validateEventRequest(req *model.CreateEventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !slices.Contains(model.Categories, req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}
	if req.Location.Type != model.LocationOnline && req.Location.Type != model.LocationInPerson {
		return fmt.Errorf("%w: location type must be Online or In-Person", ErrInvalidInput)
	}
	if req.StartsAt.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}
	if req.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a positive integer", ErrInvalidInput)
	}
	if req.Capacity > 100_000 {
		return fmt.Errorf("%w: capacity cannot exceed 100,000", ErrInvalidInput)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	return nil
}
