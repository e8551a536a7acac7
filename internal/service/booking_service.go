// Package service implements business logic, validation, and
// orchestration between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evently-hq/evently/internal/clock"
	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/queue"
	"github.com/evently-hq/evently/internal/repository"
)

// EventReader loads events for booking decisions.
type EventReader interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, userID, eventID string, seats int, totalAmount int64) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	MarkCancelled(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
}

// CapacityLedger is the sole authority over an event's booked seats.
type CapacityLedger interface {
	Reserve(ctx context.Context, eventID string, seats int) error
	Release(ctx context.Context, eventID string, seats int) error
}

// Publisher emits booking lifecycle events. Publishing is best-effort
// and never fails a booking operation.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BookingService orchestrates booking creation and cancellation.
type BookingService struct {
	events    EventReader
	bookings  BookingStore
	ledger    CapacityLedger
	publisher Publisher
	clock     clock.Clock
}

// NewBookingService constructs a BookingService. publisher may be nil.
func NewBookingService(events EventReader, bookings BookingStore, ledger CapacityLedger, publisher Publisher, clk clock.Clock) *BookingService {
	return &BookingService{
		events:    events,
		bookings:  bookings,
		ledger:    ledger,
		publisher: publisher,
		clock:     clk,
	}
}

// CreateBooking books seats on an event for the user.
//
// The reservation and the booking insert form a compensating pair, not
// one database transaction: seats are reserved first, and if persisting
// the booking then fails the reservation is rolled back by releasing
// the same seats, so held capacity never leaks.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID string, seats int) (*model.Booking, error) {
	if seats < 1 || seats > model.MaxSeatsPerBooking {
		return nil, ErrInvalidSeatCount
	}
	if eventID == "" {
		return nil, ErrEventNotFound
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, storageErr(fmt.Errorf("load event: %w", err))
	}

	if event.StatusAt(s.clock.Now()) != model.StatusUpcoming {
		return nil, ErrEventNotBookable
	}

	if err := s.ledger.Reserve(ctx, eventID, seats); err != nil {
		switch {
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, ErrInsufficientCapacity
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEventNotFound
		default:
			return nil, storageErr(fmt.Errorf("reserve seats: %w", err))
		}
	}

	totalAmount := int64(seats) * event.Price
	booking, err := s.bookings.Create(ctx, userID, eventID, seats, totalAmount)
	if err != nil {
		// Compensate: the seats were reserved but no booking exists.
		if relErr := s.ledger.Release(context.WithoutCancel(ctx), eventID, seats); relErr != nil {
			log.Error().Err(relErr).
				Str("event_id", eventID).
				Int("seats", seats).
				Msg("failed to release seats after booking persist failure")
		}
		return nil, storageErr(fmt.Errorf("persist booking: %w", err))
	}

	log.Info().
		Str("booking_id", booking.BookingID).
		Str("event_id", event.EventID).
		Str("user_id", userID).
		Int("seats", seats).
		Int64("total_amount", totalAmount).
		Msg("booking confirmed")

	s.publish(ctx, queue.RoutingKeyBookingConfirmed, booking, event.Title)

	event.Derive(s.clock.Now())
	booking.Event = event
	return booking, nil
}

// CancelBooking transitions a confirmed booking to cancelled and
// returns the held seats to the event. Cancelled is terminal.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, storageErr(fmt.Errorf("load booking: %w", err))
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if booking.Status == model.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}

	// A booking may outlive its event. When the event is gone there is
	// no schedule to enforce a window against, so cancellation is
	// allowed and the release below is a no-op.
	var eventTitle string
	event, err := s.events.GetByID(ctx, booking.EventID)
	switch {
	case err == nil:
		eventTitle = event.Title
		if event.StatusAt(s.clock.Now()) != model.StatusUpcoming {
			return nil, ErrCancellationWindowClosed
		}
	case errors.Is(err, repository.ErrNotFound):
		// fall through
	default:
		return nil, storageErr(fmt.Errorf("load event: %w", err))
	}

	ok, err := s.bookings.MarkCancelled(ctx, booking.ID)
	if err != nil {
		return nil, storageErr(fmt.Errorf("cancel booking: %w", err))
	}
	if !ok {
		// Lost a race with a concurrent cancellation.
		return nil, ErrAlreadyCancelled
	}

	if err := s.ledger.Release(context.WithoutCancel(ctx), booking.EventID, booking.Seats); err != nil {
		log.Error().Err(err).
			Str("booking_id", booking.BookingID).
			Str("event_id", booking.EventID).
			Int("seats", booking.Seats).
			Msg("failed to release seats for cancelled booking")
		return nil, storageErr(fmt.Errorf("release seats: %w", err))
	}

	booking.Status = model.BookingCancelled

	log.Info().
		Str("booking_id", booking.BookingID).
		Str("event_id", booking.EventID).
		Str("user_id", userID).
		Msg("booking cancelled")

	s.publish(ctx, queue.RoutingKeyBookingCancelled, booking, eventTitle)

	return booking, nil
}

// ListMyBookings returns the user's bookings, newest first, with each
// event resolved when it still exists.
func (s *BookingService) ListMyBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(fmt.Errorf("list bookings: %w", err))
	}
	now := s.clock.Now()
	for i := range bookings {
		if bookings[i].Event != nil {
			bookings[i].Event.Derive(now)
		}
	}
	return bookings, nil
}

func (s *BookingService) publish(ctx context.Context, routingKey string, booking *model.Booking, eventTitle string) {
	if s.publisher == nil {
		return
	}
	evt := queue.BookingEvent{
		BookingID:   booking.BookingID,
		UserID:      booking.UserID,
		EventID:     booking.EventID,
		EventTitle:  eventTitle,
		Seats:       booking.Seats,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
		OccurredAt:  s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, routingKey, evt); err != nil {
		log.Warn().Err(err).
			Str("routing_key", routingKey).
			Str("booking_id", booking.BookingID).
			Msg("failed to publish booking event")
	}
}

// storageErr maps context expiry on storage calls to the retryable
// StorageUnavailable condition; everything else passes through wrapped.
func storageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrStorageUnavailable
	}
	return err
}
