package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/repository"
)

var errBoom = errors.New("boom")

// fakeStore is an in-memory stand-in for the repository layer. A single
// mutex serialises capacity mutations the way the row lock does in
// Postgres.
type fakeStore struct {
	mu       sync.Mutex
	now      time.Time
	events   map[string]model.Event
	bookings map[string]model.Booking
	seq      int

	failBookingCreate bool
}

func newFakeStore(now time.Time, events ...model.Event) *fakeStore {
	s := &fakeStore{
		now:      now,
		events:   make(map[string]model.Event),
		bookings: make(map[string]model.Booking),
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *fakeStore) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID("evt")
	e := model.Event{
		ID:          id,
		EventID:     "EVT-" + id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	s.events[id] = e
	return &e, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Title = req.Title
	e.Description = req.Description
	e.Category = req.Category
	e.Location = req.Location
	e.StartsAt = req.StartsAt
	e.EndsAt = req.EndsAt
	e.Price = req.Price
	e.ImageURL = req.ImageURL
	e.UpdatedAt = s.now
	s.events[id] = e
	return &e, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *fakeStore) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.LocationType != "" && e.Location.Type != filter.LocationType {
			continue
		}
		if filter.StartDate != nil && e.StartsAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.StartsAt.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) CountAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), nil
}

func (s *fakeStore) Reserve(ctx context.Context, eventID string, seats int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	if e.BookedSeats+seats > e.Capacity {
		return repository.ErrCapacityExceeded
	}
	e.BookedSeats += seats
	s.events[eventID] = e
	return nil
}

func (s *fakeStore) Release(ctx context.Context, eventID string, seats int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil
	}
	e.BookedSeats -= seats
	if e.BookedSeats < 0 {
		e.BookedSeats = 0
	}
	s.events[eventID] = e
	return nil
}

func (s *fakeStore) CreateBooking(ctx context.Context, userID, eventID string, seats int, totalAmount int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBookingCreate {
		return nil, errBoom
	}
	id := s.nextID("bk")
	b := model.Booking{
		ID:          id,
		BookingID:   "BK-" + id,
		UserID:      userID,
		EventID:     eventID,
		Seats:       seats,
		TotalAmount: totalAmount,
		Status:      model.BookingConfirmed,
		BookingDate: s.now,
	}
	s.bookings[id] = b
	return &b, nil
}

func (s *fakeStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *fakeStore) MarkCancelled(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != model.BookingConfirmed {
		return false, nil
	}
	b.Status = model.BookingCancelled
	s.bookings[id] = b
	return true, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		if e, ok := s.events[b.EventID]; ok {
			ev := e
			b.Event = &ev
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeStore) CountConfirmedByEvent(ctx context.Context, eventID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.EventID == eventID && b.Status == model.BookingConfirmed {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Recent(ctx context.Context, limit int) ([]model.RecentBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RecentBooking
	for _, b := range s.bookings {
		if len(out) == limit {
			break
		}
		rb := model.RecentBooking{
			BookingID:   b.BookingID,
			Seats:       b.Seats,
			TotalAmount: b.TotalAmount,
			Status:      b.Status,
			BookingDate: b.BookingDate,
		}
		if e, ok := s.events[b.EventID]; ok {
			rb.EventTitle = e.Title
			rb.EventCode = e.EventID
		}
		out = append(out, rb)
	}
	return out, nil
}

func (s *fakeStore) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attendee
	for _, b := range s.bookings {
		if b.EventID != eventID || b.Status != model.BookingConfirmed {
			continue
		}
		out = append(out, model.Attendee{
			BookingID:   b.BookingID,
			Seats:       b.Seats,
			TotalAmount: b.TotalAmount,
			BookingDate: b.BookingDate,
		})
	}
	return out, nil
}

// bookingStoreAdapter renames fakeStore's booking methods onto the
// BookingStore interface, whose Create and GetByID collide with the
// event-side names.
type bookingStoreAdapter struct{ *fakeStore }

func (a bookingStoreAdapter) Create(ctx context.Context, userID, eventID string, seats int, totalAmount int64) (*model.Booking, error) {
	return a.CreateBooking(ctx, userID, eventID, seats, totalAmount)
}

func (a bookingStoreAdapter) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return a.GetBooking(ctx, id)
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}
