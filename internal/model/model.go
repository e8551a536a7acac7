// Package model defines the core domain types for the event booking platform.
package model

import "time"

// EventStatus is the lifecycle state of an event, always derived from
// its schedule and the current time, never stored.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "Upcoming"
	StatusOngoing   EventStatus = "Ongoing"
	StatusCompleted EventStatus = "Completed"
)

// Booking lifecycle states. Cancelled is terminal.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// MaxSeatsPerBooking caps the seats a single booking may hold. Product
// policy, not a computed limit.
const MaxSeatsPerBooking = 2

// Categories accepted at event creation time.
var Categories = []string{"Music", "Tech", "Business", "Sports", "Arts", "Food", "Other"}

// Location types accepted at event creation time.
const (
	LocationOnline   = "Online"
	LocationInPerson = "In-Person"
)

// Location describes where an event takes place.
type Location struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// Event represents a bookable event created by an administrator.
// BookedSeats is mutated only through the capacity ledger.
type Event struct {
	ID          string     `json:"_id"`
	EventID     string     `json:"eventId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    Location   `json:"location"`
	StartsAt    time.Time  `json:"date"`
	EndsAt      *time.Time `json:"endDate,omitempty"`
	Capacity    int        `json:"capacity"`
	BookedSeats int        `json:"bookedSeats"`
	Price       int64      `json:"price"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Derived fields, populated on read.
	AvailableSeats int         `json:"availableSeats"`
	Status         EventStatus `json:"status"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.Capacity - e.BookedSeats
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.BookedSeats >= e.Capacity
}

// StatusAt resolves the event's lifecycle status at the given instant.
func (e *Event) StatusAt(now time.Time) EventStatus {
	return ResolveStatus(e.StartsAt, e.EndsAt, now)
}

// Derive fills in the computed fields for the given instant.
func (e *Event) Derive(now time.Time) {
	e.AvailableSeats = e.Remaining()
	e.Status = e.StatusAt(now)
}

// ResolveStatus maps an event's schedule and the current time to its
// lifecycle status. Pure and deterministic; schedule validity is the
// caller's concern at creation time. An event without an end time is
// Ongoing only at its exact start instant.
func ResolveStatus(start time.Time, end *time.Time, now time.Time) EventStatus {
	if now.Before(start) {
		return StatusUpcoming
	}
	last := start
	if end != nil {
		last = *end
	}
	if now.After(last) {
		return StatusCompleted
	}
	return StatusOngoing
}

// Booking represents a user's confirmed or cancelled seat reservation.
// TotalAmount is frozen at booking time and never recomputed.
type Booking struct {
	ID          string    `json:"_id"`
	BookingID   string    `json:"bookingId"`
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId"`
	Seats       int       `json:"seats"`
	TotalAmount int64     `json:"totalAmount"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"bookingDate"`

	// Event is the weak reference resolved at read time; nil when the
	// event has since been deleted.
	Event *Event `json:"event,omitempty"`
}

// User is a registered account. PasswordHash is never serialised.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// EventFilter narrows event listings. Status filtering is applied after
// resolving each event's status at query time.
type EventFilter struct {
	Category     string
	LocationType string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       EventStatus
}

// DashboardStats aggregates platform counters for the admin dashboard.
type DashboardStats struct {
	TotalEvents     int `json:"totalEvents"`
	TotalBookings   int `json:"totalBookings"`
	UpcomingEvents  int `json:"upcomingEvents"`
	OngoingEvents   int `json:"ongoingEvents"`
	CompletedEvents int `json:"completedEvents"`
}

// RecentBooking is a booking joined with user and event summaries for
// the dashboard. Event fields are empty when the event was deleted.
type RecentBooking struct {
	BookingID   string    `json:"bookingId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	EventTitle  string    `json:"eventTitle,omitempty"`
	EventCode   string    `json:"eventId,omitempty"`
	Seats       int       `json:"seats"`
	TotalAmount int64     `json:"totalAmount"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"bookingDate"`
}

// Attendee is a confirmed booking with owner details, as listed on the
// admin attendees view.
type Attendee struct {
	BookingID   string    `json:"bookingId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	Seats       int       `json:"seats"`
	TotalAmount int64     `json:"totalAmount"`
	BookingDate time.Time `json:"bookingDate"`
}

// CreateEventRequest is the payload for creating or updating an event.
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    Location   `json:"location"`
	StartsAt    time.Time  `json:"date"`
	EndsAt      *time.Time `json:"endDate,omitempty"`
	Capacity    int        `json:"capacity"`
	Price       int64      `json:"price"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// CreateBookingRequest is the payload for booking seats on an event.
type CreateBookingRequest struct {
	EventID string `json:"eventId"`
	Seats   int    `json:"seats"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for obtaining an access token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token and its subject.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse is the standard JSON success envelope.
type DataResponse struct {
	Data any `json:"data"`
}
