package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evently-hq/evently/internal/model"
)

// BookingRepository handles persistence for bookings. Bookings are
// never deleted: cancellation is a status change so the audit history
// survives, including past the deletion of the referenced event.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a confirmed booking and returns it with generated
// identifiers. The caller must already hold a successful reservation
// from the capacity ledger.
func (r *BookingRepository) Create(ctx context.Context, userID, eventID string, seats int, totalAmount int64) (*model.Booking, error) {
	booking := &model.Booking{
		ID:          uuid.New().String(),
		BookingID:   NewBookingCode(),
		UserID:      userID,
		EventID:     eventID,
		Seats:       seats,
		TotalAmount: totalAmount,
		Status:      model.BookingConfirmed,
		BookingDate: time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, booking_id, user_id, event_id, seats, total_amount, status, booking_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.BookingID, booking.UserID, booking.EventID,
		booking.Seats, booking.TotalAmount, booking.Status, booking.BookingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return booking, nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRow(ctx,
		`SELECT id, booking_id, user_id, event_id, seats, total_amount, status, booking_date
		 FROM bookings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.BookingID, &b.UserID, &b.EventID, &b.Seats, &b.TotalAmount, &b.Status, &b.BookingDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// MarkCancelled transitions a confirmed booking to cancelled. The
// status guard in the WHERE clause makes the transition terminal even
// if two cancellations race: only one of them flips the row.
func (r *BookingRepository) MarkCancelled(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1 AND status = $3`,
		id, model.BookingCancelled, model.BookingConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser returns a user's bookings newest first, each with its
// event resolved through a LEFT JOIN. The event is nil when it has been
// deleted; callers render the booking regardless.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.booking_id, b.user_id, b.event_id, b.seats, b.total_amount, b.status, b.booking_date,
		        e.id, e.event_id, e.title, e.description, e.category,
		        e.location_type, e.address, e.city, e.country,
		        e.starts_at, e.ends_at, e.capacity, e.booked_seats, e.price, e.image_url,
		        e.created_at, e.updated_at
		 FROM bookings b
		 LEFT JOIN events e ON e.id = b.event_id
		 WHERE b.user_id = $1
		 ORDER BY b.booking_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		// Nullable because the joined event row may be gone.
		var eID, eCode, eTitle, eDesc, eCategory *string
		var eLocType, eAddress, eCity, eCountry, eImg *string
		var eStarts, eEnds, eCreated, eUpdated *time.Time
		var eCapacity, eBooked *int
		var ePrice *int64
		if err := rows.Scan(
			&b.ID, &b.BookingID, &b.UserID, &b.EventID, &b.Seats, &b.TotalAmount, &b.Status, &b.BookingDate,
			&eID, &eCode, &eTitle, &eDesc, &eCategory,
			&eLocType, &eAddress, &eCity, &eCountry,
			&eStarts, &eEnds, &eCapacity, &eBooked, &ePrice, &eImg,
			&eCreated, &eUpdated,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if eID != nil {
			e := model.Event{
				ID: *eID, EventID: *eCode, Title: *eTitle, Description: *eDesc, Category: *eCategory,
				Location: model.Location{Type: *eLocType, Address: *eAddress, City: *eCity, Country: *eCountry},
				StartsAt: *eStarts, EndsAt: eEnds, Capacity: *eCapacity, BookedSeats: *eBooked,
				Price: *ePrice, ImageURL: *eImg, CreatedAt: *eCreated, UpdatedAt: *eUpdated,
			}
			b.Event = &e
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CountConfirmedByEvent returns how many confirmed bookings reference
// the event. Used to guard event deletion.
func (r *BookingRepository) CountConfirmedByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = $2`,
		eventID, model.BookingConfirmed,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bookings for event: %w", err)
	}
	return n, nil
}

// CountAll returns the total number of bookings, cancelled included.
func (r *BookingRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

// Recent returns the latest bookings joined with user and event
// summaries for the dashboard. Deleted events yield empty summaries.
func (r *BookingRepository) Recent(ctx context.Context, limit int) ([]model.RecentBooking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.booking_id, u.name, u.email,
		        COALESCE(e.title, ''), COALESCE(e.event_id, ''),
		        b.seats, b.total_amount, b.status, b.booking_date
		 FROM bookings b
		 JOIN users u ON u.id = b.user_id
		 LEFT JOIN events e ON e.id = b.event_id
		 ORDER BY b.booking_date DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}
	defer rows.Close()

	var recent []model.RecentBooking
	for rows.Next() {
		var rb model.RecentBooking
		if err := rows.Scan(
			&rb.BookingID, &rb.UserName, &rb.UserEmail,
			&rb.EventTitle, &rb.EventCode,
			&rb.Seats, &rb.TotalAmount, &rb.Status, &rb.BookingDate,
		); err != nil {
			return nil, fmt.Errorf("scan recent booking: %w", err)
		}
		recent = append(recent, rb)
	}
	return recent, rows.Err()
}

// ListAttendees returns confirmed bookings for an event with the
// booking owners' details, oldest booking first.
func (r *BookingRepository) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.booking_id, u.name, u.email, b.seats, b.total_amount, b.booking_date
		 FROM bookings b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.event_id = $1 AND b.status = $2
		 ORDER BY b.booking_date ASC`,
		eventID, model.BookingConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.BookingID, &a.UserName, &a.UserEmail, &a.Seats, &a.TotalAmount, &a.BookingDate); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
