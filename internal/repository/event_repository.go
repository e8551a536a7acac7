// Package repository implements all database queries for the booking
// platform. It uses pgx directly (no ORM) for transparency and control
// over locking behaviour.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evently-hq/evently/internal/model"
)

const eventColumns = `id, event_id, title, description, category,
	location_type, address, city, country,
	starts_at, ends_at, capacity, booked_seats, price, image_url,
	created_at, updated_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with generated identifiers.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	now := time.Now().UTC()
	event := &model.Event{
		ID:          uuid.New().String(),
		EventID:     NewEventCode(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		BookedSeats: 0,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, event_id, title, description, category,
		                     location_type, address, city, country,
		                     starts_at, ends_at, capacity, booked_seats, price, image_url,
		                     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		event.ID, event.EventID, event.Title, event.Description, event.Category,
		event.Location.Type, event.Location.Address, event.Location.City, event.Location.Country,
		event.StartsAt, event.EndsAt, event.Capacity, event.BookedSeats, event.Price, event.ImageURL,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// Update rewrites an event's editable fields. Capacity and booked_seats
// are deliberately untouched: capacity is immutable via this path and
// booked_seats belongs to the capacity ledger.
func (r *EventRepository) Update(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, category = $4,
		     location_type = $5, address = $6, city = $7, country = $8,
		     starts_at = $9, ends_at = $10, price = $11, image_url = $12,
		     updated_at = now()
		 WHERE id = $1`,
		id, req.Title, req.Description, req.Category,
		req.Location.Type, req.Location.Address, req.Location.City, req.Location.Country,
		req.StartsAt, req.EndsAt, req.Price, req.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event. Callers must first verify no confirmed
// bookings reference it.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// List returns events matching the filter, newest start first. The
// status filter is not applied here: status is derived from time and is
// resolved per record by the service layer.
func (r *EventRepository) List(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.LocationType != "" {
		add("location_type = $%d", filter.LocationType)
	}
	if filter.StartDate != nil {
		add("starts_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("starts_at <= $%d", *filter.EndDate)
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY starts_at ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// scanEvent reads one event row from either QueryRow or Query results.
func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.EventID, &e.Title, &e.Description, &e.Category,
		&e.Location.Type, &e.Location.Address, &e.Location.City, &e.Location.Country,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &e.BookedSeats, &e.Price, &e.ImageURL,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
