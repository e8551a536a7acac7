package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CapacityLedger is the sole authority over the booked_seats counter.
//
// Reserve serialises concurrent attempts per event with a row-level
// lock: SELECT ... FOR UPDATE blocks any other transaction taking the
// same lock on the same event row until this transaction commits or
// rolls back. Two requests racing for the last seat therefore
// read-then-write one at a time, so they can never both pass the
// capacity check. Bookings on different events lock different rows and
// proceed without contention.
type CapacityLedger struct {
	db *pgxpool.Pool
}

// NewCapacityLedger constructs a CapacityLedger.
func NewCapacityLedger(db *pgxpool.Pool) *CapacityLedger {
	return &CapacityLedger{db: db}
}

// Reserve atomically checks and increments booked_seats for the event.
// Returns ErrNotFound when the event does not exist and
// ErrCapacityExceeded when the requested seats do not fit; in both
// cases nothing is mutated.
func (l *CapacityLedger) Reserve(ctx context.Context, eventID string, seats int) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var capacity, booked int
	err = tx.QueryRow(ctx,
		`SELECT capacity, booked_seats FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	if booked+seats > capacity {
		err = ErrCapacityExceeded
		return err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE events SET booked_seats = booked_seats + $2 WHERE id = $1`,
		eventID, seats,
	); err != nil {
		return fmt.Errorf("increment booked_seats: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve: %w", err)
	}
	return nil
}

// Release atomically returns seats to the event, floored at zero. The
// terminal cancelled state upstream prevents releasing the same booking
// twice. Releasing against a deleted event is a no-op: the booking
// outlives the event and there is no counter left to restore.
func (l *CapacityLedger) Release(ctx context.Context, eventID string, seats int) error {
	_, err := l.db.Exec(ctx,
		`UPDATE events SET booked_seats = GREATEST(booked_seats - $2, 0) WHERE id = $1`,
		eventID, seats,
	)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}
