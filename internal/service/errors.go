package service

import "errors"

// Business-rule errors surfaced to callers as typed conditions. None of
// them is ever recovered locally by substituting a default; handlers
// translate them to HTTP statuses with errors.Is.
var (
	// Validation.
	ErrInvalidSeatCount = errors.New("seats must be between 1 and 2")
	ErrInvalidInput     = errors.New("invalid input")

	// Not found.
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")

	// Authorization.
	ErrNotOwner           = errors.New("booking does not belong to this user")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")

	// Policy / state.
	ErrEventNotBookable         = errors.New("event is not open for booking")
	ErrInsufficientCapacity     = errors.New("not enough seats available")
	ErrAlreadyCancelled         = errors.New("booking is already cancelled")
	ErrCancellationWindowClosed = errors.New("booking can no longer be cancelled")
	ErrEventHasBookings         = errors.New("event has confirmed bookings")

	// Transient infrastructure. The only class callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
