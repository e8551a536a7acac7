package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned by the capacity ledger when a
// reservation would overflow an event's capacity. No mutation occurs.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrDuplicateEmail is returned when registering an email that already
// has an account.
var ErrDuplicateEmail = errors.New("email already registered")
