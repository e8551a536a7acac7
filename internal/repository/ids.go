package repository

import (
	"strings"

	"github.com/google/uuid"
)

// newCode derives a short human-readable identifier such as EVT-3F9A21
// or BK-8C04D1E7. Uniqueness is enforced by the database; the UUID
// source makes collisions vanishingly rare.
func newCode(prefix string, length int) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return prefix + "-" + raw[:length]
}

// NewEventCode generates a public event identifier.
func NewEventCode() string { return newCode("EVT", 6) }

// NewBookingCode generates a public booking identifier.
func NewBookingCode() string { return newCode("BK", 8) }
