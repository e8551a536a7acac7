package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	end := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  EventStatus
	}{
		{"before start", now.Add(time.Hour), nil, StatusUpcoming},
		{"between start and end", now.Add(-time.Hour), end(now.Add(time.Hour)), StatusOngoing},
		{"after end", now.Add(-2 * time.Hour), end(now.Add(-time.Hour)), StatusCompleted},
		{"exactly at start", now, end(now.Add(time.Hour)), StatusOngoing},
		{"exactly at end", now.Add(-time.Hour), end(now), StatusOngoing},
		{"no end, before start", now.Add(time.Minute), nil, StatusUpcoming},
		{"no end, exactly at start", now, nil, StatusOngoing},
		{"no end, after start", now.Add(-time.Minute), nil, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveStatus(tt.start, tt.end, now))
		})
	}
}

func TestEventDerive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	e := Event{
		StartsAt:    now.Add(time.Hour),
		Capacity:    100,
		BookedSeats: 37,
	}
	e.Derive(now)

	require.Equal(t, 63, e.AvailableSeats)
	require.Equal(t, StatusUpcoming, e.Status)
	require.False(t, e.IsFull())

	e.BookedSeats = 100
	require.True(t, e.IsFull())
	require.Equal(t, 0, e.Remaining())
}
