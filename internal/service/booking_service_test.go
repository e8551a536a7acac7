package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evently-hq/evently/internal/clock"
	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/queue"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func upcomingEvent(id string, capacity int, price int64) model.Event {
	return model.Event{
		ID:       id,
		EventID:  "EVT-" + id,
		Title:    "Go Conference",
		Category: "Tech",
		Location: model.Location{Type: model.LocationOnline},
		StartsAt: testNow.Add(48 * time.Hour),
		Capacity: capacity,
		Price:    price,
	}
}

func newBookingService(store *fakeStore) (*BookingService, *fakePublisher) {
	pub := &fakePublisher{}
	svc := NewBookingService(store, bookingStoreAdapter{store}, store, pub, clock.NewFixed(testNow))
	return svc, pub
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("books seats and freezes the total", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 10, 2500))
		svc, pub := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 2)
		require.NoError(t, err)
		require.Equal(t, 2, booking.Seats)
		require.Equal(t, int64(5000), booking.TotalAmount)
		require.Equal(t, model.BookingConfirmed, booking.Status)
		require.NotNil(t, booking.Event)
		require.Equal(t, 8, store.events["e1"].Capacity-store.events["e1"].BookedSeats)
		require.Equal(t, []string{queue.RoutingKeyBookingConfirmed}, pub.keys)
	})

	t.Run("total stays frozen after a price edit", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 10, 1000))
		svc, _ := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.NoError(t, err)

		e := store.events["e1"]
		e.Price = 9000
		store.events["e1"] = e

		got, err := svc.bookings.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		require.Equal(t, int64(1000), got.TotalAmount)
	})

	t.Run("rejects seat counts outside policy", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 10, 0))
		svc, _ := newBookingService(store)

		for _, seats := range []int{0, -1, 3} {
			_, err := svc.CreateBooking(ctx, "u1", "e1", seats)
			require.ErrorIs(t, err, ErrInvalidSeatCount)
		}
		require.Equal(t, 0, store.events["e1"].BookedSeats)
	})

	t.Run("unknown event", func(t *testing.T) {
		store := newFakeStore(testNow)
		svc, _ := newBookingService(store)

		_, err := svc.CreateBooking(ctx, "u1", "missing", 1)
		require.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("rejects bookings once the event has started", func(t *testing.T) {
		e := upcomingEvent("e1", 10, 0)
		e.StartsAt = testNow.Add(-time.Hour)
		end := testNow.Add(time.Hour)
		e.EndsAt = &end
		store := newFakeStore(testNow, e)
		svc, _ := newBookingService(store)

		_, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.ErrorIs(t, err, ErrEventNotBookable)
	})

	t.Run("rejects overbooking", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 3, 0))
		svc, _ := newBookingService(store)

		_, err := svc.CreateBooking(ctx, "u1", "e1", 2)
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, "u2", "e1", 2)
		require.ErrorIs(t, err, ErrInsufficientCapacity)
		require.Equal(t, 2, store.events["e1"].BookedSeats)
	})

	t.Run("releases seats when the booking fails to persist", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 10, 0))
		store.failBookingCreate = true
		svc, pub := newBookingService(store)

		_, err := svc.CreateBooking(ctx, "u1", "e1", 2)
		require.Error(t, err)
		require.Equal(t, 0, store.events["e1"].BookedSeats)
		require.Empty(t, pub.keys)
	})

	t.Run("concurrent bookings never exceed capacity", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 1, 0))
		svc, _ := newBookingService(store)

		results := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.CreateBooking(ctx, "u1", "e1", 1)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var won, lost int
		for err := range results {
			if err == nil {
				won++
			} else {
				require.ErrorIs(t, err, ErrInsufficientCapacity)
				lost++
			}
		}
		require.Equal(t, 1, won)
		require.Equal(t, 1, lost)
		require.Equal(t, 1, store.events["e1"].BookedSeats)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("cancelling returns the seats", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 2, 0))
		svc, pub := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 2)
		require.NoError(t, err)
		require.Equal(t, 2, store.events["e1"].BookedSeats)

		cancelled, err := svc.CancelBooking(ctx, "u1", booking.ID)
		require.NoError(t, err)
		require.Equal(t, model.BookingCancelled, cancelled.Status)
		require.Equal(t, 0, store.events["e1"].BookedSeats)
		require.Equal(t, []string{queue.RoutingKeyBookingConfirmed, queue.RoutingKeyBookingCancelled}, pub.keys)

		// The freed seats are immediately bookable again.
		_, err = svc.CreateBooking(ctx, "u2", "e1", 2)
		require.NoError(t, err)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 5, 0))
		svc, _ := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, "u1", booking.ID)
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, "u1", booking.ID)
		require.ErrorIs(t, err, ErrAlreadyCancelled)
		// The second attempt must not release seats again.
		require.Equal(t, 0, store.events["e1"].BookedSeats)
	})

	t.Run("only the owner can cancel", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 5, 0))
		svc, _ := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.NoError(t, err)

		_, err = svc.CancelBooking(ctx, "u2", booking.ID)
		require.ErrorIs(t, err, ErrNotOwner)
		require.Equal(t, 1, store.events["e1"].BookedSeats)
	})

	t.Run("window closes when the event starts", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 5, 0))
		svc, _ := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.NoError(t, err)

		e := store.events["e1"]
		e.StartsAt = testNow.Add(-time.Minute)
		store.events["e1"] = e

		_, err = svc.CancelBooking(ctx, "u1", booking.ID)
		require.ErrorIs(t, err, ErrCancellationWindowClosed)
	})

	t.Run("booking outlives a deleted event", func(t *testing.T) {
		store := newFakeStore(testNow, upcomingEvent("e1", 5, 0))
		svc, _ := newBookingService(store)

		booking, err := svc.CreateBooking(ctx, "u1", "e1", 1)
		require.NoError(t, err)

		delete(store.events, "e1")

		cancelled, err := svc.CancelBooking(ctx, "u1", booking.ID)
		require.NoError(t, err)
		require.Equal(t, model.BookingCancelled, cancelled.Status)
	})

	t.Run("unknown booking", func(t *testing.T) {
		store := newFakeStore(testNow)
		svc, _ := newBookingService(store)

		_, err := svc.CancelBooking(ctx, "u1", "missing")
		require.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestBookingService_ListMyBookings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore(testNow, upcomingEvent("e1", 5, 100))
	svc, _ := newBookingService(store)

	_, err := svc.CreateBooking(ctx, "u1", "e1", 1)
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, "u2", "e1", 1)
	require.NoError(t, err)

	mine, err := svc.ListMyBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Event)
	require.Equal(t, model.StatusUpcoming, mine[0].Event.Status)

	// The event reference degrades to nil once the event is deleted.
	delete(store.events, "e1")
	mine, err = svc.ListMyBookings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Nil(t, mine[0].Event)
}
