package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/service"
)

// BookingHandler holds the authenticated booking handlers.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.CreateBooking(r.Context(), UserID(r), req.EventID, req.Seats)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, booking)
}

// ListMyBookings handles GET /bookings/my
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListMyBookings(r.Context(), UserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeData(w, http.StatusOK, bookings)
}

// CancelBooking handles POST /bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.CancelBooking(r.Context(), UserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, booking)
}
