package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/service"
)

// AdminHandler holds the admin dashboard and event management handlers.
type AdminHandler struct {
	svc *service.EventService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *service.EventService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, recent, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if recent == nil {
		recent = []model.RecentBooking{}
	}
	writeData(w, http.StatusOK, map[string]any{
		"stats":          stats,
		"recentBookings": recent,
	})
}

// CreateEvent handles POST /admin/events
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /admin/events/{id}
func (h *AdminHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /admin/events/{id}
// Deletion is rejected with 409 while confirmed bookings exist.
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ListAttendees handles GET /admin/events/{id}/attendees
func (h *AdminHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.svc.ListAttendees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if attendees == nil {
		attendees = []model.Attendee{}
	}
	writeData(w, http.StatusOK, map[string]any{
		"count":     len(attendees),
		"attendees": attendees,
	})
}
