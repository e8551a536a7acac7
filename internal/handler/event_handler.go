package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evently-hq/evently/internal/model"
	"github.com/evently-hq/evently/internal/service"
)

// EventHandler holds the public catalog handlers.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ListEvents handles GET /events
// Supported query filters: category, location, startDate, endDate
// (YYYY-MM-DD), status.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := model.EventFilter{
		Category:     r.URL.Query().Get("category"),
		LocationType: r.URL.Query().Get("location"),
		Status:       model.EventStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
			return
		}
		// Inclusive through the end of the requested day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &t
	}

	events, err := h.svc.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeData(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, event)
}
