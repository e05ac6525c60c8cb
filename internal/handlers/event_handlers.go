package handlers

import (
	"net/http"
	"strconv"

	"github.com/openmeet/eventhub/internal/domain"
)

// ListEvents supports status, attendee_id and organizer_id filters, ANDed,
// in creation order.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	var filter domain.EventFilter

	if v := r.URL.Query().Get("status"); v != "" {
		if !domain.IsValidStatus(v) {
			writeDomainError(w, r, domain.NewValidationError("invalid status filter"))
			return
		}
		filter.Status = &v
	}
	if v := r.URL.Query().Get("attendee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDomainError(w, r, domain.NewValidationError("invalid attendee_id filter"))
			return
		}
		filter.AttendeeID = &id
	}
	if v := r.URL.Query().Get("organizer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeDomainError(w, r, domain.NewValidationError("invalid organizer_id filter"))
			return
		}
		filter.OrganizerID = &id
	}

	list, err := h.eventService.ListEvents(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": list})
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	event, err := h.eventService.GetEventByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	var req domain.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), &req, identity.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"event": event})
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req domain.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), id, &req, identity.AccountID, identity.Role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.eventService.DeleteEvent(r.Context(), id, identity.AccountID, identity.Role); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) PublishEvent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "publish")
}

func (h *Handlers) CancelEvent(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel")
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, action string) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var event *domain.Event
	switch action {
	case "publish":
		event, err = h.eventService.PublishEvent(r.Context(), id, identity.AccountID, identity.Role)
	case "cancel":
		event, err = h.eventService.CancelEvent(r.Context(), id, identity.AccountID, identity.Role)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

// RegisterForEvent joins the authenticated account to an event's roster.
func (h *Handlers) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	event, err := h.eventService.RegisterForEvent(r.Context(), id, identity.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"event": event})
}

// UnregisterFromEvent is idempotent; leaving an event you are not part of
// still succeeds.
func (h *Handlers) UnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.eventService.UnregisterFromEvent(r.Context(), id, identity.AccountID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MyEvents lists events organized by the authenticated account.
func (h *Handlers) MyEvents(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		writeDomainError(w, r, domain.NewAuthenticationError("authentication required"))
		return
	}

	list, err := h.eventService.ListByOrganizer(r.Context(), identity.AccountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": list})
}
