package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

// RegistrationHandler provides HTTP handlers for event registrations.
type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

// NewRegistrationHandler constructs a handler with the provided service.
func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// RegistrationRouter registers the user-scoped registration routes.
func RegistrationRouter(r chi.Router, registrationService *services.RegistrationService, authService *services.AuthService) {
	handler := NewRegistrationHandler(registrationService)
	auth := RequireAuth(authService)

	r.With(auth).Get("/mine", handler.ListMine)
}

// Register enrolls the caller in an event. The subject always comes
// from the verified token, never the request body.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	registration, err := h.registrationService.Register(r.Context(), identity.UserID, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "already registered for this event")
			return
		}
		log.Printf("create registration error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to register for event")
		return
	}

	writeJSON(w, http.StatusCreated, registration)
}

// Unregister removes the caller's registration for an event.
func (h *RegistrationHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registrationService.Unregister(r.Context(), identity.UserID, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		log.Printf("delete registration error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to unregister from event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByEvent returns all registrations for an event (admin only).
func (h *RegistrationHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	registrations, err := h.registrationService.ListByEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		log.Printf("list registrations error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	writeJSON(w, http.StatusOK, registrations)
}

// ListMine returns the caller's registrations.
func (h *RegistrationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	registrations, err := h.registrationService.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("list registrations error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	writeJSON(w, http.StatusOK, registrations)
}
