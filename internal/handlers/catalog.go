package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler provides HTTP handlers for locations and organizers.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler constructs a handler with the provided service.
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CatalogRouter registers the places-catalog routes.
func CatalogRouter(r chi.Router, catalogService *services.CatalogService, authService *services.AuthService) {
	handler := NewCatalogHandler(catalogService)
	auth := RequireAuth(authService)
	admin := RequireAdmin(authService)

	r.Route("/locations", func(r chi.Router) {
		r.Get("/", handler.ListLocations)
		r.Get("/{locationID}", handler.GetLocation)
		r.With(auth, admin).Post("/", handler.CreateLocation)
	})
	r.Route("/organizers", func(r chi.Router) {
		r.Get("/", handler.ListOrganizers)
		r.With(auth, admin).Post("/", handler.CreateOrganizer)
	})
}

func (h *CatalogHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req types.Location
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.catalogService.CreateLocation(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("create location error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalogService.ListLocations(r.Context())
	if err != nil {
		log.Printf("list locations error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list locations")
		return
	}

	writeJSON(w, http.StatusOK, locations)
}

func (h *CatalogHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "locationID"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	location, err := h.catalogService.GetLocation(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		log.Printf("get location error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch location")
		return
	}

	writeJSON(w, http.StatusOK, location)
}

func (h *CatalogHandler) CreateOrganizer(w http.ResponseWriter, r *http.Request) {
	var req types.Organizer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.catalogService.CreateOrganizer(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("create organizer error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create organizer")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) ListOrganizers(w http.ResponseWriter, r *http.Request) {
	organizers, err := h.catalogService.ListOrganizers(r.Context())
	if err != nil {
		log.Printf("list organizers error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list organizers")
		return
	}

	writeJSON(w, http.StatusOK, organizers)
}
