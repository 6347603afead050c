package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxMultipartMemory = 32 << 20
	maxThumbnailBytes  = 8 << 20

	formFieldName         = "name"
	formFieldDesc         = "description"
	formFieldStartDate    = "start_date"
	formFieldEndDate      = "end_date"
	formFieldSeats        = "seats"
	formFieldLocationID   = "location_id"
	formFieldOrganizerID  = "organizer_id"
	formFieldThumbnailURL = "thumbnail_url"
	formFieldThumbnail    = "thumbnail"
)

// ThumbnailFile represents an uploaded thumbnail image.
type ThumbnailFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EventHandler provides HTTP handlers for the event catalog.
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler constructs a handler with the provided service.
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// EventRouter registers event and event-scoped registration routes.
func EventRouter(
	r chi.Router,
	eventService *services.EventService,
	registrationService *services.RegistrationService,
	authService *services.AuthService,
) {
	handler := NewEventHandler(eventService)
	registrations := NewRegistrationHandler(registrationService)

	auth := RequireAuth(authService)
	admin := RequireAdmin(authService)
	optional := OptionalAuth(authService)

	r.With(optional).Get("/", handler.ListEvents)
	r.With(auth, admin).Post("/", handler.CreateEvent)
	r.Route("/{eventID}", func(r chi.Router) {
		r.With(optional).Get("/", handler.GetEvent)
		r.With(auth, admin).Put("/", handler.UpdateEvent)
		r.With(auth, admin).Delete("/", handler.DeleteEvent)

		r.With(auth).Post("/register", registrations.Register)
		r.With(auth).Delete("/register", registrations.Unregister)
		r.With(auth, admin).Get("/registrations", registrations.ListByEvent)
	})
}

// ListEvents returns the catalog with seat availability. Anonymous
// requests get plain views; authenticated ones also get their own
// registration status per event.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	views, err := h.eventService.ListWithAvailability(r.Context(), viewerIDFromContext(r.Context()))
	if err != nil {
		log.Printf("list events error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// GetEvent returns one event's availability view.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.eventService.GetWithAvailability(r.Context(), id, viewerIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		log.Printf("get event error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch event")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	req, err := parseEventForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	thumbnail := req.ThumbnailURL
	if req.Thumbnail != nil {
		key, err := h.eventService.StoreThumbnail(r.Context(), req.Thumbnail.Filename, req.Thumbnail.Data, req.Thumbnail.ContentType)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Printf("store thumbnail error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		thumbnail = key
	}

	created, err := h.eventService.Create(r.Context(), types.Event{
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
		SeatCapacity: req.Seats,
		Thumbnail:    thumbnail,
		LocationID:   req.LocationID,
	}, req.OrganizerID)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("create event error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parseEventForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	thumbnail := req.ThumbnailURL
	if req.Thumbnail != nil {
		key, err := h.eventService.StoreThumbnail(r.Context(), req.Thumbnail.Filename, req.Thumbnail.Data, req.Thumbnail.ContentType)
		if err != nil {
			log.Printf("store thumbnail error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		thumbnail = key
	}

	updated, err := h.eventService.Update(r.Context(), types.Event{
		ID:           id,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
		SeatCapacity: req.Seats,
		Thumbnail:    thumbnail,
		LocationID:   req.LocationID,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		log.Printf("update event error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseEventID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.eventService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		log.Printf("delete event error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EventUpsertRequest represents the parsed multipart form payload.
type EventUpsertRequest struct {
	Name         string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	Seats        int
	LocationID   int
	OrganizerID  int
	ThumbnailURL string
	Thumbnail    *ThumbnailFile
}

func parseEventID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "eventID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid event id")
	}
	return id, nil
}

func parseEventForm(r *http.Request) (EventUpsertRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return EventUpsertRequest{}, errors.New("invalid multipart form")
	}

	name := strings.TrimSpace(r.FormValue(formFieldName))
	if name == "" {
		return EventUpsertRequest{}, errors.New("name is required")
	}

	startDate, err := time.Parse(time.RFC3339, strings.TrimSpace(r.FormValue(formFieldStartDate)))
	if err != nil {
		return EventUpsertRequest{}, errors.New("invalid start date")
	}
	endDate, err := time.Parse(time.RFC3339, strings.TrimSpace(r.FormValue(formFieldEndDate)))
	if err != nil {
		return EventUpsertRequest{}, errors.New("invalid end date")
	}

	seats, err := strconv.Atoi(strings.TrimSpace(r.FormValue(formFieldSeats)))
	if err != nil || seats < 0 {
		return EventUpsertRequest{}, errors.New("invalid seats")
	}

	locationID, err := strconv.Atoi(strings.TrimSpace(r.FormValue(formFieldLocationID)))
	if err != nil || locationID < 1 {
		return EventUpsertRequest{}, errors.New("invalid location id")
	}

	organizerID, err := parseOptionalInt(r.FormValue(formFieldOrganizerID))
	if err != nil {
		return EventUpsertRequest{}, errors.New("invalid organizer id")
	}

	thumbnail, err := parseThumbnailFile(r.MultipartForm)
	if err != nil {
		return EventUpsertRequest{}, err
	}

	return EventUpsertRequest{
		Name:         name,
		Description:  strings.TrimSpace(r.FormValue(formFieldDesc)),
		StartDate:    startDate,
		EndDate:      endDate,
		Seats:        seats,
		LocationID:   locationID,
		OrganizerID:  organizerID,
		ThumbnailURL: strings.TrimSpace(r.FormValue(formFieldThumbnailURL)),
		Thumbnail:    thumbnail,
	}, nil
}

func parseOptionalInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseThumbnailFile(form *multipart.Form) (*ThumbnailFile, error) {
	if form == nil {
		return nil, nil
	}

	files := form.File[formFieldThumbnail]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > 1 {
		return nil, errors.New("only one thumbnail file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read thumbnail file")
	}

	data, err := readFileLimited(file, maxThumbnailBytes)
	_ = file.Close()
	if err != nil {
		return nil, err
	}

	return &ThumbnailFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
