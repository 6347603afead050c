package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/eventure/apiserver/internal/storage"
	"github.com/eventure/apiserver/types"
)

// EventRepository defines persistence operations for events and their
// availability views.
type EventRepository interface {
	ListViews(ctx context.Context, viewerID *int) ([]types.EventView, error)
	GetView(ctx context.Context, id int, viewerID *int) (types.EventView, error)
	Get(ctx context.Context, id int) (types.Event, error)
	Create(ctx context.Context, event types.Event) (types.Event, error)
	Update(ctx context.Context, event types.Event) (types.Event, error)
	Delete(ctx context.Context, id int) error
	AttachOrganizer(ctx context.Context, eventID, organizerID int) error
}

// EventService encapsulates event catalog use-cases, including the
// seat-availability views.
type EventService struct {
	repo    EventRepository
	storage *storage.Storage
}

// NewEventService constructs an EventService. storage may be nil, in
// which case thumbnail uploads are unavailable and thumbnails are plain
// URLs.
func NewEventService(repo EventRepository, storage *storage.Storage) *EventService {
	return &EventService{repo: repo, storage: storage}
}

// ListWithAvailability returns the catalog with remaining seats
// recomputed from registrations. When viewerID is non-nil each view
// also reports whether that user is registered.
func (s *EventService) ListWithAvailability(ctx context.Context, viewerID *int) ([]types.EventView, error) {
	return s.repo.ListViews(ctx, viewerID)
}

// GetWithAvailability returns a single event's availability view.
func (s *EventService) GetWithAvailability(ctx context.Context, id int, viewerID *int) (types.EventView, error) {
	return s.repo.GetView(ctx, id, viewerID)
}

func (s *EventService) Get(ctx context.Context, id int) (types.Event, error) {
	return s.repo.Get(ctx, id)
}

// Create persists the event and links it to its organizer.
func (s *EventService) Create(ctx context.Context, event types.Event, organizerID int) (types.Event, error) {
	if event.SeatCapacity < 0 {
		return types.Event{}, fmt.Errorf("%w: seat capacity must not be negative", ErrValidation)
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return types.Event{}, err
	}
	if organizerID > 0 {
		if err := s.repo.AttachOrganizer(ctx, created.ID, organizerID); err != nil {
			return types.Event{}, err
		}
	}
	return created, nil
}

func (s *EventService) Update(ctx context.Context, event types.Event) (types.Event, error) {
	if event.SeatCapacity < 0 {
		return types.Event{}, fmt.Errorf("%w: seat capacity must not be negative", ErrValidation)
	}
	return s.repo.Update(ctx, event)
}

func (s *EventService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// StoreThumbnail uploads a thumbnail image to object storage under a
// content-addressed key and returns the key. Re-uploading identical
// bytes lands on the same object.
func (s *EventService) StoreThumbnail(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	if s.storage == nil {
		return "", errors.New("object storage is not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty thumbnail", ErrValidation)
	}

	sum := sha256.Sum256(data)
	ext := strings.ToLower(path.Ext(filename))
	key := "thumbnails/" + hex.EncodeToString(sum[:]) + ext

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return key, nil
}
