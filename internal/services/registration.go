package services

import (
	"context"
	"encoding/json"

	"github.com/eventure/apiserver/types"
)

const (
	registrationCreatedChannel   = "registration.created"
	registrationCancelledChannel = "registration.cancelled"
)

// RegistrationRepository defines persistence operations for event
// registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, userID, eventID int) (types.Registration, error)
	Delete(ctx context.Context, userID, eventID int) error
	ListByEvent(ctx context.Context, eventID int) ([]types.Registration, error)
	ListByUser(ctx context.Context, userID int) ([]types.Registration, error)
}

// eventLookup is the slice of the event repository registrations need.
type eventLookup interface {
	Get(ctx context.Context, id int) (types.Event, error)
}

// Publisher sends broker messages. mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// RegistrationService encapsulates event registration use-cases.
type RegistrationService struct {
	repo      RegistrationRepository
	events    eventLookup
	publisher Publisher
}

// NewRegistrationService constructs a RegistrationService. publisher
// may be nil, in which case broker notifications are skipped.
func NewRegistrationService(repo RegistrationRepository, events eventLookup, publisher Publisher) *RegistrationService {
	return &RegistrationService{repo: repo, events: events, publisher: publisher}
}

// registrationMessage is the broker payload for registration changes.
type registrationMessage struct {
	UserID  int `json:"user_id"`
	EventID int `json:"event_id"`
}

// Register records a (user, event) registration. The registration row
// and the seat-availability aggregate are independent statements; no
// capacity reservation happens here.
func (s *RegistrationService) Register(ctx context.Context, userID, eventID int) (types.Registration, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return types.Registration{}, err
	}

	registration, err := s.repo.Create(ctx, userID, eventID)
	if err != nil {
		return types.Registration{}, err
	}

	s.publish(ctx, registrationCreatedChannel, userID, eventID)
	return registration, nil
}

// Unregister removes the caller's registration for an event.
func (s *RegistrationService) Unregister(ctx context.Context, userID, eventID int) error {
	if err := s.repo.Delete(ctx, userID, eventID); err != nil {
		return err
	}

	s.publish(ctx, registrationCancelledChannel, userID, eventID)
	return nil
}

// ListByEvent returns all registrations for an event.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID int) ([]types.Registration, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// ListForUser returns all registrations held by a user.
func (s *RegistrationService) ListForUser(ctx context.Context, userID int) ([]types.Registration, error) {
	return s.repo.ListByUser(ctx, userID)
}

// publish sends a best-effort broker notification; delivery failures do
// not fail the registration itself.
func (s *RegistrationService) publish(ctx context.Context, channel string, userID, eventID int) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(registrationMessage{UserID: userID, EventID: eventID})
	if err != nil {
		return
	}
	_, _ = s.publisher.Publish(ctx, channel, data, nil)
}
