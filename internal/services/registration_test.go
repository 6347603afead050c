package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/stretchr/testify/assert"
)

type mockRegistrationRepo struct {
	createFn      func(ctx context.Context, userID, eventID int) (types.Registration, error)
	deleteFn      func(ctx context.Context, userID, eventID int) error
	listByEventFn func(ctx context.Context, eventID int) ([]types.Registration, error)
	listByUserFn  func(ctx context.Context, userID int) ([]types.Registration, error)
}

func (m *mockRegistrationRepo) Create(ctx context.Context, userID, eventID int) (types.Registration, error) {
	return m.createFn(ctx, userID, eventID)
}
func (m *mockRegistrationRepo) Delete(ctx context.Context, userID, eventID int) error {
	return m.deleteFn(ctx, userID, eventID)
}
func (m *mockRegistrationRepo) ListByEvent(ctx context.Context, eventID int) ([]types.Registration, error) {
	return m.listByEventFn(ctx, eventID)
}
func (m *mockRegistrationRepo) ListByUser(ctx context.Context, userID int) ([]types.Registration, error) {
	return m.listByUserFn(ctx, userID)
}

type mockEventLookup struct {
	getFn func(ctx context.Context, id int) (types.Event, error)
}

func (m *mockEventLookup) Get(ctx context.Context, id int) (types.Event, error) {
	return m.getFn(ctx, id)
}

type recordedMessage struct {
	channel string
	data    []byte
}

type recordingPublisher struct {
	messages []recordedMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.messages = append(p.messages, recordedMessage{channel: channel, data: data})
	return "msg-1", nil
}

func existingEvent(id int) *mockEventLookup {
	return &mockEventLookup{
		getFn: func(ctx context.Context, gotID int) (types.Event, error) {
			if gotID == id {
				return types.Event{ID: id, Name: "GopherCon"}, nil
			}
			return types.Event{}, store.ErrNotFound
		},
	}
}

func TestRegister_PublishesCreatedMessage(t *testing.T) {
	repo := &mockRegistrationRepo{
		createFn: func(ctx context.Context, userID, eventID int) (types.Registration, error) {
			return types.Registration{UserID: userID, EventID: eventID}, nil
		},
	}
	publisher := &recordingPublisher{}

	svc := NewRegistrationService(repo, existingEvent(3), publisher)
	registration, err := svc.Register(context.Background(), 10, 3)

	assert.NoError(t, err)
	assert.Equal(t, 10, registration.UserID)
	assert.Equal(t, 3, registration.EventID)

	if assert.Len(t, publisher.messages, 1) {
		assert.Equal(t, "registration.created", publisher.messages[0].channel)

		var msg registrationMessage
		assert.NoError(t, json.Unmarshal(publisher.messages[0].data, &msg))
		assert.Equal(t, registrationMessage{UserID: 10, EventID: 3}, msg)
	}
}

func TestRegister_UnknownEventSkipsCreateAndPublish(t *testing.T) {
	created := false
	repo := &mockRegistrationRepo{
		createFn: func(ctx context.Context, userID, eventID int) (types.Registration, error) {
			created = true
			return types.Registration{}, nil
		},
	}
	publisher := &recordingPublisher{}

	svc := NewRegistrationService(repo, existingEvent(3), publisher)
	_, err := svc.Register(context.Background(), 10, 999)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.False(t, created)
	assert.Empty(t, publisher.messages)
}

func TestRegister_DuplicatePassesThrough(t *testing.T) {
	repo := &mockRegistrationRepo{
		createFn: func(ctx context.Context, userID, eventID int) (types.Registration, error) {
			return types.Registration{}, store.ErrDuplicate
		},
	}
	publisher := &recordingPublisher{}

	svc := NewRegistrationService(repo, existingEvent(3), publisher)
	_, err := svc.Register(context.Background(), 10, 3)

	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.Empty(t, publisher.messages)
}

func TestRegister_NilPublisherIsSkipped(t *testing.T) {
	repo := &mockRegistrationRepo{
		createFn: func(ctx context.Context, userID, eventID int) (types.Registration, error) {
			return types.Registration{UserID: userID, EventID: eventID}, nil
		},
	}

	svc := NewRegistrationService(repo, existingEvent(3), nil)
	_, err := svc.Register(context.Background(), 10, 3)

	assert.NoError(t, err)
}

func TestUnregister_PublishesCancelledMessage(t *testing.T) {
	repo := &mockRegistrationRepo{
		deleteFn: func(ctx context.Context, userID, eventID int) error {
			return nil
		},
	}
	publisher := &recordingPublisher{}

	svc := NewRegistrationService(repo, existingEvent(3), publisher)
	err := svc.Unregister(context.Background(), 10, 3)

	assert.NoError(t, err)
	if assert.Len(t, publisher.messages, 1) {
		assert.Equal(t, "registration.cancelled", publisher.messages[0].channel)
	}
}

func TestUnregister_MissingRegistration(t *testing.T) {
	repo := &mockRegistrationRepo{
		deleteFn: func(ctx context.Context, userID, eventID int) error {
			return store.ErrNotFound
		},
	}
	publisher := &recordingPublisher{}

	svc := NewRegistrationService(repo, existingEvent(3), publisher)
	err := svc.Unregister(context.Background(), 10, 3)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, publisher.messages)
}

func TestListByEvent_ChecksEventExists(t *testing.T) {
	repo := &mockRegistrationRepo{
		listByEventFn: func(ctx context.Context, eventID int) ([]types.Registration, error) {
			return []types.Registration{{UserID: 1, EventID: eventID}}, nil
		},
	}

	svc := NewRegistrationService(repo, existingEvent(3), nil)

	registrations, err := svc.ListByEvent(context.Background(), 3)
	assert.NoError(t, err)
	assert.Len(t, registrations, 1)

	_, err = svc.ListByEvent(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
