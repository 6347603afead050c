package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/eventure/apiserver/types"
)

// RegistrationRepository handles persistence for event registrations.
type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a (user, event) registration. A repeat registration
// hits the primary key and surfaces as ErrDuplicate.
//
// There is deliberately no capacity check here; seat availability is a
// read-time aggregate and concurrent registrations can race past it.
func (r *RegistrationRepository) Create(ctx context.Context, userID, eventID int) (types.Registration, error) {
	registration := types.Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: time.Now(),
	}

	const query = `
		INSERT INTO register (user_id, event_id, registered_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, eventID, registration.RegisteredAt); err != nil {
		return types.Registration{}, translateUnique(err)
	}
	return registration, nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID int) error {
	const query = `DELETE FROM register WHERE user_id = $1 AND event_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, eventID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]types.Registration, error) {
	const query = `
		SELECT user_id, event_id, registered_at
		FROM register
		WHERE event_id = $1
		ORDER BY registered_at`
	return r.list(ctx, query, eventID)
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int) ([]types.Registration, error) {
	const query = `
		SELECT user_id, event_id, registered_at
		FROM register
		WHERE user_id = $1
		ORDER BY registered_at`
	return r.list(ctx, query, userID)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, arg any) ([]types.Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]types.Registration, 0)
	for rows.Next() {
		var registration types.Registration
		if err := rows.Scan(&registration.UserID, &registration.EventID, &registration.RegisteredAt); err != nil {
			return nil, err
		}
		registrations = append(registrations, registration)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}
