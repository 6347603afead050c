package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eventure/apiserver/types"
)

// EventRepository handles persistence for events and their denormalized
// availability views.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// viewColumns is shared by the availability queries. remaining_seats is
// recomputed from the register table on every read rather than kept as
// a counter column: registrations are created and deleted independently
// and nothing would keep a counter in sync.
const viewSelect = `
	SELECT
		e.event_id,
		e.event_name,
		e.event_start_date,
		e.event_end_date,
		e.event_description,
		e.event_thumbnail,
		l.location_name,
		pc.postal_code_number,
		c.city_name,
		o.organizer_name,
		e.event_seats - COALESCE(r.registered_count, 0) AS remaining_seats`

const viewJoins = `
	FROM events e
	JOIN locations l ON e.location_id = l.location_id
	JOIN postal_codes pc ON l.postal_code_id = pc.postal_code_id
	JOIN cities c ON l.city_id = c.city_id
	JOIN organize org ON e.event_id = org.event_id
	JOIN organizers o ON org.organizer_id = o.organizer_id
	LEFT JOIN (
		SELECT event_id, COUNT(*) AS registered_count
		FROM register
		GROUP BY event_id
	) r ON e.event_id = r.event_id`

// Listings are ordered by start date (id as tiebreaker) so repeated
// reads are deterministic.
const viewOrder = ` ORDER BY e.event_start_date, e.event_id`

// ListViews returns the full catalog with availability. When viewerID
// is non-nil each row also reports whether that user is registered.
func (r *EventRepository) ListViews(ctx context.Context, viewerID *int) ([]types.EventView, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if viewerID != nil {
		query := viewSelect + `,
		EXISTS (
			SELECT 1 FROM register reg
			WHERE reg.event_id = e.event_id
			AND reg.user_id = $1
		) AS is_viewer_registered` + viewJoins + viewOrder
		rows, err = r.db.QueryContext(ctx, query, *viewerID)
	} else {
		rows, err = r.db.QueryContext(ctx, viewSelect+viewJoins+viewOrder)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]types.EventView, 0)
	for rows.Next() {
		view, err := scanView(rows, viewerID != nil)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// GetView returns a single event's availability view.
func (r *EventRepository) GetView(ctx context.Context, id int, viewerID *int) (types.EventView, error) {
	var row *sql.Row
	if viewerID != nil {
		query := viewSelect + `,
		EXISTS (
			SELECT 1 FROM register reg
			WHERE reg.event_id = e.event_id
			AND reg.user_id = $1
		) AS is_viewer_registered` + viewJoins + `
	WHERE e.event_id = $2`
		row = r.db.QueryRowContext(ctx, query, *viewerID, id)
	} else {
		query := viewSelect + viewJoins + `
	WHERE e.event_id = $1`
		row = r.db.QueryRowContext(ctx, query, id)
	}

	view, err := scanView(row, viewerID != nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.EventView{}, ErrNotFound
		}
		return types.EventView{}, err
	}
	return view, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanView(row rowScanner, withViewer bool) (types.EventView, error) {
	var view types.EventView
	dest := []any{
		&view.ID,
		&view.Name,
		&view.StartDate,
		&view.EndDate,
		&view.Description,
		&view.Thumbnail,
		&view.LocationName,
		&view.PostalCode,
		&view.CityName,
		&view.OrganizerName,
		&view.RemainingSeats,
	}
	if withViewer {
		view.ViewerRegistered = new(bool)
		dest = append(dest, view.ViewerRegistered)
	}
	if err := row.Scan(dest...); err != nil {
		return types.EventView{}, err
	}
	return view, nil
}

func (r *EventRepository) Get(ctx context.Context, id int) (types.Event, error) {
	const query = `
		SELECT event_id, event_name, event_start_date, event_end_date, event_description, event_seats, event_thumbnail, location_id, created_at, updated_at
		FROM events
		WHERE event_id = $1`
	var event types.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.StartDate,
		&event.EndDate,
		&event.Description,
		&event.SeatCapacity,
		&event.Thumbnail,
		&event.LocationID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Event{}, ErrNotFound
		}
		return types.Event{}, err
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event types.Event) (types.Event, error) {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	const query = `
		INSERT INTO events (event_name, event_start_date, event_end_date, event_description, event_seats, event_thumbnail, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING event_id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		event.Name,
		event.StartDate,
		event.EndDate,
		event.Description,
		event.SeatCapacity,
		event.Thumbnail,
		event.LocationID,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID); err != nil {
		return types.Event{}, err
	}
	return event, nil
}

// Update writes the allow-listed event columns only.
func (r *EventRepository) Update(ctx context.Context, event types.Event) (types.Event, error) {
	event.UpdatedAt = time.Now()

	const query = `
		UPDATE events
		SET event_name = $1,
			event_start_date = $2,
			event_end_date = $3,
			event_description = $4,
			event_seats = $5,
			event_thumbnail = $6,
			location_id = $7,
			updated_at = $8
		WHERE event_id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		event.Name,
		event.StartDate,
		event.EndDate,
		event.Description,
		event.SeatCapacity,
		event.Thumbnail,
		event.LocationID,
		event.UpdatedAt,
		event.ID,
	)
	if err != nil {
		return types.Event{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Event{}, err
	}
	if affected == 0 {
		return types.Event{}, ErrNotFound
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM events WHERE event_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

// AttachOrganizer links an organizer to an event via the organize join
// table.
func (r *EventRepository) AttachOrganizer(ctx context.Context, eventID, organizerID int) error {
	const query = `
		INSERT INTO organize (event_id, organizer_id)
		VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, eventID, organizerID); err != nil {
		return translateUnique(err)
	}
	return nil
}
