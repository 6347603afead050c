package types

import "time"

// Event is a row in the event catalog.
type Event struct {
	ID          int       `json:"id" db:"event_id"`
	Name        string    `json:"name" db:"event_name"`
	StartDate   time.Time `json:"start_date" db:"event_start_date"`
	EndDate     time.Time `json:"end_date" db:"event_end_date"`
	Description string    `json:"description" db:"event_description"`

	// SeatCapacity is the total number of seats; remaining seats are
	// always recomputed from registrations at read time.
	SeatCapacity int `json:"seat_capacity" db:"event_seats"`

	// Thumbnail is either an object-storage key or an external URL.
	Thumbnail  string    `json:"thumbnail" db:"event_thumbnail"`
	LocationID int       `json:"location_id" db:"location_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// EventView is the denormalized catalog projection: event core fields
// joined with location, postal code, city and organizer names, plus the
// derived seat availability.
type EventView struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Description   string    `json:"description"`
	Thumbnail     string    `json:"thumbnail"`
	LocationName  string    `json:"location_name"`
	PostalCode    string    `json:"postal_code"`
	CityName      string    `json:"city_name"`
	OrganizerName string    `json:"organizer_name"`

	// RemainingSeats is seat_capacity minus the current registration
	// count, computed per read. It is a point-in-time snapshot, not a
	// guarantee against concurrent registrations.
	RemainingSeats int `json:"remaining_seats"`

	// ViewerRegistered reports whether the requesting user already
	// holds a registration for this event. Nil when the request was
	// anonymous.
	ViewerRegistered *bool `json:"is_viewer_registered,omitempty"`
}
