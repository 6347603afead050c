package types

import "time"

// Registration links a user to an event. The (user, event) pair is
// unique; its per-event count is what seat availability is derived from.
type Registration struct {
	UserID       int       `json:"user_id" db:"user_id"`
	EventID      int       `json:"event_id" db:"event_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}
