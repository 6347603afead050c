package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"user_id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"user_first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"user_last_name"`

	// Email is the user's email address. It is unique and doubles
	// as the login identifier.
	Email string `json:"email" db:"user_email"`

	// IsAdmin indicates whether the user holds administrative
	// privileges. Accounts are always created non-admin; the flag is
	// never taken from client input.
	IsAdmin bool `json:"is_admin" db:"user_is_admin"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"user_password"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Identity is the authenticated principal attached to a request after
// token verification. It carries only what downstream authorization
// needs, never anything taken from the request body.
type Identity struct {
	UserID int  `json:"user_id"`
	Admin  bool `json:"admin"`
}
