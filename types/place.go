package types

// Location is a venue where events take place.
type Location struct {
	ID         int    `json:"id" db:"location_id"`
	Name       string `json:"name" db:"location_name"`
	PostalCode string `json:"postal_code"`
	CityName   string `json:"city_name"`
}

// Organizer is a party hosting one or more events.
type Organizer struct {
	ID   int    `json:"id" db:"organizer_id"`
	Name string `json:"name" db:"organizer_name"`
}
