package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eventure/apiserver/types"
)

// CatalogRepository handles persistence for the places catalog:
// locations, organizers, and the cities/postal codes locations hang off.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateLocation inserts a location, creating or reusing the referenced
// city and postal code rows.
func (r *CatalogRepository) CreateLocation(ctx context.Context, location types.Location) (types.Location, error) {
	cityID, err := r.ensureCity(ctx, location.CityName)
	if err != nil {
		return types.Location{}, err
	}
	postalCodeID, err := r.ensurePostalCode(ctx, location.PostalCode)
	if err != nil {
		return types.Location{}, err
	}

	const query = `
		INSERT INTO locations (location_name, postal_code_id, city_id)
		VALUES ($1, $2, $3)
		RETURNING location_id`
	if err := r.db.QueryRowContext(ctx, query, location.Name, postalCodeID, cityID).Scan(&location.ID); err != nil {
		return types.Location{}, err
	}
	return location, nil
}

func (r *CatalogRepository) ListLocations(ctx context.Context) ([]types.Location, error) {
	const query = `
		SELECT l.location_id, l.location_name, pc.postal_code_number, c.city_name
		FROM locations l
		JOIN postal_codes pc ON l.postal_code_id = pc.postal_code_id
		JOIN cities c ON l.city_id = c.city_id
		ORDER BY l.location_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]types.Location, 0)
	for rows.Next() {
		var location types.Location
		if err := rows.Scan(&location.ID, &location.Name, &location.PostalCode, &location.CityName); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *CatalogRepository) GetLocation(ctx context.Context, id int) (types.Location, error) {
	const query = `
		SELECT l.location_id, l.location_name, pc.postal_code_number, c.city_name
		FROM locations l
		JOIN postal_codes pc ON l.postal_code_id = pc.postal_code_id
		JOIN cities c ON l.city_id = c.city_id
		WHERE l.location_id = $1`
	var location types.Location
	err := r.db.QueryRowContext(ctx, query, id).Scan(&location.ID, &location.Name, &location.PostalCode, &location.CityName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Location{}, ErrNotFound
		}
		return types.Location{}, err
	}
	return location, nil
}

func (r *CatalogRepository) CreateOrganizer(ctx context.Context, organizer types.Organizer) (types.Organizer, error) {
	const query = `
		INSERT INTO organizers (organizer_name)
		VALUES ($1)
		RETURNING organizer_id`
	if err := r.db.QueryRowContext(ctx, query, organizer.Name).Scan(&organizer.ID); err != nil {
		return types.Organizer{}, err
	}
	return organizer, nil
}

func (r *CatalogRepository) ListOrganizers(ctx context.Context) ([]types.Organizer, error) {
	const query = `
		SELECT organizer_id, organizer_name
		FROM organizers
		ORDER BY organizer_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	organizers := make([]types.Organizer, 0)
	for rows.Next() {
		var organizer types.Organizer
		if err := rows.Scan(&organizer.ID, &organizer.Name); err != nil {
			return nil, err
		}
		organizers = append(organizers, organizer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return organizers, nil
}

func (r *CatalogRepository) ensureCity(ctx context.Context, name string) (int, error) {
	const query = `
		INSERT INTO cities (city_name)
		VALUES ($1)
		ON CONFLICT (city_name) DO UPDATE SET city_name = EXCLUDED.city_name
		RETURNING city_id`
	var id int
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CatalogRepository) ensurePostalCode(ctx context.Context, number string) (int, error) {
	const query = `
		INSERT INTO postal_codes (postal_code_number)
		VALUES ($1)
		ON CONFLICT (postal_code_number) DO UPDATE SET postal_code_number = EXCLUDED.postal_code_number
		RETURNING postal_code_id`
	var id int
	if err := r.db.QueryRowContext(ctx, query, number).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
