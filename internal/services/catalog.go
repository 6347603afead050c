package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventure/apiserver/types"
)

// CatalogRepository defines persistence operations for the places
// catalog.
type CatalogRepository interface {
	CreateLocation(ctx context.Context, location types.Location) (types.Location, error)
	ListLocations(ctx context.Context) ([]types.Location, error)
	GetLocation(ctx context.Context, id int) (types.Location, error)
	CreateOrganizer(ctx context.Context, organizer types.Organizer) (types.Organizer, error)
	ListOrganizers(ctx context.Context) ([]types.Organizer, error)
}

// CatalogService encapsulates location and organizer authoring.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) CreateLocation(ctx context.Context, location types.Location) (types.Location, error) {
	location.Name = strings.TrimSpace(location.Name)
	location.CityName = strings.TrimSpace(location.CityName)
	location.PostalCode = strings.TrimSpace(location.PostalCode)
	if location.Name == "" || location.CityName == "" || location.PostalCode == "" {
		return types.Location{}, fmt.Errorf("%w: name, city and postal code are required", ErrValidation)
	}
	return s.repo.CreateLocation(ctx, location)
}

func (s *CatalogService) ListLocations(ctx context.Context) ([]types.Location, error) {
	return s.repo.ListLocations(ctx)
}

func (s *CatalogService) GetLocation(ctx context.Context, id int) (types.Location, error) {
	return s.repo.GetLocation(ctx, id)
}

func (s *CatalogService) CreateOrganizer(ctx context.Context, organizer types.Organizer) (types.Organizer, error) {
	organizer.Name = strings.TrimSpace(organizer.Name)
	if organizer.Name == "" {
		return types.Organizer{}, fmt.Errorf("%w: organizer name is required", ErrValidation)
	}
	return s.repo.CreateOrganizer(ctx, organizer)
}

func (s *CatalogService) ListOrganizers(ctx context.Context) ([]types.Organizer, error) {
	return s.repo.ListOrganizers(ctx)
}
