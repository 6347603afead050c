package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type fakeCatalogRepo struct {
	mu         sync.Mutex
	locations  []types.Location
	organizers []types.Organizer
}

func (r *fakeCatalogRepo) CreateLocation(ctx context.Context, location types.Location) (types.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	location.ID = len(r.locations) + 1
	r.locations = append(r.locations, location)
	return location, nil
}

func (r *fakeCatalogRepo) ListLocations(ctx context.Context) ([]types.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Location(nil), r.locations...), nil
}

func (r *fakeCatalogRepo) GetLocation(ctx context.Context, id int) (types.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, location := range r.locations {
		if location.ID == id {
			return location, nil
		}
	}
	return types.Location{}, store.ErrNotFound
}

func (r *fakeCatalogRepo) CreateOrganizer(ctx context.Context, organizer types.Organizer) (types.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	organizer.ID = len(r.organizers) + 1
	r.organizers = append(r.organizers, organizer)
	return organizer, nil
}

func (r *fakeCatalogRepo) ListOrganizers(ctx context.Context) ([]types.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Organizer(nil), r.organizers...), nil
}

func newCatalogTestRouter(t *testing.T) (*chi.Mux, *memoryUserRepo) {
	t.Helper()

	users := newMemoryUserRepo()
	authService := services.NewAuthService(users, "handler-test-secret")
	catalogService := services.NewCatalogService(&fakeCatalogRepo{})

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authService)
	})
	CatalogRouter(router, catalogService, authService)
	return router, users
}

func catalogAdminToken(t *testing.T, router *chi.Mux, users *memoryUserRepo) string {
	t.Helper()
	userID, _ := registerAndLogin(t, router, "admin@example.com", "Str0ng!Pass")
	users.promote(userID)

	resp := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Email: "admin@example.com", Password: "Str0ng!Pass"})
	assert.Equal(t, http.StatusOK, resp.Code)

	var login LoginResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	return login.Token
}

func TestCreateLocation_AdminOnly(t *testing.T) {
	router, users := newCatalogTestRouter(t)

	location := types.Location{Name: "Main Hall", PostalCode: "10115", CityName: "Berlin"}

	anonymous := doJSON(t, router, http.MethodPost, "/locations/", "", location)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	_, userToken := registerAndLogin(t, router, "user@example.com", "Str0ng!Pass")
	forbidden := doJSON(t, router, http.MethodPost, "/locations/", userToken, location)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	adminToken := catalogAdminToken(t, router, users)
	created := doJSON(t, router, http.MethodPost, "/locations/", adminToken, location)
	assert.Equal(t, http.StatusCreated, created.Code)

	list := doJSON(t, router, http.MethodGet, "/locations/", "", nil)
	assert.Equal(t, http.StatusOK, list.Code)

	var locations []types.Location
	assert.NoError(t, json.Unmarshal(list.Body.Bytes(), &locations))
	if assert.Len(t, locations, 1) {
		assert.Equal(t, "Main Hall", locations[0].Name)
		assert.Equal(t, "Berlin", locations[0].CityName)
	}
}

func TestGetLocation(t *testing.T) {
	router, users := newCatalogTestRouter(t)
	adminToken := catalogAdminToken(t, router, users)

	created := doJSON(t, router, http.MethodPost, "/locations/", adminToken, types.Location{
		Name: "Main Hall", PostalCode: "10115", CityName: "Berlin",
	})
	assert.Equal(t, http.StatusCreated, created.Code)

	var location types.Location
	assert.NoError(t, json.Unmarshal(created.Body.Bytes(), &location))

	resp := doJSON(t, router, http.MethodGet, fmt.Sprintf("/locations/%d", location.ID), "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	missing := doJSON(t, router, http.MethodGet, "/locations/999", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCreateLocation_Validation(t *testing.T) {
	router, users := newCatalogTestRouter(t)
	adminToken := catalogAdminToken(t, router, users)

	resp := doJSON(t, router, http.MethodPost, "/locations/", adminToken, types.Location{Name: "Main Hall"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateOrganizer_AdminOnly(t *testing.T) {
	router, users := newCatalogTestRouter(t)
	adminToken := catalogAdminToken(t, router, users)

	created := doJSON(t, router, http.MethodPost, "/organizers/", adminToken, types.Organizer{Name: "GoConf e.V."})
	assert.Equal(t, http.StatusCreated, created.Code)

	empty := doJSON(t, router, http.MethodPost, "/organizers/", adminToken, types.Organizer{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	list := doJSON(t, router, http.MethodGet, "/organizers/", "", nil)
	assert.Equal(t, http.StatusOK, list.Code)

	var organizers []types.Organizer
	assert.NoError(t, json.Unmarshal(list.Body.Bytes(), &organizers))
	assert.Len(t, organizers, 1)
}
