package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/eventure/apiserver/internal/services"
	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// memoryUserRepo is an in-memory services.UserRepository shared by the
// handler tests.
type memoryUserRepo struct {
	mu      sync.Mutex
	nextID  int
	users   map[int]types.User
	byEmail map[string]int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		nextID:  1,
		users:   map[int]types.User{},
		byEmail: map[string]int{},
	}
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return r.users[id], nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

func (r *memoryUserRepo) UpdateProfile(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if otherID, taken := r.byEmail[user.Email]; taken && otherID != user.ID {
		return types.User{}, store.ErrDuplicate
	}
	delete(r.byEmail, existing.Email)
	r.byEmail[user.Email] = user.ID
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.users, id)
	return nil
}

// promote flips the admin flag directly, the way an operator would in
// the database.
func (r *memoryUserRepo) promote(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	user.IsAdmin = true
	r.users[id] = user
}

func newAuthRouter(t *testing.T) (*chi.Mux, *memoryUserRepo, *services.AuthService) {
	t.Helper()
	repo := newMemoryUserRepo()
	authService := services.NewAuthService(repo, "handler-test-secret")

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, authService)
	})
	return router, repo, authService
}

func doJSON(t *testing.T, router http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func registerAndLogin(t *testing.T, router http.Handler, email, password string) (int, string) {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  password,
	})
	assert.Equal(t, http.StatusCreated, resp.Code)

	var registered RegisterResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	resp = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	assert.Equal(t, http.StatusOK, resp.Code)

	var login LoginResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)

	return registered.UserID, login.Token
}

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	userID, token := registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")

	resp := doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	var me types.User
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.False(t, me.IsAdmin)

	// The stored hash must never leak through the JSON envelope.
	assert.NotContains(t, resp.Body.String(), "password")
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "pw",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "ada@example.com",
		Password:  "different",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestLoginEndpoint_UnknownAndWrongPasswordLookAlike(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")

	unknown := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
}

func TestMeEndpoint_RequiresValidToken(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	_, token := registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")

	noToken := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, noToken.Code)

	tampered := doJSON(t, router, http.MethodGet, "/auth/me", token+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, tampered.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	_, token := registerAndLogin(t, router, "ada@example.com", "old-pass")

	wrongCurrent := doJSON(t, router, http.MethodPost, "/auth/password", token, ChangePasswordRequest{
		CurrentPassword: "not-old-pass",
		NewPassword:     "new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongCurrent.Code)

	changed := doJSON(t, router, http.MethodPost, "/auth/password", token, ChangePasswordRequest{
		CurrentPassword: "old-pass",
		NewPassword:     "new-pass",
	})
	assert.Equal(t, http.StatusOK, changed.Code)

	oldLogin := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "old-pass"})
	assert.Equal(t, http.StatusUnauthorized, oldLogin.Code)

	newLogin := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "new-pass"})
	assert.Equal(t, http.StatusOK, newLogin.Code)
}

func TestUpdateMeEndpoint(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	_, token := registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")
	registerAndLogin(t, router, "taken@example.com", "Str0ng!Pass")

	updated := doJSON(t, router, http.MethodPut, "/auth/me", token, UpdateProfileRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	})
	assert.Equal(t, http.StatusOK, updated.Code)

	var user types.User
	assert.NoError(t, json.Unmarshal(updated.Body.Bytes(), &user))
	assert.Equal(t, "Grace", user.FirstName)
	assert.Equal(t, "grace@example.com", user.Email)

	conflict := doJSON(t, router, http.MethodPut, "/auth/me", token, UpdateProfileRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "taken@example.com",
	})
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestDeleteMeEndpoint(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	_, token := registerAndLogin(t, router, "ada@example.com", "Str0ng!Pass")

	wrongPassword := doJSON(t, router, http.MethodDelete, "/auth/me", token, DeleteAccountRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)

	deleted := doJSON(t, router, http.MethodDelete, "/auth/me", token, DeleteAccountRequest{Password: "Str0ng!Pass"})
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	login := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "Str0ng!Pass"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestChangePasswordEndpoint_RequiresAuth(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/auth/password", "", ChangePasswordRequest{
		CurrentPassword: "a",
		NewPassword:     "b",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegisterEndpoint_AdminFlagInBodyIsIgnored(t *testing.T) {
	router, repo, _ := newAuthRouter(t)

	payload := map[string]any{
		"first_name": "Mallory",
		"last_name":  "Intruder",
		"email":      "mallory@example.com",
		"password":   "pw",
		"is_admin":   true,
	}
	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", payload)
	assert.Equal(t, http.StatusCreated, resp.Code)

	var registered RegisterResponse
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	stored, err := repo.GetByID(context.Background(), registered.UserID)
	assert.NoError(t, err)
	assert.False(t, stored.IsAdmin)
}
