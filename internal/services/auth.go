package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/eventure/apiserver/internal/store"
	"github.com/eventure/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

// Typed failures returned by the auth service. Handlers map these to
// HTTP statuses; nothing here is ever surfaced as an uncaught fault.
var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingToken is returned when a request carries no usable
	// bearer token.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken is returned when a token fails verification,
	// whether tampered, malformed, or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInsufficientPrivileges is returned when an authenticated
	// identity lacks the role a route requires.
	ErrInsufficientPrivileges = errors.New("insufficient privileges")
)

// UserRepository defines the persistence operations the auth service
// needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	UpdateProfile(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// AuthService is the credential and session authority: it owns password
// hashing, credential verification, and token issuance/verification.
// The signing secret is injected at construction and never read from
// ambient process state.
type AuthService struct {
	users  UserRepository
	secret []byte
}

func NewAuthService(users UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(jwtSecret),
	}
}

// Register creates a new non-admin account and returns its id. The
// admin flag is forced off server-side regardless of what the caller
// sent; only the four identity fields are ever persisted.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (int, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return 0, fmt.Errorf("%w: missing required user information", ErrValidation)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, types.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		IsAdmin:      false,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login verifies the credentials and issues a bearer token embedding
// the account id and role, valid for one hour.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user.ID, user.IsAdmin, time.Now())
}

// ChangePassword re-verifies the current password before replacing the
// stored hash. The subject id must come from a verified token, never
// from the request body.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePassword(ctx, userID, string(hashed))
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, id int) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile rewrites the caller's identity fields. The admin flag
// and password are not updatable here; email uniqueness surfaces as
// ErrDuplicate.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, firstName, lastName, email string) (types.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" || email == "" {
		return types.User{}, fmt.Errorf("%w: missing required user information", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	return s.users.UpdateProfile(ctx, user)
}

// DeleteAccount removes the caller's account after re-verifying the
// password, the same gate ChangePassword uses.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return s.users.Delete(ctx, userID)
}

// Authenticate parses and verifies a raw Authorization header and
// returns the identity embedded in the token. Identity fields are only
// ever taken from the verified claims.
func (s *AuthService) Authenticate(rawHeader string) (types.Identity, error) {
	rawHeader = strings.TrimSpace(rawHeader)
	if rawHeader == "" {
		return types.Identity{}, ErrMissingToken
	}
	parts := strings.SplitN(rawHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return types.Identity{}, ErrMissingToken
	}

	return s.verifyToken(strings.TrimSpace(parts[1]))
}

// Authorize checks the already-authenticated identity against the
// required admin status. The role model is a boolean, compared exactly.
func (s *AuthService) Authorize(identity types.Identity, requireAdmin bool) error {
	if identity.Admin != requireAdmin {
		return ErrInsufficientPrivileges
	}
	return nil
}

type accessClaims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(userID int, admin bool, now time.Time) (string, error) {
	claims := accessClaims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) verifyToken(tokenString string) (types.Identity, error) {
	claims := accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return types.Identity{}, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return types.Identity{}, ErrInvalidToken
	}

	return types.Identity{UserID: userID, Admin: claims.Admin}, nil
}
