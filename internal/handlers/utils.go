package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eventure/apiserver/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func identityFromContext(ctx context.Context) (types.Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(types.Identity)
	if !ok || identity.UserID < 1 {
		return types.Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

// viewerIDFromContext returns the authenticated user's id, or nil for
// anonymous requests. Used by the catalog reads, which work either way.
func viewerIDFromContext(ctx context.Context) *int {
	identity, err := identityFromContext(ctx)
	if err != nil {
		return nil
	}
	id := identity.UserID
	return &id
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
